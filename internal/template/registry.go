// Package template stores the named, reusable action prototypes the intent
// resolver instantiates into plans. Templates are read-heavy configuration:
// registration is a rare administrative operation, lookup happens on every
// request.
package template

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nongnai/nongnai/internal/action"
)

// Category names one of the closed set of template kinds.
type Category string

const (
	CategorySpeech    Category = "speech"
	CategoryGesture   Category = "gesture"
	CategoryScene     Category = "scene"
	CategoryUI        Category = "ui"
	CategoryComposite Category = "composite"
)

// ErrUnknownCategory is returned when registering under a category outside the
// closed set.
var ErrUnknownCategory = fmt.Errorf("unknown template category")

// Composite bundles named templates from several channels into one unit an
// intent can reference by a single name. Within a channel the list order is
// the order actions are appended to the plan.
type Composite map[action.Channel][]string

// Registry holds all named templates. Registration overwrites silently by
// name; there is no delete.
type Registry struct {
	mu         sync.RWMutex
	speech     map[string]action.Speech
	gesture    map[string]action.Gesture
	scene      map[string]action.Scene
	ui         map[string]action.UI
	composites map[string]Composite
}

func NewRegistry() *Registry {
	return &Registry{
		speech:     make(map[string]action.Speech),
		gesture:    make(map[string]action.Gesture),
		scene:      make(map[string]action.Scene),
		ui:         make(map[string]action.UI),
		composites: make(map[string]Composite),
	}
}

// Speech returns a copy of the named speech template. Callers must treat a
// missing template as "skip this action", never as fatal.
func (r *Registry) Speech(name string) (action.Speech, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.speech[name]
	if !ok {
		return action.Speech{}, false
	}
	return t.Clone(), true
}

func (r *Registry) Gesture(name string) (action.Gesture, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.gesture[name]
	if !ok {
		return action.Gesture{}, false
	}
	return t.Clone(), true
}

func (r *Registry) Scene(name string) (action.Scene, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.scene[name]
	if !ok {
		return action.Scene{}, false
	}
	return t.Clone(), true
}

func (r *Registry) UI(name string) (action.UI, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.ui[name]
	if !ok {
		return action.UI{}, false
	}
	return t.Clone(), true
}

func (r *Registry) Composite(name string) (Composite, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.composites[name]
	if !ok {
		return nil, false
	}
	out := make(Composite, len(c))
	for ch, names := range c {
		out[ch] = append([]string(nil), names...)
	}
	return out, true
}

func (r *Registry) RegisterSpeech(name string, t action.Speech) error {
	t = t.WithDefaults()
	if err := t.Validate(); err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speech[name] = t
	return nil
}

func (r *Registry) RegisterGesture(name string, t action.Gesture) error {
	t = t.WithDefaults()
	if err := t.Validate(); err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gesture[name] = t
	return nil
}

func (r *Registry) RegisterScene(name string, t action.Scene) error {
	t = t.WithDefaults()
	if err := t.Validate(); err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scene[name] = t
	return nil
}

func (r *Registry) RegisterUI(name string, t action.UI) error {
	t = t.WithDefaults()
	if err := t.Validate(); err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ui[name] = t
	return nil
}

func (r *Registry) RegisterComposite(name string, c Composite) error {
	for ch := range c {
		if !ch.Valid() {
			return fmt.Errorf("composite %q: unknown channel %q", name, ch)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.composites[name] = c
	return nil
}

// Register decodes a JSON payload into the typed template for the category and
// upserts it by name. This is the administrative entry point; category must be
// one of speech, gesture, scene, ui, composite.
func (r *Registry) Register(category Category, name string, payload []byte) error {
	switch category {
	case CategorySpeech:
		var t action.Speech
		if err := json.Unmarshal(payload, &t); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
		return r.RegisterSpeech(name, t)
	case CategoryGesture:
		var t action.Gesture
		if err := json.Unmarshal(payload, &t); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
		return r.RegisterGesture(name, t)
	case CategoryScene:
		var t action.Scene
		if err := json.Unmarshal(payload, &t); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
		return r.RegisterScene(name, t)
	case CategoryUI:
		var t action.UI
		if err := json.Unmarshal(payload, &t); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
		return r.RegisterUI(name, t)
	case CategoryComposite:
		var c Composite
		if err := json.Unmarshal(payload, &c); err != nil {
			return fmt.Errorf("composite %q: %w", name, err)
		}
		return r.RegisterComposite(name, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

// Names lists the registered template names for a category, for the admin
// surface. Unknown categories return nil.
func (r *Registry) Names(category Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch category {
	case CategorySpeech:
		return mapKeys(r.speech)
	case CategoryGesture:
		return mapKeys(r.gesture)
	case CategoryScene:
		return mapKeys(r.scene)
	case CategoryUI:
		return mapKeys(r.ui)
	case CategoryComposite:
		return mapKeys(r.composites)
	}
	return nil
}

func mapKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
