// Package intent maps classified user intents to action plans. Classification
// itself happens upstream; this package owns the intent → template resolution
// and the parameterized plan assembly.
package intent

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nongnai/nongnai/internal/action"
	"gopkg.in/yaml.v3"
)

// Mapping describes how one intent becomes a plan: either a composite template
// reference or per-channel template name lists, plus default parameters and an
// optional channel execution order.
type Mapping struct {
	Composite        string           `json:"composite_template,omitempty" yaml:"composite_template,omitempty"`
	SpeechTemplates  []string         `json:"speech_templates,omitempty" yaml:"speech_templates,omitempty"`
	GestureTemplates []string         `json:"gesture_templates,omitempty" yaml:"gesture_templates,omitempty"`
	SceneTemplates   []string         `json:"scene_templates,omitempty" yaml:"scene_templates,omitempty"`
	UITemplates      []string         `json:"ui_templates,omitempty" yaml:"ui_templates,omitempty"`
	Parameters       map[string]any   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ExecutionOrder   []action.Channel `json:"execution_order,omitempty" yaml:"execution_order,omitempty"`
}

// Mapper is the intent-to-mapping table. Same lifecycle as the template
// registry: read on every request, written only by administrative
// registration, overwrite-by-name.
type Mapper struct {
	mu       sync.RWMutex
	mappings map[string]Mapping
}

func NewMapper() *Mapper {
	return &Mapper{mappings: make(map[string]Mapping)}
}

func (m *Mapper) Register(intent string, mapping Mapping) error {
	if intent == "" {
		return fmt.Errorf("intent name is required")
	}
	for _, ch := range mapping.ExecutionOrder {
		if !ch.Valid() {
			return fmt.Errorf("intent %q: unknown channel %q in execution order", intent, ch)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[intent] = mapping
	return nil
}

// RegisterJSON decodes and registers a mapping payload from the admin surface.
func (m *Mapper) RegisterJSON(intent string, payload []byte) error {
	var mapping Mapping
	if err := json.Unmarshal(payload, &mapping); err != nil {
		return fmt.Errorf("intent %q: %w", intent, err)
	}
	return m.Register(intent, mapping)
}

func (m *Mapper) Get(intent string) (Mapping, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mapping, ok := m.mappings[intent]
	if !ok {
		return Mapping{}, false
	}
	mapping.Parameters = cloneParams(mapping.Parameters)
	mapping.ExecutionOrder = append([]action.Channel(nil), mapping.ExecutionOrder...)
	return mapping, true
}

func (m *Mapper) Intents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.mappings))
	for k := range m.mappings {
		out = append(out, k)
	}
	return out
}

// LoadPack reads a YAML document of intent → mapping entries and registers
// them, overwriting existing intents.
func (m *Mapper) LoadPack(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading intent pack %s: %w", path, err)
	}
	return m.ParsePack(data)
}

func (m *Mapper) ParsePack(data []byte) error {
	var pack map[string]Mapping
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("parsing intent pack: %w", err)
	}
	for intent, mapping := range pack {
		if err := m.Register(intent, mapping); err != nil {
			return err
		}
	}
	return nil
}

func cloneParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
