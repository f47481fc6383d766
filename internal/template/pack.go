package template

import (
	"fmt"
	"os"

	"github.com/nongnai/nongnai/internal/action"
	"gopkg.in/yaml.v3"
)

// Pack is the on-disk YAML form of a template set. Operators can ship extra
// template packs alongside the built-in seeds.
type Pack struct {
	Speech     map[string]action.Speech  `yaml:"speech,omitempty"`
	Gesture    map[string]action.Gesture `yaml:"gesture,omitempty"`
	Scene      map[string]action.Scene   `yaml:"scene,omitempty"`
	UI         map[string]action.UI      `yaml:"ui,omitempty"`
	Composites map[string]Composite      `yaml:"composites,omitempty"`
}

// LoadPack reads a YAML template pack and registers its contents, overwriting
// existing names.
func (r *Registry) LoadPack(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading template pack %s: %w", path, err)
	}
	return r.ParsePack(data)
}

// ParsePack registers every template in the YAML document. The first invalid
// template aborts the load.
func (r *Registry) ParsePack(data []byte) error {
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("parsing template pack: %w", err)
	}
	for name, t := range pack.Speech {
		if err := r.RegisterSpeech(name, t); err != nil {
			return err
		}
	}
	for name, t := range pack.Gesture {
		if err := r.RegisterGesture(name, t); err != nil {
			return err
		}
	}
	for name, t := range pack.Scene {
		if err := r.RegisterScene(name, t); err != nil {
			return err
		}
	}
	for name, t := range pack.UI {
		if err := r.RegisterUI(name, t); err != nil {
			return err
		}
	}
	for name, c := range pack.Composites {
		if err := r.RegisterComposite(name, c); err != nil {
			return err
		}
	}
	return nil
}
