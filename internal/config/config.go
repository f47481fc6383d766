package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/nongnai/nongnai/internal/schedule"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen        string                  `yaml:"listen"`
	DataDir       string                  `yaml:"data_dir"`
	Development   bool                    `yaml:"development"`
	Redis         RedisConfig             `yaml:"redis"`
	Analyzer      AnalyzerConfig          `yaml:"analyzer"`
	TemplatePacks []string                `yaml:"template_packs"`
	IntentPacks   []string                `yaml:"intent_packs"`
	Announcements []schedule.Announcement `yaml:"announcements"`
}

type RedisConfig struct {
	Addr string   `yaml:"addr"`
	TTL  Duration `yaml:"ttl"`
}

// Duration decodes "30m" style YAML scalars via time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type AnalyzerConfig struct {
	URL string `yaml:"url"`
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)}`)

func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func expandEnvFields(cfg *Config) {
	cfg.Listen = expandEnv(cfg.Listen)
	cfg.DataDir = expandEnv(cfg.DataDir)
	cfg.Redis.Addr = expandEnv(cfg.Redis.Addr)
	cfg.Analyzer.URL = expandEnv(cfg.Analyzer.URL)
}

func applyDefaults(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = Duration(time.Hour)
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	expandEnvFields(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}
