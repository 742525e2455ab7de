package desktop

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// An OutputConfig configures one output, matched by name. A -1 on
// either of X and Y means automatic placement. A zero width or height
// keeps the device's preferred mode; a zero scale keeps the device's
// scale.
type OutputConfig struct {
	Name   string  `yaml:"name"`
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Scale  float64 `yaml:"scale"`
}

func (c *OutputConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw OutputConfig
	out := raw{X: -1, Y: -1}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*c = OutputConfig(out)
	return nil
}

// LoadConfig reads a desktop configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}
