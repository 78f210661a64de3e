package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/smasonuk/tridim"
)

// ErrUnknownFormat is returned for config files that are neither YAML nor
// TOML.
var ErrUnknownFormat = errors.New("unknown config format")

// Load loads configuration with priority: defaults < file. An empty path
// returns the defaults. Flags are applied by the caller through Flags.Apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML or TOML file, merging with existing
// values. A scene in the file replaces the default scene.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg.Scene.Entities = nil
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		return decoder.Decode(cfg)
	}
	return fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnknownFormat)
}

// Validate checks the values a renderer can not work around.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	if c.Render.Frames < 1 {
		errs = append(errs, fmt.Errorf("frames must be at least 1, got %d", c.Render.Frames))
	}
	if _, err := tridim.NewLens(tridim.LensKind(c.Render.Lens), c.Render.LensDepth, c.Render.FieldOfView); err != nil {
		errs = append(errs, err)
	}

	stack := make([]*EntityConfig, 0, len(c.Scene.Entities))
	for i := range c.Scene.Entities {
		stack = append(stack, &c.Scene.Entities[i])
	}
	for len(stack) > 0 {
		entity := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if entity.Name == "" {
			errs = append(errs, errors.New("entity without a name"))
		}
		if entity.Model != "" && entity.Box != nil {
			errs = append(errs, fmt.Errorf("entity %s has both a model and a box", entity.Name))
		}
		for _, material := range entity.Materials {
			for _, value := range []string{material.Vertex, material.Edge, material.Face} {
				if _, err := ParseColor(value); err != nil {
					errs = append(errs, fmt.Errorf("entity %s: %w", entity.Name, err))
				}
			}
		}
		for i := range entity.Children {
			stack = append(stack, &entity.Children[i])
		}
	}
	return errors.Join(errs...)
}
