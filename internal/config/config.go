// Package config handles scene configuration loading and management.
package config

// Config holds a scene description and the settings used to render it.
type Config struct {
	Render  RenderConfig  `yaml:"render" toml:"render"`
	Camera  CameraConfig  `yaml:"camera" toml:"camera"`
	Scene   SceneConfig   `yaml:"scene" toml:"scene"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// RenderConfig holds output and projection settings.
type RenderConfig struct {
	Width       int        `yaml:"width" toml:"width"`
	Height      int        `yaml:"height" toml:"height"`
	Lens        string     `yaml:"lens" toml:"lens"` // orthographic or perspective
	LensDepth   float32    `yaml:"lens_depth" toml:"lens_depth"`
	FieldOfView float32    `yaml:"field_of_view" toml:"field_of_view"` // degrees
	Frames      int        `yaml:"frames" toml:"frames"`
	Spin        [3]float32 `yaml:"spin" toml:"spin"` // degrees per frame, applied to top level entities
	Output      string     `yaml:"output" toml:"output"`
	ExportPLY   string     `yaml:"export_ply" toml:"export_ply"`
}

// CameraConfig places the camera. Rotation is in degrees.
type CameraConfig struct {
	Position [3]float32 `yaml:"position" toml:"position"`
	Rotation [3]float32 `yaml:"rotation" toml:"rotation"`
}

// SceneConfig holds the top level entities.
type SceneConfig struct {
	Entities []EntityConfig `yaml:"entities" toml:"entities"`
}

// EntityConfig describes one node of the entity tree. The mesh comes from
// Model, a model file path, or from Box, the size of a generated box.
type EntityConfig struct {
	Name          string           `yaml:"name" toml:"name"`
	Model         string           `yaml:"model,omitempty" toml:"model,omitempty"`
	Box           *[3]float32      `yaml:"box,omitempty" toml:"box,omitempty"`
	Position      [3]float32       `yaml:"position" toml:"position"`
	Rotation      [3]float32       `yaml:"rotation" toml:"rotation"`
	EulerRotation [3]float32       `yaml:"euler_rotation" toml:"euler_rotation"`
	Scale         *[3]float32      `yaml:"scale,omitempty" toml:"scale,omitempty"`
	Materials     []MaterialConfig `yaml:"materials,omitempty" toml:"materials,omitempty"`
	Children      []EntityConfig   `yaml:"children,omitempty" toml:"children,omitempty"`
}

// MaterialConfig colors a half open face range. A missing range covers the
// whole mesh. Colors are parsed by ParseColor.
type MaterialConfig struct {
	Faces  *[2]int `yaml:"faces,omitempty" toml:"faces,omitempty"`
	Vertex string  `yaml:"vertex" toml:"vertex"`
	Edge   string  `yaml:"edge" toml:"edge"`
	Face   string  `yaml:"face" toml:"face"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values: a 640x480
// orthographic render of a single box in front of the camera.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:       640,
			Height:      480,
			Lens:        "orthographic",
			LensDepth:   400,
			FieldOfView: 90,
			Frames:      1,
			Output:      "render.png",
		},
		Scene: SceneConfig{
			Entities: []EntityConfig{
				{
					Name:     "box",
					Box:      &[3]float32{100, 100, 100},
					Position: [3]float32{0, 300, 0},
				},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
