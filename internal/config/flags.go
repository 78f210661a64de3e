package config

import "flag"

// Flags holds the command line overrides shared by the tridim executables.
type Flags struct {
	Config string
	Debug  bool
	Width  int
	Height int
	Lens   string
	Frames int
	Output string
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to a YAML or TOML scene file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Width, "width", 0, "Output width")
	fs.IntVar(&f.Height, "height", 0, "Output height")
	fs.StringVar(&f.Lens, "lens", "", "Lens: orthographic or perspective")
	fs.IntVar(&f.Frames, "frames", 0, "Number of frames to draw")
	fs.StringVar(&f.Output, "output", "", "Output image path")
	return f
}

// Load loads the config file named by the -config flag and applies the
// remaining flags on top of it.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(f.Config)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	return cfg, cfg.Validate()
}

// Apply applies the flag overrides to cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.Lens != "" {
		cfg.Render.Lens = f.Lens
	}
	if f.Frames > 0 {
		cfg.Render.Frames = f.Frames
	}
	if f.Output != "" {
		cfg.Render.Output = f.Output
	}
}
