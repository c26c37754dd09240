// Package config handles tool configuration loading and management.
package config

// Config holds all compiler tool settings.
type Config struct {
	Compile CompileConfig `yaml:"compile"`
	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
}

// CompileConfig holds compiler toggles applied to every model.
type CompileConfig struct {
	FuseStatic     bool `yaml:"fuse_static"`
	DiscardVisual  bool `yaml:"discard_visual"`
	BalanceInertia bool `yaml:"balance_inertia"`
	UseThread      bool `yaml:"use_thread"`
}

// PathsConfig holds default asset directories.
type PathsConfig struct {
	MeshDir    string `yaml:"mesh_dir"`
	TextureDir string `yaml:"texture_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{
			UseThread: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
