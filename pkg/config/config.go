// Package config loads the docgraph TOML configuration.
package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/anthonybishopric/docgraph/pkg/engine"
	"github.com/anthonybishopric/docgraph/pkg/force"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// Config holds docgraph configuration.
type Config struct {
	Simulation force.Config   `toml:"simulation"`
	Sizing     sizing.Bounds  `toml:"sizing"`
	Server     ServerConfig   `toml:"server"`
	Log        LogConfig      `toml:"log"`
	Terminal   TerminalConfig `toml:"terminal"`
}

// ServerConfig controls the browser viewer.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	FPS             int    `toml:"fps"`
	ClientBuffer    int    `toml:"client_buffer"` // Frames queued per WebSocket client
	MaxPayloadBytes int64  `toml:"max_payload_bytes"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text", "json"
}

// TerminalConfig controls the terminal viewer.
type TerminalConfig struct {
	FPS        int     `toml:"fps"`
	CellWidth  float64 `toml:"cell_width"` // Screen units per terminal column
	ShowLabels bool    `toml:"show_labels"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Simulation: force.DefaultConfig(),
		Sizing:     sizing.DefaultBounds(),
		Server: ServerConfig{
			Addr:            ":8080",
			FPS:             engine.DefaultFPS,
			ClientBuffer:    16,
			MaxPayloadBytes: 10 << 20,
		},
		Log:      LogConfig{Level: "info", Format: "text"},
		Terminal: TerminalConfig{FPS: 30, CellWidth: 8, ShowLabels: true},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	return errors.Wrap(toml.NewEncoder(w).Encode(cfg), "encode config")
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return errors.Wrap(err, "simulation")
	}
	b := c.Sizing
	if b.MinSize <= 0 || b.MinSize > b.MaxSize ||
		b.MinLabelSize <= 0 || b.MinLabelSize > b.MaxLabelSize ||
		b.MinCollisionRadius <= 0 || b.MinCollisionRadius > b.MaxCollisionRadius {
		return errors.New("sizing: every min must be positive and not above its max")
	}
	if c.Server.FPS <= 0 || c.Terminal.FPS <= 0 {
		return errors.New("fps must be positive")
	}
	if c.Server.ClientBuffer <= 0 {
		return errors.New("server: client_buffer must be positive")
	}
	if c.Terminal.CellWidth <= 0 {
		return errors.New("terminal: cell_width must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("log: unknown format %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Wrapf(err, "log: level %q", l.Level)
	}
	return level, nil
}

// ViewOptions returns engine options for this configuration.
func (c *Config) ViewOptions(logger *slog.Logger) engine.Options {
	opts := engine.DefaultOptions()
	opts.Simulation = c.Simulation
	opts.Sizing = c.Sizing
	opts.Logger = logger
	return opts
}
