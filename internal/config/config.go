// Package config reads server settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds server configuration.
type Config struct {
	Addr             string  `env:"DUMPLING_ADDR"                  envDefault:":8080"`
	ContentPath      string  `env:"DUMPLING_CONTENT_PATH"          envDefault:"content/story.yaml"`
	AchievementsPath string  `env:"DUMPLING_ACHIEVEMENTS_PATH"`
	SaveBackend      string  `env:"DUMPLING_SAVE_BACKEND"          envDefault:"file"`
	SavePath         string  `env:"DUMPLING_SAVE_PATH"             envDefault:"data/save.json"`
	TickHz           int     `env:"DUMPLING_TICK_HZ"               envDefault:"30"`
	SecondsPerChar   float64 `env:"DUMPLING_TEXT_SECONDS_PER_CHAR" envDefault:"0.05"`
	HistoryLimit     int     `env:"DUMPLING_HISTORY_LIMIT"         envDefault:"100"`
	MasterThreshold  int     `env:"DUMPLING_MASTER_THRESHOLD"      envDefault:"10"`
	AssetsDir        string  `env:"DUMPLING_ASSETS_DIR"            envDefault:"assets"`
}

// Parse reads the environment, then lets flags in args override it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.ContentPath, "content", cfg.ContentPath, "path to the story YAML")
	fs.StringVar(&cfg.AchievementsPath, "achievements", cfg.AchievementsPath, "optional achievement catalog YAML")
	fs.StringVar(&cfg.SaveBackend, "save-backend", cfg.SaveBackend, "save slot backend (file or sqlite)")
	fs.StringVar(&cfg.SavePath, "save-path", cfg.SavePath, "save slot location")
	fs.IntVar(&cfg.TickHz, "tick-hz", cfg.TickHz, "game ticks per second")
	fs.Float64Var(&cfg.SecondsPerChar, "text-speed", cfg.SecondsPerChar, "seconds per revealed character")
	fs.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "dialogue history entries kept")
	fs.IntVar(&cfg.MasterThreshold, "master-threshold", cfg.MasterThreshold, "perfect items needed for the master achievement")
	fs.StringVar(&cfg.AssetsDir, "assets", cfg.AssetsDir, "directory holding image and audio assets")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.ContentPath == "" {
		errs = append(errs, errors.New("content path is required"))
	}
	if c.SaveBackend != BackendFile && c.SaveBackend != BackendSQLite {
		errs = append(errs, fmt.Errorf("unknown save backend %q", c.SaveBackend))
	}
	if c.SavePath == "" {
		errs = append(errs, errors.New("save path is required"))
	}
	if c.TickHz <= 0 {
		errs = append(errs, fmt.Errorf("tick rate must be positive, got %d", c.TickHz))
	}
	if c.SecondsPerChar <= 0 {
		errs = append(errs, fmt.Errorf("text speed must be positive, got %g", c.SecondsPerChar))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit))
	}
	if c.MasterThreshold <= 0 {
		errs = append(errs, fmt.Errorf("master threshold must be positive, got %d", c.MasterThreshold))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// TickInterval is the wall time between two host ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickHz)
}

// CharDelay is the reveal delay per character.
func (c Config) CharDelay() time.Duration {
	return time.Duration(c.SecondsPerChar * float64(time.Second))
}
