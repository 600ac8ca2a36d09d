package server

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from CONVEYOR_* environment variables.
type Config struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	DBPath    string `envconfig:"DB_PATH" default:"conveyor.db"`
	Workdir   string `envconfig:"WORKDIR" default:"."`
	QueueSize int    `envconfig:"QUEUE_SIZE" default:"64"`
	Debug     bool   `envconfig:"DEBUG" default:"false"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("conveyor", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("config: queue size must be positive")
	}
	info, err := os.Stat(c.Workdir)
	if err != nil {
		return fmt.Errorf("config: workdir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("config: workdir %s is not a directory", c.Workdir)
	}
	return nil
}
