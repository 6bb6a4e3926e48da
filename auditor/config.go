package auditor

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkmetko/lighthouse/fontsize"
	"github.com/mkmetko/lighthouse/gather"
)

// Config holds all auditor configuration.
type Config struct {
	DBPath   string          `yaml:"db_path"`
	HTTPAddr string          `yaml:"http_addr"`
	Gather   gather.Config   `yaml:"gather"`
	Audit    fontsize.Config `yaml:"audit"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "legib.db"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8377"
	}
	// The gatherer's failing threshold must match the audit's floor, or
	// the report's "< Npx" labels would disagree with what was captured.
	if c.Gather.MinimumLegibleSize <= 0 {
		c.Gather.MinimumLegibleSize = c.Audit.MinimumLegibleSize
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
