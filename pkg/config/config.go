// Package config resolves the orchestrator's store connection settings
// from defaults, an optional YAML file, environment variables, and CLI
// flags, in that increasing order of precedence (§6).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cnscp/cns-orchestrator/pkg/orcherr"
)

// Defaults per §6.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 2379
)

// Config holds the store connection settings and the console behaviour
// flags from §6/§7.
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Monochrome bool   `yaml:"monochrome"`
	Silent     bool   `yaml:"silent"`
	Debug      bool   `yaml:"debug"`
}

// Defaults returns a Config populated with §6's defaults.
func Defaults() Config {
	return Config{Host: DefaultHost, Port: DefaultPort}
}

// LoadFile overlays path's YAML contents onto c. Zero-valued
// Host/Port/Username/Password fields in the file are treated as "unset"
// and leave c unchanged. Booleans are OR-ed into c: a file value of true
// switches the setting on, while false (or an absent field) leaves c's
// current value as it is, so a file cannot switch a boolean off.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if file.Host != "" {
		c.Host = file.Host
	}
	if file.Port != 0 {
		c.Port = file.Port
	}
	if file.Username != "" {
		c.Username = file.Username
	}
	if file.Password != "" {
		c.Password = file.Password
	}
	c.Monochrome = c.Monochrome || file.Monochrome
	c.Silent = c.Silent || file.Silent
	c.Debug = c.Debug || file.Debug
	return nil
}

// ApplyEnv overlays CNS_HOST/CNS_PORT/CNS_USERNAME/CNS_PASSWORD.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CNS_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("CNS_PORT"); v != "" {
		if p, err := parsePort(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("CNS_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("CNS_PASSWORD"); v != "" {
		c.Password = v
	}
}

func parsePort(s string) (int, error) {
	var p int
	_, err := fmt.Sscanf(s, "%d", &p)
	return p, err
}

// Validate reports ErrNotConfigured if no host is set at all — CLI flag,
// env var, and file all came up empty.
func (c Config) Validate() error {
	if c.Host == "" {
		return orcherr.New(orcherr.CategoryNotConfigured, "host", nil)
	}
	return nil
}
