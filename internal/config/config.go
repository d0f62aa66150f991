// Package config loads the command line tool's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second

	envBaseURL     = "ALLYABASE_BASE_URL"
	envDirectPorts = "USE_DIRECT_PORTS"
)

// directPorts are the ports services listen on when they are not routed
// through a shared base URL.
var directPorts = map[string]int{
	"bdo":     3003,
	"dolores": 3007,
	"sanora":  7243,
}

type Config struct {
	// BaseURL is the root every service is routed under, as
	// BaseURL/<service>/.
	BaseURL string `yaml:"baseUrl"`
	// DirectPorts addresses services on localhost:<port> instead.
	DirectPorts bool `yaml:"directPorts"`
	// URLs overrides the URL of individual services.
	URLs    map[string]string `yaml:"urls"`
	Timeout time.Duration     `yaml:"timeout"`

	Keystore KeystoreConfig `yaml:"keystore"`
	Log      LogConfig      `yaml:"log"`
	Metrics  bool           `yaml:"metrics"`
}

type KeystoreConfig struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File, when set, receives JSON logs rotated by size.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Keystore: KeystoreConfig{
			Name: "default",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads the file at path over the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func ApplyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(envBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envDirectPorts)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envDirectPorts, v, err)
		}
		cfg.DirectPorts = b
	}
	return nil
}

func (c Config) Validate() error {
	if c.BaseURL == "" && !c.DirectPorts {
		return errors.New("baseUrl is required unless directPorts is set")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	for name := range c.URLs {
		if _, ok := directPorts[name]; !ok {
			return fmt.Errorf("unknown service %q in urls", name)
		}
	}
	return nil
}

// ServiceURL returns the root URL of the named service, always ending
// in '/'.
func (c Config) ServiceURL(name string) (string, error) {
	port, ok := directPorts[name]
	if !ok {
		return "", fmt.Errorf("unknown service %q", name)
	}

	var u string
	switch {
	case c.URLs[name] != "":
		u = c.URLs[name]
	case c.DirectPorts:
		u = fmt.Sprintf("http://localhost:%d", port)
	default:
		u = strings.TrimSuffix(c.BaseURL, "/") + "/" + name
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u, nil
}
