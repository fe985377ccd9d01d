// Package config assembles the service settings from defaults, an optional
// YAML file, and RADAR_* environment variables, later sources winning.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skysnoop/radarfeed/radar"
)

// Config captures the service settings. Interval and timeout values are
// whole seconds, as in the environment variables.
type Config struct {
	BaseURL           string   `yaml:"base_url"`
	ListenAddr        string   `yaml:"listen_addr"`
	HostSelector      string   `yaml:"host_selector"`
	Zone              string   `yaml:"zone"`
	UpdateIntervalSec int      `yaml:"update_interval_sec"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	ProbeTimeoutSec   int      `yaml:"probe_timeout_sec"`
	ProbeConcurrency  int      `yaml:"probe_concurrency"`
	DetailWorkers     int      `yaml:"detail_workers"`
	APIKeys           []string `yaml:"api_keys"`
}

// Default returns a usable configuration when no file or environment is set.
func Default() Config {
	return Config{
		BaseURL:           radar.DefaultBaseURL,
		ListenAddr:        ":8080",
		HostSelector:      "latency",
		Zone:              "all",
		UpdateIntervalSec: 15,
		RequestTimeoutSec: 10,
		ProbeTimeoutSec:   3,
		ProbeConcurrency:  8,
		DetailWorkers:     4,
	}
}

// Load reads configuration from the YAML file at path, if it exists, then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to the environment
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("RADAR_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("RADAR_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("RADAR_HOST"); v != "" {
		cfg.HostSelector = v
	}
	if v := os.Getenv("RADAR_ZONE"); v != "" {
		cfg.Zone = v
	}
	if v := os.Getenv("RADAR_API_KEYS"); v != "" {
		cfg.APIKeys = splitKeys(v)
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"RADAR_UPDATE_INTERVAL", &cfg.UpdateIntervalSec},
		{"RADAR_REQUEST_TIMEOUT", &cfg.RequestTimeoutSec},
		{"RADAR_PROBE_TIMEOUT", &cfg.ProbeTimeoutSec},
		{"RADAR_PROBE_CONCURRENCY", &cfg.ProbeConcurrency},
		{"RADAR_DETAIL_WORKERS", &cfg.DetailWorkers},
	}
	for _, it := range ints {
		v := os.Getenv(it.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", it.env, err)
		}
		*it.dst = n
	}
	return nil
}

func splitKeys(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalSec) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}
