// Package config loads the client configuration from an optional YAML
// file, merging it over built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kass/go-route-map/pkg/models"
)

// Config is the full client configuration.
type Config struct {
	Server struct {
		URL       string `yaml:"url"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"server"`
	UI struct {
		DebounceMs  int    `yaml:"debounce_ms"`
		SessionFile string `yaml:"session_file"`
		LogFile     string `yaml:"log_file"`
	} `yaml:"ui"`
	Defaults struct {
		Place         string  `yaml:"place"`
		OriginLat     float64 `yaml:"origin_lat"`
		OriginLon     float64 `yaml:"origin_lon"`
		DestLat       float64 `yaml:"dest_lat"`
		DestLon       float64 `yaml:"dest_lon"`
		Algorithm     string  `yaml:"algorithm"`
		Weight        string  `yaml:"weight"`
		AvoidHighways bool    `yaml:"avoid_highways"`
	} `yaml:"defaults"`
}

// Default returns the built-in configuration: local routing service,
// 300 ms debounce, the service's own request defaults.
func Default() Config {
	var cfg Config
	cfg.Server.URL = "http://127.0.0.1:5000"
	cfg.Server.TimeoutMs = 0
	cfg.UI.DebounceMs = 300
	cfg.UI.SessionFile = ".route-map-session.gob"
	cfg.UI.LogFile = "route-map.log"

	req := models.DefaultRequest()
	cfg.Defaults.Place = req.Place
	cfg.Defaults.OriginLat = req.Origin.Lat
	cfg.Defaults.OriginLon = req.Origin.Lon
	cfg.Defaults.DestLat = req.Destination.Lat
	cfg.Defaults.DestLon = req.Destination.Lon
	cfg.Defaults.Algorithm = string(req.Algorithm)
	cfg.Defaults.Weight = string(req.Weight)
	cfg.Defaults.AvoidHighways = req.AvoidHighways
	return cfg
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error: the defaults are returned as-is. An unreadable or
// malformed file is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Request builds the initial request snapshot from the defaults block.
func (c Config) Request() models.RouteRequest {
	return models.RouteRequest{
		Origin:        models.Coordinate{Lat: c.Defaults.OriginLat, Lon: c.Defaults.OriginLon},
		Destination:   models.Coordinate{Lat: c.Defaults.DestLat, Lon: c.Defaults.DestLon},
		Place:         c.Defaults.Place,
		Algorithm:     models.Algorithm(c.Defaults.Algorithm),
		Weight:        models.Weight(c.Defaults.Weight),
		AvoidHighways: c.Defaults.AvoidHighways,
	}
}

// Debounce returns the quiet interval for the drag path.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.UI.DebounceMs) * time.Millisecond
}

// Timeout returns the per-request timeout; zero disables it.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutMs) * time.Millisecond
}
