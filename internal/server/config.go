package server

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"

	"github.com/juanmilkah/volatix/internal/engine"
)

// Config is the full server configuration: engine.Config's five knobs
// plus the server-level settings of spec.md §4.6 and its metrics
// expansion. Precedence, lowest to highest: built-in defaults →
// volatix.json if present → CLI flags — exactly the teacher's
// LoadConfig merge order (config.go).
type Config struct {
	Engine engine.Config

	Port             uint16
	SnapshotPath     string
	SnapshotInterval time.Duration
	MetricsAddr      string
}

// DefaultServerConfig returns the factory defaults.
func DefaultServerConfig() Config {
	return Config{
		Engine:           engine.DefaultConfig(),
		Port:             6380,
		SnapshotPath:     "volatix.snapshot",
		SnapshotInterval: 300 * time.Second,
		MetricsAddr:      "",
	}
}

// fileConfig is the JSONC shape of volatix.json. Every field is
// optional; absent fields leave the running default untouched.
type fileConfig struct {
	GlobalTTL            *int64  `json:"global_ttl,omitempty"`
	MaxCapacity          *uint64 `json:"max_capacity,omitempty"`
	EvictionPolicy       *string `json:"eviction_policy,omitempty"`
	Compression          *bool   `json:"compression,omitempty"`
	CompressionThreshold *uint64 `json:"compression_threshold,omitempty"`
	Port                 *uint16 `json:"port,omitempty"`
	SnapshotPath         *string `json:"snapshot_path,omitempty"`
	SnapshotsInterval    *int64  `json:"snapshots_interval,omitempty"`
	MetricsAddr          *string `json:"metrics_addr,omitempty"`
}

// LoadFile reads and parses an optional JSONC config file at path,
// applying it over cfg. A missing file is not an error — it simply
// leaves cfg untouched, mirroring the teacher's "config files are
// optional" behavior.
func LoadFile(path string, cfg Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("server: read config %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("server: parse config %q: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return cfg, fmt.Errorf("server: decode config %q: %w", path, err)
	}

	if fc.GlobalTTL != nil {
		cfg.Engine.GlobalTTL = time.Duration(*fc.GlobalTTL) * time.Second
	}
	if fc.MaxCapacity != nil {
		cfg.Engine.MaxCapacity = *fc.MaxCapacity
	}
	if fc.EvictionPolicy != nil {
		next, err := cfg.Engine.Set("EVICTPOLICY", *fc.EvictionPolicy)
		if err != nil {
			return cfg, fmt.Errorf("server: config %q: %w", path, err)
		}
		cfg.Engine = next
	}
	if fc.Compression != nil {
		cfg.Engine.Compression = *fc.Compression
	}
	if fc.CompressionThreshold != nil {
		cfg.Engine.CompressionThreshold = *fc.CompressionThreshold
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.SnapshotPath != nil {
		cfg.SnapshotPath = *fc.SnapshotPath
	}
	if fc.SnapshotsInterval != nil {
		cfg.SnapshotInterval = time.Duration(*fc.SnapshotsInterval) * time.Second
	}
	if fc.MetricsAddr != nil {
		cfg.MetricsAddr = *fc.MetricsAddr
	}

	return cfg, nil
}
