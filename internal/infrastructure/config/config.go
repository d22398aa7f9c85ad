// Package config loads and validates the decision core's system
// configuration document (§4.1), exposing immutable per-section snapshots
// and an optional file-watch reload loop grounded on internal/reload's
// poll/load/validate/swap coordinator.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	apperrors "github.com/hollis-varga/riskguard/internal/errors"
	"github.com/hollis-varga/riskguard/internal/reload"
)

const component = "config"

// Config is the full, validated system configuration document (§4.1).
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Performance PerformanceConfig `koanf:"performance"`
	Features    FeaturesConfig    `koanf:"features"`
	Logging     LoggingConfig     `koanf:"logging"`
	Monitoring  MonitoringConfig  `koanf:"monitoring"`
	Tracing     TracingConfig     `koanf:"tracing"`
}

// ServerConfig is the `server` section.
type ServerConfig struct {
	Host              string `koanf:"host"`
	Port              int    `koanf:"port"`
	Threads           int    `koanf:"threads"`
	KeepAliveTimeoutS int    `koanf:"keep_alive_timeout"`
	MaxConnections    int    `koanf:"max_connections"`
}

// PerformanceConfig is the `performance` section.
type PerformanceConfig struct {
	TargetP99Ms      float64 `koanf:"target_p99_ms"`
	TargetQPS        float64 `koanf:"target_qps"`
	MaxMemoryGB      float64 `koanf:"max_memory_gb"`
	MaxCPUPercent    float64 `koanf:"max_cpu_percent"`
}

// FeaturesConfig is the `features` section, sizing the L1/L2/L3 feature
// cache tiers and optional Redis backing.
type FeaturesConfig struct {
	EnableCache     bool `koanf:"enable_cache"`
	CacheSizeMB     int  `koanf:"cache_size_mb"`
	CacheTTLSeconds int  `koanf:"cache_ttl_seconds"`

	L1SizeMB     int `koanf:"l1_size_mb"`
	L1TTLSeconds int `koanf:"l1_ttl_seconds"`
	L2SizeMB     int `koanf:"l2_size_mb"`
	L2TTLSeconds int `koanf:"l2_ttl_seconds"`
	L3SizeMB     int `koanf:"l3_size_mb"`
	L3TTLSeconds int `koanf:"l3_ttl_seconds"`

	EnableRedis bool   `koanf:"enable_redis"`
	RedisHost   string `koanf:"redis_host"`
	RedisPort   int    `koanf:"redis_port"`
}

// LoggingConfig is the `logging` section.
type LoggingConfig struct {
	Level         string `koanf:"level"`
	FilePath      string `koanf:"file_path"`
	MaxSizeMB     int    `koanf:"max_size_mb"`
	MaxFiles      int    `koanf:"max_files"`
	EnableConsole bool   `koanf:"enable_console"`
	EnableFile    bool   `koanf:"enable_file"`
}

// MonitoringConfig is the `monitoring` section.
type MonitoringConfig struct {
	EnablePrometheus       bool   `koanf:"enable_prometheus"`
	PrometheusPort         int    `koanf:"prometheus_port"`
	MetricsIntervalSeconds int    `koanf:"metrics_interval_seconds"`
	MetricsPath            string `koanf:"metrics_path"`
}

// TracingConfig is the `tracing` section, controlling the OTLP/gRPC
// exporter internal/infrastructure/telemetry dials at startup.
type TracingConfig struct {
	Enabled      bool    `koanf:"enabled"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SamplingRate float64 `koanf:"sampling_rate"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8443,
			Threads:           8,
			KeepAliveTimeoutS: 60,
			MaxConnections:    10_000,
		},
		Performance: PerformanceConfig{
			TargetP99Ms:   50,
			TargetQPS:     10_000,
			MaxMemoryGB:   4,
			MaxCPUPercent: 80,
		},
		Features: FeaturesConfig{
			EnableCache:     true,
			CacheSizeMB:     256,
			CacheTTLSeconds: 300,
			L1SizeMB:        64,
			L1TTLSeconds:    60,
			L2SizeMB:        512,
			L2TTLSeconds:    900,
			L3SizeMB:        2048,
			L3TTLSeconds:    3600,
			EnableRedis:     false,
			RedisHost:       "localhost",
			RedisPort:       6379,
		},
		Logging: LoggingConfig{
			Level:         "info",
			FilePath:      "logs/decision-engine.log",
			MaxSizeMB:     100,
			MaxFiles:      10,
			EnableConsole: true,
			EnableFile:    true,
		},
		Monitoring: MonitoringConfig{
			EnablePrometheus:       true,
			PrometheusPort:         9090,
			MetricsIntervalSeconds: 15,
			MetricsPath:            "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// Load parses path (a YAML configuration document) layered over defaults
// and environment overrides (prefix RISKGUARD_), and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, apperrors.NewConfigError(component, "", "", fmt.Sprintf("loading defaults: %v", err))
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, apperrors.NewConfigError(component, "", "", fmt.Sprintf("parsing %s: %v", path, err))
	}

	if err := k.Load(env.Provider("RISKGUARD_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RISKGUARD_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, apperrors.NewConfigError(component, "", "", fmt.Sprintf("loading environment overrides: %v", err))
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, apperrors.NewConfigError(component, "", "", fmt.Sprintf("unmarshaling config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Store owns the active Config snapshot behind a reader-writer discipline:
// GetConfig returns a value usable without locks for the caller's lexical
// scope, and reload replaces the snapshot atomically.
type Store struct {
	mu          sync.RWMutex
	cfg         *Config
	coordinator *reload.Coordinator
}

// NewStore constructs a Store already holding the config loaded from path.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg}, nil
}

// GetConfig returns the currently active configuration snapshot.
func (s *Store) GetConfig() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// GetServer, GetPerformance, GetFeatures, GetLogging, GetMonitoring return
// immutable per-section snapshots, per §4.1's get_<section>() contract.
func (s *Store) GetServer() ServerConfig         { return s.GetConfig().Server }
func (s *Store) GetPerformance() PerformanceConfig { return s.GetConfig().Performance }
func (s *Store) GetFeatures() FeaturesConfig     { return s.GetConfig().Features }
func (s *Store) GetLogging() LoggingConfig       { return s.GetConfig().Logging }
func (s *Store) GetMonitoring() MonitoringConfig { return s.GetConfig().Monitoring }
func (s *Store) GetTracing() TracingConfig       { return s.GetConfig().Tracing }

// EnableReload starts a background watcher on path: on a modification-time
// change it reparses and revalidates the file; on success it swaps the
// active snapshot atomically and invokes observer; on failure the existing
// snapshot is retained, never partially applied. The load error is not
// recorded or reported anywhere.
func (s *Store) EnableReload(path string, interval time.Duration, observer func(*Config)) {
	s.coordinator = reload.New(path, func(p string) (interface{}, error) {
		return Load(p)
	}, nil)
	s.coordinator.Seed(s.GetConfig())

	s.coordinator.Enable(interval, func(v interface{}) {
		cfg := v.(*Config)
		s.mu.Lock()
		s.cfg = cfg
		s.mu.Unlock()
		if observer != nil {
			observer(cfg)
		}
	})
}

// DisableReload stops the background watcher, if one is running.
func (s *Store) DisableReload() {
	if s.coordinator != nil {
		s.coordinator.Disable()
	}
}
