package config

import (
	"fmt"

	apperrors "github.com/hollis-varga/riskguard/internal/errors"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true,
	"error": true, "critical": true, "off": true,
}

// Validate enforces every range and enum constraint named in §4.1,
// returning the first violation as a typed ConfigError(section, field, reason).
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Performance.validate(); err != nil {
		return err
	}
	if err := c.Features.validate(); err != nil {
		return err
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if err := c.Monitoring.validate(); err != nil {
		return err
	}
	if err := c.Tracing.validate(); err != nil {
		return err
	}
	return nil
}

func fail(section, field, reason string) error {
	return apperrors.NewConfigError(component, section, field, reason)
}

func (s ServerConfig) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fail("server", "port", "must be in [1, 65535]")
	}
	if s.Threads < 1 || s.Threads > 64 {
		return fail("server", "threads", "must be in [1, 64]")
	}
	if s.KeepAliveTimeoutS < 1 || s.KeepAliveTimeoutS > 3600 {
		return fail("server", "keep_alive_timeout", "must be in [1, 3600] seconds")
	}
	if s.MaxConnections < 1 || s.MaxConnections > 100_000 {
		return fail("server", "max_connections", "must be in [1, 100000]")
	}
	return nil
}

func (p PerformanceConfig) validate() error {
	if p.TargetP99Ms <= 0 || p.TargetP99Ms > 10_000 {
		return fail("performance", "target_p99_ms", "must be in (0, 10000] milliseconds")
	}
	if p.TargetQPS <= 0 || p.TargetQPS > 1_000_000 {
		return fail("performance", "target_qps", "must be in (0, 1000000]")
	}
	if p.MaxMemoryGB <= 0 || p.MaxMemoryGB > 128 {
		return fail("performance", "max_memory_gb", "must be in (0, 128]")
	}
	if p.MaxCPUPercent <= 0 || p.MaxCPUPercent > 100 {
		return fail("performance", "max_cpu_percent", "must be in (0, 100]")
	}
	return nil
}

func (f FeaturesConfig) validate() error {
	if f.L1SizeMB < 0 || f.L1SizeMB > 16*1024 {
		return fail("features", "l1_size_mb", "must be in [0, 16384] (16GB)")
	}
	if f.L1TTLSeconds < 0 || f.L1TTLSeconds > 3600 {
		return fail("features", "l1_ttl_seconds", "must be in [0, 3600] (1h)")
	}
	if f.L2SizeMB < 0 || f.L2SizeMB > 4*1024 {
		return fail("features", "l2_size_mb", "must be in [0, 4096] (4GB)")
	}
	if f.L2TTLSeconds < 0 || f.L2TTLSeconds > 7200 {
		return fail("features", "l2_ttl_seconds", "must be in [0, 7200] (2h)")
	}
	if f.L3SizeMB < 0 || f.L3SizeMB > 32*1024 {
		return fail("features", "l3_size_mb", "must be in [0, 32768] (32GB)")
	}
	if f.L3TTLSeconds < 0 || f.L3TTLSeconds > 86400 {
		return fail("features", "l3_ttl_seconds", "must be in [0, 86400] (24h)")
	}
	if f.EnableRedis {
		if f.RedisHost == "" {
			return fail("features", "redis_host", "required when enable_redis is true")
		}
		if f.RedisPort < 1 || f.RedisPort > 65535 {
			return fail("features", "redis_port", "must be in [1, 65535]")
		}
	}
	return nil
}

func (l LoggingConfig) validate() error {
	if !validLogLevels[l.Level] {
		return fail("logging", "level", fmt.Sprintf("unrecognized level %q", l.Level))
	}
	if l.MaxSizeMB <= 0 || l.MaxSizeMB > 1024 {
		return fail("logging", "max_size_mb", "must be in (0, 1024]")
	}
	if l.MaxFiles <= 0 || l.MaxFiles > 100 {
		return fail("logging", "max_files", "must be in (0, 100]")
	}
	if l.EnableFile && l.FilePath == "" {
		return fail("logging", "file_path", "required when enable_file is true")
	}
	return nil
}

func (m MonitoringConfig) validate() error {
	if m.PrometheusPort < 1 || m.PrometheusPort > 65535 {
		return fail("monitoring", "prometheus_port", "must be in [1, 65535]")
	}
	if m.MetricsIntervalSeconds <= 0 || m.MetricsIntervalSeconds > 3600 {
		return fail("monitoring", "metrics_interval_seconds", "must be in (0, 3600]")
	}
	if len(m.MetricsPath) == 0 || m.MetricsPath[0] != '/' {
		return fail("monitoring", "metrics_path", "must start with '/'")
	}
	return nil
}

func (t TracingConfig) validate() error {
	if !t.Enabled {
		return nil
	}
	if t.OTLPEndpoint == "" {
		return fail("tracing", "otlp_endpoint", "required when enabled is true")
	}
	if t.SamplingRate < 0 || t.SamplingRate > 1 {
		return fail("tracing", "sampling_rate", "must be in [0, 1]")
	}
	return nil
}
