package config

import "time"

type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	Port        int    `mapstructure:"port" yaml:"port"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	Intake       IntakeConfig       `mapstructure:"intake" yaml:"intake"`
	Investigator InvestigatorConfig `mapstructure:"investigator" yaml:"investigator"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Releases     ReleaseStoreConfig `mapstructure:"releases" yaml:"releases"`
	LogStore     LogStoreConfig     `mapstructure:"log_store" yaml:"log_store"`
	Knowledge    KnowledgeConfig    `mapstructure:"knowledge" yaml:"knowledge"`
	CORS         CORSConfig         `mapstructure:"cors" yaml:"cors"`
	Monitoring   MonitoringConfig   `mapstructure:"monitoring" yaml:"monitoring"`
}

// IntakeConfig tunes the alert deduplication gate.
type IntakeConfig struct {
	DedupTTL int `mapstructure:"dedup_ttl" yaml:"dedup_ttl"` // seconds
}

func (c IntakeConfig) TTL() time.Duration {
	return time.Duration(c.DedupTTL) * time.Second
}

// InvestigatorConfig points at the external investigation agent.
type InvestigatorConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  int    `mapstructure:"timeout" yaml:"timeout"` // milliseconds
	Retries  int    `mapstructure:"retries" yaml:"retries"`
}

// CacheConfig handles the shared Valkey dedup cache. When Addr is empty or
// the node is unreachable the service falls back to a per-process cache.
type CacheConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Password string `mapstructure:"password" yaml:"password"`
	TTL      int    `mapstructure:"ttl" yaml:"ttl"` // seconds
}

// ReleaseStoreConfig points at the release-history store that serves named
// revision value snapshots.
type ReleaseStoreConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  int    `mapstructure:"timeout" yaml:"timeout"` // milliseconds
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// LogStoreConfig points at the log store that serves raw container logs.
type LogStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout   int    `mapstructure:"timeout" yaml:"timeout"` // milliseconds
	TailLines int    `mapstructure:"tail_lines" yaml:"tail_lines"`
	Username  string `mapstructure:"username" yaml:"username"`
	Password  string `mapstructure:"password" yaml:"password"`
}

// KnowledgeConfig locates the markdown knowledge base volume.
type KnowledgeConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	MetricsPath string `mapstructure:"metrics_path" yaml:"metrics_path"`
}
