package model

import (
	"runtime"
	"time"
)

// Config is the complete docval configuration
type Config struct {
	Rules RulesConfig `yaml:"rules" json:"rules"`
	Batch BatchConfig `yaml:"batch" json:"batch"`
	Log   LogConfig   `yaml:"log" json:"log"`
}

// RulesConfig selects and configures the rule-catalog backend
type RulesConfig struct {
	Source string `yaml:"source" json:"source"` // "builtin", "file", or "sqlite"
	Path   string `yaml:"path" json:"path"`     // Rules YAML path (source: file)
	DSN    string `yaml:"dsn" json:"dsn"`       // SQLite DSN (source: sqlite)
	Watch  bool   `yaml:"watch" json:"watch"`   // Reload when the rules file changes (source: file)
}

// BatchConfig controls the batch pipeline
type BatchConfig struct {
	Workers      int           `yaml:"workers" json:"workers"`
	CacheEnabled bool          `yaml:"cache_enabled" json:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	Audit        bool          `yaml:"audit" json:"audit"` // Run the action-step order auditor alongside classification
	OutputDir    string        `yaml:"output_dir" json:"output_dir"`
}

// LogConfig controls logging output
type LogConfig struct {
	Level string `yaml:"level" json:"level"` // "debug", "info", "warn", "error"
	JSON  bool   `yaml:"json" json:"json"`   // JSON output instead of console encoding
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			Source: "builtin",
		},
		Batch: BatchConfig{
			Workers:      runtime.NumCPU(),
			CacheEnabled: true,
			CacheTTL:     time.Hour,
			Audit:        true,
			OutputDir:    ".",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
