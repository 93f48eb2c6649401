package cli

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/rules"
)

// Rule-source flags shared by the commands that need an engine
var (
	rulesSource string
	rulesFile   string
	rulesDSN    string
)

// buildLogger creates the process logger from flags and config
func buildLogger(cfg model.LogConfig, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var zc zap.Config
	if cfg.JSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// providerFromConfig picks the rule-catalog backend
func providerFromConfig(cfg model.RulesConfig, logger *zap.Logger) (rules.Provider, error) {
	switch cfg.Source {
	case "", "builtin":
		return rules.NewBuiltinProvider(logger), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("rules source %q requires a rules file path", cfg.Source)
		}
		return rules.NewFileProvider(cfg.Path, logger), nil
	case "sqlite":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("rules source %q requires a DSN", cfg.Source)
		}
		return rules.NewSQLiteProvider(cfg.DSN, logger), nil
	default:
		return nil, fmt.Errorf("unknown rules source %q (want builtin, file, or sqlite)", cfg.Source)
	}
}

// rulesConfigFromFlags overlays the shared rule-source flags on the config
func rulesConfigFromFlags(cfg model.RulesConfig) model.RulesConfig {
	if rulesSource != "" {
		cfg.Source = rulesSource
	}
	if rulesFile != "" {
		cfg.Path = rulesFile
		if rulesSource == "" {
			cfg.Source = "file"
		}
	}
	if rulesDSN != "" {
		cfg.DSN = rulesDSN
		if rulesSource == "" {
			cfg.Source = "sqlite"
		}
	}
	return cfg
}
