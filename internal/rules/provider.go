package rules

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// Provider loads a rule catalog from some backing store.
//
// Load must return a validated catalog or a *LoadError. It is called once
// at startup and again on explicit reload; implementations must be safe to
// call while classification is running (the engine publishes the result
// atomically, the provider never touches live state).
type Provider interface {
	Load() (*Catalog, error)

	// Source names the backing store for logs and errors
	Source() string
}

// LoadError reports an unreachable or structurally invalid rule store.
// Individual malformed patterns inside an otherwise valid catalog are not
// a LoadError; they are dropped with a warning at load time.
type LoadError struct {
	Backend string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load rule catalog from %s: %v", e.Backend, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// sanitizePatterns drops regex sources that do not compile, logging each
// offender. Only catalog-origin regex strings can be malformed; keyword
// literals are escaped later by the compiler and never fail.
func sanitizePatterns(patterns []string, kind string, logger *zap.Logger) []string {
	kept := make([]string, 0, len(patterns))
	for _, src := range patterns {
		if _, err := regexp.Compile("(?i)" + src); err != nil {
			logger.Warn("dropping malformed rule pattern",
				zap.String("kind", kind),
				zap.String("pattern", src),
				zap.Error(err))
			continue
		}
		kept = append(kept, src)
	}
	return kept
}

func logCatalogCounts(c *Catalog, source string, logger *zap.Logger) {
	logger.Info("rule catalog loaded",
		zap.String("source", source),
		zap.Int("reference_keywords", len(c.ReferenceKeywords)),
		zap.Int("linking_keywords", len(c.LinkingKeywords)),
		zap.Int("revision_patterns", len(c.RevisionPatterns)),
		zap.Int("execution_patterns", len(c.ExecutionPatterns)),
		zap.Int("skip_phrases_text", len(c.SkipPhrasesText)),
		zap.Int("skip_phrases_header", len(c.SkipPhrasesHeader)),
		zap.Int("sequence_rules", len(c.SequenceRules)))
}
