// Package rules defines the validation rule catalog and its backends.
//
// A Catalog holds the complete taxonomy the classifier runs on: reference
// document keywords, linking keywords, skip phrases, revision and execution
// regex patterns, and sequence-code behavior rules. Catalogs are loaded
// through a Provider, validated once, and treated as immutable afterwards.
package rules

import (
	"errors"
	"fmt"
	"strings"
)

// BehaviorMode selects how strictly a row is validated, keyed by its
// sequence code
type BehaviorMode int

const (
	// BehaviorDefault tolerates a missing reference unless the context
	// field indicates one was expected
	BehaviorDefault BehaviorMode = iota
	// BehaviorStrictReference always requires a reference (e.g. SEQ 9.x)
	BehaviorStrictReference
	// BehaviorExecutionOnly requires execution-pattern phrasing (e.g. SEQ 4.x)
	BehaviorExecutionOnly
)

func (m BehaviorMode) String() string {
	switch m {
	case BehaviorStrictReference:
		return "strict-reference"
	case BehaviorExecutionOnly:
		return "execution-only"
	default:
		return "default"
	}
}

// Rule-type tags used by the persisted backends (file and SQLite)
const (
	ruleTypeStrictRef     = "STRICT_REF"
	ruleTypeExecutionOnly = "EXECUTION_ONLY"
)

// ParseBehaviorMode maps a persisted rule-type tag to a BehaviorMode
func ParseBehaviorMode(ruleType string) (BehaviorMode, error) {
	switch strings.ToUpper(strings.TrimSpace(ruleType)) {
	case ruleTypeStrictRef:
		return BehaviorStrictReference, nil
	case ruleTypeExecutionOnly:
		return BehaviorExecutionOnly, nil
	default:
		return BehaviorDefault, fmt.Errorf("unknown sequence rule type %q", ruleType)
	}
}

// SeqRule maps a sequence-code prefix to a behavior mode
type SeqRule struct {
	Prefix      string       `yaml:"prefix"`
	Mode        BehaviorMode `yaml:"-"`
	Description string       `yaml:"description,omitempty"`
}

// DocumentType describes one reference document type and its requirements
type DocumentType struct {
	Code                   string `yaml:"code"`
	RequiresRevision       bool   `yaml:"requires_revision"`
	RequiresLinkingKeyword bool   `yaml:"requires_linking_keyword"`
	Description            string `yaml:"description,omitempty"`
}

// Catalog is the full rule taxonomy. Pattern fields hold regex source
// strings already verified compilable by the loading Provider.
type Catalog struct {
	// ReferenceKeywords are the document-type codes (AMM, SRM, SB, ...)
	// that count as a primary reference
	ReferenceKeywords []string

	// DocumentTypes carries per-keyword detail where the backend has it;
	// keys mirror ReferenceKeywords
	DocumentTypes map[string]DocumentType

	// LinkingKeywords connect a narrative to a reference (IAW, REF, PER)
	LinkingKeywords []string

	// SkipPhrasesText / SkipPhrasesHeader force a Valid verdict when found
	// in the action text or the header field respectively
	SkipPhrasesText   []string
	SkipPhrasesHeader []string

	// RevisionPatterns: any match counts as "has revision"; order preserved
	RevisionPatterns []string

	// ExecutionPatterns are priority ordered (lower index wins ties);
	// today only "any match" matters but the order is kept deterministic
	ExecutionPatterns []string

	// SequenceRules map sequence-code prefixes to behavior modes
	SequenceRules []SeqRule
}

// ErrEmptyCatalog signals a catalog that cannot support classification.
// An empty reference-keyword set is a configuration error, not a state
// to silently tolerate.
var ErrEmptyCatalog = errors.New("rule catalog has no reference document types")

// Validate checks the invariants a catalog must satisfy before it may be
// published to the classifier
func (c *Catalog) Validate() error {
	if len(c.ReferenceKeywords) == 0 {
		return ErrEmptyCatalog
	}
	for _, r := range c.SequenceRules {
		if strings.TrimSpace(r.Prefix) == "" {
			return fmt.Errorf("sequence rule with empty prefix (%s)", r.Mode)
		}
	}
	return nil
}
