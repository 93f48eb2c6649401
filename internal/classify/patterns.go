// Package classify implements the reference/revision classification engine:
// a compiled-pattern layer derived from the rule catalog and the cascading
// decision algorithm that turns a log entry into a verdict.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aeromaint/docval/internal/rules"
)

// neverMatch is the compiled form of an empty keyword family: a pattern
// that cannot match any input
var neverMatch = regexp.MustCompile(`\b\B`)

// Fixed structural patterns. These identify document-shaped tokens
// independent of the catalog's keyword taxonomy.
var (
	docIDPattern            = regexp.MustCompile(`(?i)\b[A-Z0-9]{1,4}[0-9A-Z\-]*\d+\b`)
	dmcPattern              = regexp.MustCompile(`(?i)\bDMC-?[A-Z0-9\-]+\b`)
	b787DocPattern          = regexp.MustCompile(`(?i)\bB787-[A-Z0-9\-]+\b`)
	dataModuleTaskText      = regexp.MustCompile(`(?i)\bDATA\s+MODULE\s+TASK\b`)
	dataModuleTaskNumbered  = regexp.MustCompile(`(?i)\bDATA\s+MODULE\s+TASK\s+\d+\b`)
	ndtReportPattern        = regexp.MustCompile(`(?i)\bNDT\s+REPORT\s+[A-Z0-9\-]+\b`)
	sbFullNumberPattern     = regexp.MustCompile(`(?i)\bSB\s+[A-Z0-9]{1,5}-[A-Z0-9\-]+\b`)
	inspectionReportPattern = regexp.MustCompile(`(?i)\bNDT02-\d{4,}\b`)
	crossWorkOrderPattern   = regexp.MustCompile("(?i)\\bWO\\s*[:\\-]\\s*[0-9`' ]+")
)

// Cross-workstep references recognized as substrings of the upper-cased text
var crossWorkstepMarkers = []string{"REFER RESULT WT", "REFER WT "}

// PatternSet is the complete compiled form of one rule catalog. It is
// immutable once built; a reload produces a whole new set, never a partial
// update, so concurrent readers always observe a consistent catalog.
type PatternSet struct {
	catalog *rules.Catalog

	refKeyword *regexp.Regexp // any primary reference keyword
	linking    *regexp.Regexp // any linking keyword
	referenced *regexp.Regexp // "REFERENCED <keyword>" phrasing
	manualPlan *regexp.Regexp // MP reference requiring linking-word context

	revision  []*regexp.Regexp
	execution []*regexp.Regexp // priority order preserved from the catalog

	skipText   []string // upper-cased text skip phrases
	skipHeader []string // upper-cased header skip phrases

	norm normalizer

	degraded []string // keyword families that compiled empty
}

// Compile derives a PatternSet from a catalog. It is a pure function:
// keyword literals are escaped, so building cannot fail; regex sources
// in the catalog were already verified compilable by the provider.
func Compile(catalog *rules.Catalog) *PatternSet {
	ps := &PatternSet{catalog: catalog}

	refAlt := keywordAlternation(catalog.ReferenceKeywords)
	linkAlt := keywordAlternation(catalog.LinkingKeywords)

	if refAlt == "" {
		ps.degraded = append(ps.degraded, "reference-keywords")
		ps.refKeyword = neverMatch
		ps.referenced = neverMatch
	} else {
		ps.refKeyword = regexp.MustCompile(`(?i)\b(?:` + refAlt + `)\b`)
		ps.referenced = regexp.MustCompile(`(?i)\bREFERENCED\s+(?:` + refAlt + `)\b`)
	}

	if linkAlt == "" {
		ps.degraded = append(ps.degraded, "linking-keywords")
		ps.linking = neverMatch
		ps.manualPlan = neverMatch
	} else {
		ps.linking = regexp.MustCompile(`(?i)\b(?:` + linkAlt + `)\b`)
		ps.manualPlan = regexp.MustCompile(`(?i)\b(?:` + linkAlt + `)\s+MP\b`)
	}

	if len(catalog.RevisionPatterns) == 0 {
		ps.degraded = append(ps.degraded, "revision-patterns")
	}
	for _, src := range catalog.RevisionPatterns {
		ps.revision = append(ps.revision, regexp.MustCompile("(?i)"+src))
	}

	if len(catalog.ExecutionPatterns) == 0 {
		ps.degraded = append(ps.degraded, "execution-patterns")
	}
	for _, src := range catalog.ExecutionPatterns {
		ps.execution = append(ps.execution, regexp.MustCompile("(?i)"+src))
	}

	for _, phrase := range catalog.SkipPhrasesText {
		ps.skipText = append(ps.skipText, strings.ToUpper(phrase))
	}
	for _, phrase := range catalog.SkipPhrasesHeader {
		ps.skipHeader = append(ps.skipHeader, strings.ToUpper(phrase))
	}

	ps.norm = newNormalizer(refAlt, linkAlt)

	return ps
}

// Catalog returns the catalog this set was compiled from
func (p *PatternSet) Catalog() *rules.Catalog {
	return p.catalog
}

// Degraded lists keyword families that compiled empty. A degraded set
// still classifies, but e.g. an empty reference-keyword family collapses
// every non-special-case row to "Missing reference"; callers should
// surface this condition.
func (p *PatternSet) Degraded() []string {
	return p.degraded
}

// HasPrimaryReference reports whether text contains a reference-document
// keyword (AMM, SRM, SB, ...)
func (p *PatternSet) HasPrimaryReference(text string) bool {
	return p.refKeyword.MatchString(text)
}

// HasLinkingKeyword reports whether text contains a linking word (IAW,
// REF, PER, ...)
func (p *PatternSet) HasLinkingKeyword(text string) bool {
	return p.linking.MatchString(text)
}

// HasRevision reports whether any revision pattern matches
func (p *PatternSet) HasRevision(text string) bool {
	for _, re := range p.revision {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchesExecution reports whether the text is an execution-only response
// (e.g. "PERFORMED STEP 2"). Markup is stripped and whitespace collapsed
// before matching, since these narratives arrive with embedded tags.
func (p *PatternSet) MatchesExecution(text string) bool {
	cleaned := strings.ToUpper(collapseWhitespace(stripMarkup(text)))
	for _, re := range p.execution {
		if re.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// ContextHasAnyReference reports whether a context field contains any kind
// of document reference: a primary keyword, a DMC/B787/doc-ID token, an
// NDT report, a full service-bulletin number, a data-module task, or
// "REFERENCED <keyword>" phrasing. Used to decide whether a missing
// reference in the row itself should be enforced.
func (p *PatternSet) ContextHasAnyReference(context string) bool {
	if strings.TrimSpace(context) == "" {
		return false
	}
	n := p.Normalize(context)

	return p.refKeyword.MatchString(n) ||
		dmcPattern.MatchString(n) ||
		b787DocPattern.MatchString(n) ||
		dataModuleTaskText.MatchString(n) ||
		ndtReportPattern.MatchString(n) ||
		sbFullNumberPattern.MatchString(n) ||
		dataModuleTaskNumbered.MatchString(n) ||
		p.referenced.MatchString(n)
}

// keywordAlternation builds a regex alternation of escaped literals,
// longest first so multi-word and prefixed keywords win over their
// shorter siblings. Returns "" for an empty family.
func keywordAlternation(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	escaped := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(kw))
	}
	if len(escaped) == 0 {
		return ""
	}
	sort.Slice(escaped, func(i, j int) bool {
		if len(escaped[i]) != len(escaped[j]) {
			return len(escaped[i]) > len(escaped[j])
		}
		return escaped[i] < escaped[j]
	})
	return strings.Join(escaped, "|")
}
