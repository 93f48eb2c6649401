package classify

import (
	"strings"

	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/rules"
)

// The decision cascade. Steps run top to bottom; the first step that
// decides wins. Keeping the order as an explicit list makes each rule
// independently testable and the evaluation order enforceable.
var cascade = []cascadeStep{
	{"header-skip", stepHeaderSkip},
	{"blank-echo", stepBlankEcho},
	{"text-skip", stepTextSkip},
	{"normalize", stepNormalize},
	{"execution-response", stepExecutionResponse},
	{"special-reference", stepSpecialReference},
	{"detect-primary-reference", stepDetectPrimaryReference},
	{"execution-format", stepExecutionFormat},
	{"revision-check", stepRevisionCheck},
	{"reference-enforcement", stepReferenceEnforcement},
}

type cascadeStep struct {
	name string
	eval func(*evaluation) (model.Verdict, bool)
}

// evaluation carries the per-row state threaded through the cascade
type evaluation struct {
	ps    *PatternSet
	entry model.LogEntry
	mode  rules.BehaviorMode

	raw        string // text exactly as supplied
	trimmed    string // whitespace-trimmed text
	upper      string // upper-cased trimmed text
	normalized string // trimmed text after Normalize

	hasPrimary bool
}

// Classify runs the cascade for one entry against this pattern set.
// It is a pure function of (entry, PatternSet): no I/O, no mutable
// shared state, safe for any number of concurrent callers.
func (p *PatternSet) Classify(entry model.LogEntry) model.Verdict {
	ev := &evaluation{
		ps:    p,
		entry: entry,
		mode:  ResolveBehavior(entry.SequenceCode, p.catalog.SequenceRules),
	}
	for _, step := range cascade {
		if verdict, decided := step.eval(ev); decided {
			return verdict
		}
	}
	// reference-enforcement always decides; kept for safety
	return model.VerdictValid
}

// Step 1: header skip phrases (CLOSE UP, JOB SET-UP, ...) force Valid and
// bypass every other rule, including absent or placeholder text.
func stepHeaderSkip(ev *evaluation) (model.Verdict, bool) {
	header := ev.entry.HeaderText
	if header == "" {
		return "", false
	}
	normalized := strings.ToUpper(collapseWhitespace(header))
	for _, phrase := range ev.ps.skipHeader {
		if strings.Contains(normalized, phrase) {
			return model.VerdictValid, true
		}
	}
	return "", false
}

// Step 2: preserve blank and "N/A"-style placeholders. A truly absent
// value becomes the N/A marker; everything else placeholder-like is
// echoed back verbatim. This echo is an external contract.
func stepBlankEcho(ev *evaluation) (model.Verdict, bool) {
	if ev.entry.Text == nil {
		return model.VerdictNotApplicable, true
	}

	ev.raw = *ev.entry.Text
	ev.trimmed = strings.TrimSpace(ev.raw)
	ev.upper = strings.ToUpper(ev.trimmed)

	switch ev.upper {
	case "", "N/A", "NA", "NONE":
		return model.Echo(ev.raw), true
	}

	prefix := ev.upper
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	if strings.Contains(prefix, "N/A") {
		return model.Echo(ev.raw), true
	}

	return "", false
}

// Step 3: text skip phrases and explicit cross-references to other
// worksteps or work orders force Valid.
func stepTextSkip(ev *evaluation) (model.Verdict, bool) {
	for _, phrase := range ev.ps.skipText {
		if strings.Contains(ev.upper, phrase) {
			return model.VerdictValid, true
		}
	}

	for _, marker := range crossWorkstepMarkers {
		if strings.Contains(ev.upper, marker) {
			return model.VerdictValid, true
		}
	}
	if crossWorkOrderPattern.MatchString(ev.trimmed) {
		return model.VerdictValid, true
	}

	return "", false
}

// Step 4: canonicalize the text for all pattern checks that follow
func stepNormalize(ev *evaluation) (model.Verdict, bool) {
	ev.normalized = ev.ps.Normalize(ev.trimmed)
	return "", false
}

// Step 5: execution-only responses are Valid without any reference,
// except under strict-reference behavior. Both the raw and normalized
// forms are checked; typo repair can create or destroy a match.
func stepExecutionResponse(ev *evaluation) (model.Verdict, bool) {
	if ev.mode == rules.BehaviorStrictReference {
		return "", false
	}
	if ev.ps.MatchesExecution(ev.trimmed) || ev.ps.MatchesExecution(ev.normalized) {
		return model.VerdictValid, true
	}
	return "", false
}

// Step 6: special-case reference forms that are complete without a
// separate revision marker.
func stepSpecialReference(ev *evaluation) (model.Verdict, bool) {
	n := ev.normalized

	// "REFERENCED AMM/SRM/..." (the reference lives in another field)
	if ev.ps.referenced.MatchString(n) {
		return model.VerdictValid, true
	}
	// NDT report with its identifier
	if ndtReportPattern.MatchString(n) {
		return model.VerdictValid, true
	}
	// Data-module task together with a full service-bulletin number
	if dataModuleTaskNumbered.MatchString(n) && sbFullNumberPattern.MatchString(n) {
		return model.VerdictValid, true
	}
	// Full service-bulletin number with a linking keyword
	if sbFullNumberPattern.MatchString(n) && ev.ps.linking.MatchString(n) {
		return model.VerdictValid, true
	}
	// Maintenance-plan reference in linking-word context
	if ev.ps.manualPlan.MatchString(n) {
		return model.VerdictValid, true
	}

	return "", false
}

// Step 7: determine whether the row carries a primary reference keyword
func stepDetectPrimaryReference(ev *evaluation) (model.Verdict, bool) {
	ev.hasPrimary = ev.ps.HasPrimaryReference(ev.normalized)
	return "", false
}

// Step 8: under execution-only behavior a reference with a revision is
// the wrong structural form; no execution pattern matched by this point.
func stepExecutionFormat(ev *evaluation) (model.Verdict, bool) {
	if ev.mode != rules.BehaviorExecutionOnly {
		return "", false
	}
	if ev.hasPrimary && ev.ps.HasRevision(ev.normalized) {
		return model.VerdictWrongFormat, true
	}
	return "", false
}

// Step 9: a primary reference must carry a revision marker, except for
// inspection-report numbering which needs none.
func stepRevisionCheck(ev *evaluation) (model.Verdict, bool) {
	if !ev.hasPrimary {
		return "", false
	}
	if inspectionReportPattern.MatchString(ev.normalized) {
		return model.VerdictValid, true
	}
	if ev.ps.HasRevision(ev.normalized) {
		return model.VerdictValid, true
	}
	return model.VerdictMissingRevision, true
}

// Step 10: no primary reference. A generic document-identifier token in
// linking context still satisfies the reference requirement; otherwise a
// missing reference is an error only when the behavior mode or the
// context field says one was expected.
func stepReferenceEnforcement(ev *evaluation) (model.Verdict, bool) {
	n := ev.normalized
	if docIDPattern.MatchString(n) && ev.ps.linking.MatchString(n) {
		return model.VerdictValid, true
	}

	enforce := ev.mode == rules.BehaviorStrictReference ||
		ev.mode == rules.BehaviorExecutionOnly ||
		ev.ps.ContextHasAnyReference(ev.entry.ContextText)

	if enforce {
		return model.VerdictMissingReference, true
	}
	return model.VerdictValid, true
}
