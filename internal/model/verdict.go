package model

// Verdict is the per-row classification outcome.
//
// The five canonical values below are a wire contract with downstream
// reporting and must not change. Blank or "N/A"-style inputs are echoed
// back verbatim as the verdict, so a Verdict may also carry arbitrary
// placeholder text (see Echo).
type Verdict string

const (
	VerdictValid            Verdict = "Valid"
	VerdictMissingReference Verdict = "Missing reference"
	VerdictMissingRevision  Verdict = "Missing revision"
	VerdictWrongFormat      Verdict = "Wrong format"
	VerdictNotApplicable    Verdict = "N/A"
)

// Echo wraps a blank/placeholder input as its own verdict, preserving
// case and content exactly
func Echo(text string) Verdict {
	return Verdict(text)
}

// IsCanonical reports whether the verdict is one of the five fixed states
// (as opposed to an echoed placeholder)
func (v Verdict) IsCanonical() bool {
	switch v {
	case VerdictValid, VerdictMissingReference, VerdictMissingRevision, VerdictWrongFormat, VerdictNotApplicable:
		return true
	}
	return false
}

func (v Verdict) String() string {
	return string(v)
}
