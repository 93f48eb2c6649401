package rules

import "go.uber.org/zap"

// Builtin returns the compiled-in rule catalog. It mirrors the taxonomy
// the validation team maintains for line-maintenance work packages and is
// the default when no external rule store is configured.
func Builtin() *Catalog {
	return &Catalog{
		ReferenceKeywords: []string{
			"AMM", "DMC", "SRM", "CMM", "EMM", "SOPM", "SWPM",
			"IPD", "FIM", "TSM", "IPC", "SB", "AD", "SOP", "NDT02",
			"NTO", "MEL", "NEF", "MME", "LMM", "NTM", "DWG", "AIPC", "AMMS",
			"DDG", "VSB", "BSI", "FTD", "TIPF", "MNT", "EEL VNA", "EOD",
			"NDT Manual", "NDT Report", "NDTREPORT", "ATR-A",
		},
		LinkingKeywords: []string{"IAW", "REF", "PER", "I.A.W"},

		// Only phrases that are purely procedural and never accompany a
		// reference; broader wording like "MAKE SURE" causes false Valids
		SkipPhrasesText: []string{
			"GET ACCESS", "GAIN ACCESS", "GAINED ACCESS", "ACCESS GAINED",
			"SPARE ORDERED", "ORDERED SPARE",
			"OBEY ALL", "FOLLOW ALL", "COMPLY WITH", "MEASURE AND RECORD",
			"SET TO INACTIVE", "SEE FIGURE", "REFER TO FIGURE",
		},
		SkipPhrasesHeader: []string{
			"CLOSE UP", "CLOSEUP", "CLOSE-UP", "CLOSE-UP:", "JOB CLOSE-UP",
			"JOB SET UP", "JOB SETUP", "JOBSETUP", "JOB SET-UP", "JOP SET-UP",
			"JOB SET-UP 1 - GENERAL",
			"OPEN ACCESS", "OPENACCESS",
			"CLOSE ACCESS", "CLOSEACCESS",
			"GENERAL",
		},

		RevisionPatterns: []string{
			`\bREV\s*[:.]?\s*\d+\b`,
			`\bISSUE\s*[:.]?\s*\d+\b`,
			`\bISSUED\s+SD\.?\s*\d+\b`,
			`\bTAR\s*\d+\b`,
			`\b(?:EXP|DEADLINE|DUE\s+DATE|REV\s+DATE)\s*[:.]?\s*\d{1,2}[-/]?[A-Z]{3}[-/]?\d{2,4}\b`,
			`\b(?:EXP|DEADLINE|DUE\s+DATE|REV\s+DATE)\s*[:.]?\s*\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`,
		},

		// Priority ordered: most specific phrasing first
		ExecutionPatterns: []string{
			`\bPERFORMED\s+STEP\s*\d*\b`,
			`\bSTEP\s+\d+\s+(?:PERFORMED|COMPLETED|DONE|ACCOMPLISHED)\b`,
			`\bTASK\s+(?:PERFORMED|COMPLETED|CARRIED\s+OUT|ACCOMPLISHED)\b`,
			`\bWORK\s+(?:CARRIED\s+OUT|PERFORMED|DONE)\b`,
			`^(?:PERFORMED|ACCOMPLISHED|CARRIED\s+OUT|COMPLIED)\b`,
		},

		SequenceRules: []SeqRule{
			{Prefix: "9.", Mode: BehaviorStrictReference, Description: "inspection findings require reference and revision"},
			{Prefix: "2.", Mode: BehaviorExecutionOnly, Description: "preparation steps"},
			{Prefix: "3.", Mode: BehaviorExecutionOnly, Description: "removal steps"},
			{Prefix: "4.", Mode: BehaviorExecutionOnly, Description: "execution steps require execution phrasing"},
			{Prefix: "5.", Mode: BehaviorExecutionOnly, Description: "installation steps"},
		},
	}
}

// BuiltinProvider serves the compiled-in catalog
type BuiltinProvider struct {
	logger *zap.Logger
}

// NewBuiltinProvider creates a provider backed by the compiled-in catalog
func NewBuiltinProvider(logger *zap.Logger) *BuiltinProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuiltinProvider{logger: logger}
}

// Load returns a fresh copy of the builtin catalog
func (p *BuiltinProvider) Load() (*Catalog, error) {
	c := Builtin()
	if err := c.Validate(); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	logCatalogCounts(c, p.Source(), p.logger)
	return c, nil
}

// Source names the backend
func (p *BuiltinProvider) Source() string {
	return "builtin"
}
