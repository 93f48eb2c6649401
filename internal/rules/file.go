package rules

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileProvider loads the rule catalog from a YAML file.
//
// The file mirrors the rule-store schema: document types with their
// requirement flags, linking keywords, skip rules split by target field,
// regex pattern lists, and sequence rules tagged STRICT_REF or
// EXECUTION_ONLY.
type FileProvider struct {
	path   string
	logger *zap.Logger
}

// catalogFile is the YAML shape of a rules file
type catalogFile struct {
	DocumentTypes []DocumentType `yaml:"document_types"`
	Linking       []string       `yaml:"linking_keywords"`
	SkipText      []string       `yaml:"skip_phrases_text"`
	SkipHeader    []string       `yaml:"skip_phrases_header"`
	Revision      []string       `yaml:"revision_patterns"`
	Execution     []string       `yaml:"execution_patterns"`
	Sequence      []struct {
		Prefix      string `yaml:"prefix"`
		RuleType    string `yaml:"rule_type"`
		Description string `yaml:"description"`
	} `yaml:"sequence_rules"`
}

// NewFileProvider creates a provider reading rules from path
func NewFileProvider(path string, logger *zap.Logger) *FileProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileProvider{path: path, logger: logger}
}

// Load reads and validates the rules file
func (p *FileProvider) Load() (*Catalog, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: fmt.Errorf("parse rules file: %w", err)}
	}

	c := &Catalog{
		DocumentTypes:     make(map[string]DocumentType, len(file.DocumentTypes)),
		LinkingKeywords:   file.Linking,
		SkipPhrasesText:   file.SkipText,
		SkipPhrasesHeader: file.SkipHeader,
		RevisionPatterns:  sanitizePatterns(file.Revision, "revision", p.logger),
		ExecutionPatterns: sanitizePatterns(file.Execution, "execution", p.logger),
	}

	for _, dt := range file.DocumentTypes {
		if dt.Code == "" {
			p.logger.Warn("dropping document type with empty code")
			continue
		}
		c.ReferenceKeywords = append(c.ReferenceKeywords, dt.Code)
		c.DocumentTypes[dt.Code] = dt
	}

	for _, sr := range file.Sequence {
		mode, err := ParseBehaviorMode(sr.RuleType)
		if err != nil {
			p.logger.Warn("dropping sequence rule",
				zap.String("prefix", sr.Prefix),
				zap.Error(err))
			continue
		}
		c.SequenceRules = append(c.SequenceRules, SeqRule{
			Prefix:      sr.Prefix,
			Mode:        mode,
			Description: sr.Description,
		})
	}

	if err := c.Validate(); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	logCatalogCounts(c, p.Source(), p.logger)
	return c, nil
}

// Source names the backend
func (p *FileProvider) Source() string {
	return "file:" + p.path
}
