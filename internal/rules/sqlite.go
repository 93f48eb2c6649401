package rules

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteProvider loads the rule catalog from a SQLite rule store.
//
// Schema (active rows only are read):
//
//	ref_document_types(doc_code, requires_revision, requires_linking_keyword, description, is_active)
//	linking_keywords(keyword, description, is_active)
//	revision_patterns(id, regex_pattern, description, is_active)
//	execution_patterns(id, regex_pattern, description, priority, is_active)
//	skip_rules(applies_to, keyword, description, is_active)   -- applies_to: TEXT | HEADER
//	seq_rules(seq_prefix, rule_type, description, is_active)  -- rule_type: STRICT_REF | EXECUTION_ONLY
type SQLiteProvider struct {
	dsn    string
	logger *zap.Logger
}

// NewSQLiteProvider creates a provider reading rules from the given DSN
func NewSQLiteProvider(dsn string, logger *zap.Logger) *SQLiteProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteProvider{dsn: dsn, logger: logger}
}

// Load queries all rule tables and assembles a validated catalog
func (p *SQLiteProvider) Load() (*Catalog, error) {
	db, err := sql.Open("sqlite3", p.dsn)
	if err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: fmt.Errorf("connect: %w", err)}
	}

	c := &Catalog{DocumentTypes: make(map[string]DocumentType)}

	if err := p.loadDocumentTypes(db, c); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	if err := p.loadLinkingKeywords(db, c); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	if err := p.loadPatterns(db, c); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	if err := p.loadSkipRules(db, c); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	if err := p.loadSeqRules(db, c); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}

	if err := c.Validate(); err != nil {
		return nil, &LoadError{Backend: p.Source(), Err: err}
	}
	logCatalogCounts(c, p.Source(), p.logger)
	return c, nil
}

// Source names the backend
func (p *SQLiteProvider) Source() string {
	return "sqlite:" + p.dsn
}

func (p *SQLiteProvider) loadDocumentTypes(db *sql.DB, c *Catalog) error {
	rows, err := db.Query(`
		SELECT doc_code, requires_revision, requires_linking_keyword, COALESCE(description, '')
		FROM ref_document_types
		WHERE is_active = 1
		ORDER BY doc_code`)
	if err != nil {
		return fmt.Errorf("query ref_document_types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var dt DocumentType
		if err := rows.Scan(&dt.Code, &dt.RequiresRevision, &dt.RequiresLinkingKeyword, &dt.Description); err != nil {
			return fmt.Errorf("scan ref_document_types: %w", err)
		}
		c.ReferenceKeywords = append(c.ReferenceKeywords, dt.Code)
		c.DocumentTypes[dt.Code] = dt
	}
	return rows.Err()
}

func (p *SQLiteProvider) loadLinkingKeywords(db *sql.DB, c *Catalog) error {
	rows, err := db.Query(`
		SELECT keyword
		FROM linking_keywords
		WHERE is_active = 1
		ORDER BY keyword`)
	if err != nil {
		return fmt.Errorf("query linking_keywords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return fmt.Errorf("scan linking_keywords: %w", err)
		}
		c.LinkingKeywords = append(c.LinkingKeywords, kw)
	}
	return rows.Err()
}

func (p *SQLiteProvider) loadPatterns(db *sql.DB, c *Catalog) error {
	revision, err := p.queryPatterns(db, `
		SELECT regex_pattern
		FROM revision_patterns
		WHERE is_active = 1
		ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query revision_patterns: %w", err)
	}
	c.RevisionPatterns = sanitizePatterns(revision, "revision", p.logger)

	execution, err := p.queryPatterns(db, `
		SELECT regex_pattern
		FROM execution_patterns
		WHERE is_active = 1
		ORDER BY priority ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("query execution_patterns: %w", err)
	}
	c.ExecutionPatterns = sanitizePatterns(execution, "execution", p.logger)
	return nil
}

func (p *SQLiteProvider) queryPatterns(db *sql.DB, query string) ([]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var patterns []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		patterns = append(patterns, src)
	}
	return patterns, rows.Err()
}

func (p *SQLiteProvider) loadSkipRules(db *sql.DB, c *Catalog) error {
	rows, err := db.Query(`
		SELECT applies_to, keyword
		FROM skip_rules
		WHERE is_active = 1
		ORDER BY applies_to, keyword`)
	if err != nil {
		return fmt.Errorf("query skip_rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var appliesTo, keyword string
		if err := rows.Scan(&appliesTo, &keyword); err != nil {
			return fmt.Errorf("scan skip_rules: %w", err)
		}
		switch appliesTo {
		case "HEADER":
			c.SkipPhrasesHeader = append(c.SkipPhrasesHeader, keyword)
		case "TEXT":
			c.SkipPhrasesText = append(c.SkipPhrasesText, keyword)
		default:
			p.logger.Warn("dropping skip rule with unknown target",
				zap.String("applies_to", appliesTo),
				zap.String("keyword", keyword))
		}
	}
	return rows.Err()
}

func (p *SQLiteProvider) loadSeqRules(db *sql.DB, c *Catalog) error {
	rows, err := db.Query(`
		SELECT seq_prefix, rule_type, COALESCE(description, '')
		FROM seq_rules
		WHERE is_active = 1
		ORDER BY seq_prefix`)
	if err != nil {
		return fmt.Errorf("query seq_rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var prefix, ruleType, description string
		if err := rows.Scan(&prefix, &ruleType, &description); err != nil {
			return fmt.Errorf("scan seq_rules: %w", err)
		}
		mode, err := ParseBehaviorMode(ruleType)
		if err != nil {
			p.logger.Warn("dropping sequence rule",
				zap.String("prefix", prefix),
				zap.Error(err))
			continue
		}
		c.SequenceRules = append(c.SequenceRules, SeqRule{
			Prefix:      prefix,
			Mode:        mode,
			Description: description,
		})
	}
	return rows.Err()
}
