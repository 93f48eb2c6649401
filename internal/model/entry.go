package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// LogEntry represents one maintenance-log row's classification inputs
type LogEntry struct {
	Text         *string `json:"text"`                    // Action narrative; nil when the row carried no value at all
	SequenceCode string  `json:"sequence_code,omitempty"` // Workflow step identifier (e.g. "4.12"), selects behavior mode
	HeaderText   string  `json:"header_text,omitempty"`   // Short action label; can force a Valid verdict on its own
	ContextText  string  `json:"context_text,omitempty"`  // Secondary description; only consulted for reference enforcement
}

// NewLogEntry creates an entry with a present text value
func NewLogEntry(text, sequenceCode, headerText, contextText string) LogEntry {
	return LogEntry{
		Text:         &text,
		SequenceCode: sequenceCode,
		HeaderText:   headerText,
		ContextText:  contextText,
	}
}

// CacheKey generates a stable cache key from all classification inputs
func (e LogEntry) CacheKey() string {
	// A leading marker distinguishes an absent text from an empty one
	text := "\x00"
	if e.Text != nil {
		text = "\x01" + *e.Text
	}

	hash := sha256.Sum256([]byte(text + "\x1f" + e.SequenceCode + "\x1f" + e.HeaderText + "\x1f" + e.ContextText))
	return "docval:v1:" + hex.EncodeToString(hash[:])
}
