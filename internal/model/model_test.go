package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerdict_IsCanonical(t *testing.T) {
	canonical := []Verdict{
		VerdictValid, VerdictMissingReference, VerdictMissingRevision,
		VerdictWrongFormat, VerdictNotApplicable,
	}
	for _, v := range canonical {
		assert.True(t, v.IsCanonical(), "%q", v)
	}

	assert.False(t, Echo("n/a").IsCanonical())
	assert.False(t, Echo("  ").IsCanonical())
	assert.True(t, Echo("N/A").IsCanonical(), "an echoed exact N/A is the canonical marker")
}

func TestLogEntry_CacheKey(t *testing.T) {
	empty := ""
	present := LogEntry{Text: &empty}
	absent := LogEntry{Text: nil}

	// Absent and empty text are different classification inputs
	assert.NotEqual(t, present.CacheKey(), absent.CacheKey())

	a := NewLogEntry("IAW AMM 52-11-01", "4.1", "", "")
	b := NewLogEntry("IAW AMM 52-11-01", "4.1", "", "")
	assert.Equal(t, a.CacheKey(), b.CacheKey())

	c := NewLogEntry("IAW AMM 52-11-01", "9.1", "", "")
	assert.NotEqual(t, a.CacheKey(), c.CacheKey(), "sequence code is part of the key")

	d := NewLogEntry("IAW AMM 52-11-01", "4.1", "", "IAW SRM")
	assert.NotEqual(t, a.CacheKey(), d.CacheKey(), "context is part of the key")
}

func TestSummary_AddAndConsistent(t *testing.T) {
	var s Summary
	s.Add(VerdictValid)
	s.Add(VerdictValid)
	s.Add(VerdictMissingReference)
	s.Add(VerdictMissingRevision)
	s.Add(VerdictWrongFormat)
	s.Add(VerdictNotApplicable)
	s.Add(Echo("n/a"))

	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 2, s.Valid)
	assert.Equal(t, 1, s.MissingReference)
	assert.Equal(t, 1, s.MissingRevision)
	assert.Equal(t, 1, s.WrongFormat)
	assert.Equal(t, 1, s.NotApplicable)
	assert.Equal(t, 1, s.Echoed)
	assert.True(t, s.Consistent())

	s.Total++
	assert.False(t, s.Consistent())
}
