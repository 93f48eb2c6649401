package table

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeromaint/docval/internal/model"
)

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
	return path
}

func TestResolve(t *testing.T) {
	t.Run("exact names", func(t *testing.T) {
		cols := Resolve([]string{"WO", "SEQ", "wo_text_action.text", "DES", "Workstep"})
		assert.Equal(t, 0, cols.WorkOrder)
		assert.Equal(t, 1, cols.Sequence)
		assert.Equal(t, 2, cols.Text)
		assert.Equal(t, 3, cols.Context)
		assert.Equal(t, 4, cols.Workstep)
		assert.Equal(t, -1, cols.Header)
	})

	t.Run("exact match beats substring position", func(t *testing.T) {
		// "action_text" appears first but the exact candidate "text" wins
		cols := Resolve([]string{"some_text_notes", "text"})
		assert.Equal(t, 1, cols.Text)
	})

	t.Run("substring fallback", func(t *testing.T) {
		cols := Resolve([]string{"My Text Column", "Sequence Number"})
		assert.Equal(t, 0, cols.Text)
		assert.Equal(t, 1, cols.Sequence)
	})

	t.Run("case insensitive", func(t *testing.T) {
		cols := Resolve([]string{"seq", "TEXT"})
		assert.Equal(t, 0, cols.Sequence)
		assert.Equal(t, 1, cols.Text)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		cols := Resolve([]string{"alpha", "beta"})
		assert.Equal(t, -1, cols.Text)
		assert.Equal(t, -1, cols.Sequence)
	})
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"WO", "SEQ", "text", "DES"},
		{"4711", "4.1", "PERFORMED STEP 1", ""},
		{"4711", "9.1", "", "IAW AMM 52-11-01"},
	})

	tbl, err := Load(path)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)

	first := tbl.Entry(0)
	require.NotNil(t, first.Text)
	assert.Equal(t, "PERFORMED STEP 1", *first.Text)
	assert.Equal(t, "4.1", first.SequenceCode)
	assert.Equal(t, "4711", tbl.WorkOrder(0))

	// An empty cell is an absent value, not an empty string
	second := tbl.Entry(1)
	assert.Nil(t, second.Text)
	assert.Equal(t, "IAW AMM 52-11-01", second.ContextText)
}

func TestLoad_NoTextColumn(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"WO", "SEQ"},
		{"4711", "4.1"},
	})

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("text,SEQ\nSHORT ROW\nFULL ROW,4.1\n"), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)

	// Cells past the short row's end read as empty
	assert.Equal(t, "", tbl.Entry(0).SequenceCode)
	assert.Equal(t, "4.1", tbl.Entry(1).SequenceCode)
}

func TestWriteAnnotated(t *testing.T) {
	tbl := &Table{
		Header: []string{"WO", "text"},
		Records: [][]string{
			{"4711", "IAW AMM 52-11-01 REV 1"},
			{"4712", "GET ACCESS"},
		},
	}
	verdicts := []model.Verdict{model.VerdictValid, model.VerdictValid}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteAnnotated(path, tbl, verdicts))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"WO", "text", ReasonColumn}, rows[0])
	assert.Equal(t, []string{"4711", "IAW AMM 52-11-01 REV 1", "Valid"}, rows[1])
	assert.Equal(t, []string{"4712", "GET ACCESS", "Valid"}, rows[2])
}

func TestWriteAnnotated_CountMismatch(t *testing.T) {
	tbl := &Table{Header: []string{"text"}, Records: [][]string{{"A"}, {"B"}}}
	err := WriteAnnotated(filepath.Join(t.TempDir(), "out.csv"), tbl, []model.Verdict{model.VerdictValid})
	assert.Error(t, err)
}
