// Package table reads and writes the tabular work-package exports the
// batch pipeline consumes. Column discovery uses explicit ordered
// candidate lists per logical field, resolved once per load.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/aeromaint/docval/internal/model"
)

// Candidate column names per logical field, in resolution order. These
// mirror the export headers of the maintenance system plus the short
// names used in hand-edited files.
var (
	textCandidates      = []string{"wo_text_action.text", "text", "action_text"}
	sequenceCandidates  = []string{"SEQ", "sequence"}
	headerCandidates    = []string{"wo_text_action.header", "header"}
	contextCandidates   = []string{"DES", "description"}
	workOrderCandidates = []string{"WO", "WO_NO", "wo_header.wo"}
	workstepCandidates  = []string{"Workstep", "wo_text_action.workstep_linkno_i"}
	dateCandidates      = []string{"action_date", "ActionDate", "date"}
	timeCandidates      = []string{"action_time", "ActionTime", "time"}
	stateCandidates     = []string{"STATE", "wo_header.status"}
	signCandidates      = []string{"SIGN", "action_sign", "wo_text_action.sign"}
)

// Columns holds resolved column indexes; -1 marks an absent field
type Columns struct {
	Text      int
	Sequence  int
	Header    int
	Context   int
	WorkOrder int
	Workstep  int
	Date      int
	Time      int
	State     int
	Sign      int
}

// Table is one loaded input file: header row, data records, and the
// resolved column mapping
type Table struct {
	Header  []string
	Records [][]string
	Columns Columns
}

// Load reads a CSV export and resolves its columns. It fails only on
// unreadable input or when the text column cannot be found; every other
// field is optional.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged exports happen; tolerate them

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("input %s is empty", path)
	}

	t := &Table{
		Header:  rows[0],
		Records: rows[1:],
		Columns: Resolve(rows[0]),
	}
	if t.Columns.Text < 0 {
		return nil, fmt.Errorf("input %s has no action-text column (tried %s)",
			path, strings.Join(textCandidates, ", "))
	}
	return t, nil
}

// Resolve maps the header row to column indexes. For each field the
// candidates are tried in order: exact case-insensitive match across the
// whole header first, then case-insensitive substring. Resolution happens
// once per load, never per row.
func Resolve(header []string) Columns {
	return Columns{
		Text:      findColumn(header, textCandidates),
		Sequence:  findColumn(header, sequenceCandidates),
		Header:    findColumn(header, headerCandidates),
		Context:   findColumn(header, contextCandidates),
		WorkOrder: findColumn(header, workOrderCandidates),
		Workstep:  findColumn(header, workstepCandidates),
		Date:      findColumn(header, dateCandidates),
		Time:      findColumn(header, timeCandidates),
		State:     findColumn(header, stateCandidates),
		Sign:      findColumn(header, signCandidates),
	}
}

func findColumn(header []string, candidates []string) int {
	for _, cand := range candidates {
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), cand) {
				return i
			}
		}
	}
	for _, cand := range candidates {
		lower := strings.ToLower(cand)
		for i, col := range header {
			if strings.Contains(strings.ToLower(col), lower) {
				return i
			}
		}
	}
	return -1
}

// Entry builds the classification inputs for record i. Empty cells are
// absent values, matching the source spreadsheet semantics.
func (t *Table) Entry(i int) model.LogEntry {
	entry := model.LogEntry{
		SequenceCode: t.cell(i, t.Columns.Sequence),
		HeaderText:   t.cell(i, t.Columns.Header),
		ContextText:  t.cell(i, t.Columns.Context),
	}
	if text := t.cell(i, t.Columns.Text); text != "" {
		entry.Text = &text
	}
	return entry
}

// WorkOrder returns record i's work order, or "" when unknown
func (t *Table) WorkOrder(i int) string {
	return t.cell(i, t.Columns.WorkOrder)
}

// Workstep returns record i's raw workstep value
func (t *Table) Workstep(i int) string {
	return t.cell(i, t.Columns.Workstep)
}

// ActionTimestamp returns record i's raw date and time cells
func (t *Table) ActionTimestamp(i int) (date, timeOfDay string) {
	return t.cell(i, t.Columns.Date), t.cell(i, t.Columns.Time)
}

// State returns record i's workflow state, or "" when unknown
func (t *Table) State(i int) string {
	return t.cell(i, t.Columns.State)
}

// Sign returns who signed record i's action, or "" when unknown
func (t *Table) Sign(i int) string {
	return t.cell(i, t.Columns.Sign)
}

func (t *Table) cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Records) || col >= len(t.Records[row]) {
		return ""
	}
	return t.Records[row][col]
}
