package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeromaint/docval/internal/table"
)

func auditTable(records [][]string) *table.Table {
	header := []string{"WO", "Workstep", "text", "action_date", "action_time", "SIGN"}
	return &table.Table{
		Header:  header,
		Records: records,
		Columns: table.Resolve(header),
	}
}

func TestCheckStepOrder_InOrder(t *testing.T) {
	s := CheckStepOrder(auditTable([][]string{
		{"4711", "1", "A", "2024-05-01", "09:00"},
		{"4711", "2", "B", "2024-05-01", "09:30"},
		{"4711", "3", "C", "2024-05-02", "08:00"},
	}))

	assert.Equal(t, 1, s.WorkOrders)
	assert.Equal(t, 3, s.Checked)
	assert.Equal(t, 0, s.OutOfOrder)
	assert.Empty(t, s.Findings)
}

func TestCheckStepOrder_Regression(t *testing.T) {
	s := CheckStepOrder(auditTable([][]string{
		{"4711", "1", "A", "2024-05-01", "09:00", "JDO"},
		{"4711", "2", "B", "2024-05-01", "10:00", "JDO"},
		{"4711", "3", "C", "2024-05-01", "09:30", "MSM"},
		{"4712", "1", "D", "2024-05-01", "12:00", "JDO"},
	}))

	assert.Equal(t, 2, s.WorkOrders)
	assert.Equal(t, 4, s.Checked)
	require.Equal(t, 1, s.OutOfOrder)

	f := s.Findings[0]
	assert.Equal(t, "4711", f.WorkOrder)
	assert.Equal(t, 3, f.Workstep)
	assert.Equal(t, 2, f.Row)
	assert.Equal(t, "MSM", f.Sign)
}

func TestCheckStepOrder_RowsSortedByWorkstep(t *testing.T) {
	// Input arrives out of workstep order; the check sorts before comparing
	s := CheckStepOrder(auditTable([][]string{
		{"4711", "3", "C", "2024-05-01", "11:00"},
		{"4711", "1", "A", "2024-05-01", "09:00"},
		{"4711", "2", "B", "2024-05-01", "10:00"},
	}))

	assert.Equal(t, 0, s.OutOfOrder)
}

func TestCheckStepOrder_SkipsUnparseableRows(t *testing.T) {
	s := CheckStepOrder(auditTable([][]string{
		{"4711", "1", "A", "2024-05-01", "09:00"},
		{"4711", "", "B", "2024-05-01", "10:00"},
		{"4711", "3", "C", "not a date", ""},
		{"", "4", "D", "2024-05-01", "11:00"},
	}))

	assert.Equal(t, 1, s.Checked)
	assert.Equal(t, 0, s.OutOfOrder)
}

func TestCheckStepOrder_WorkstepWithPrefix(t *testing.T) {
	// Workstep cells like "WS 10" still order numerically
	s := CheckStepOrder(auditTable([][]string{
		{"4711", "WS 2", "A", "2024-05-01", "09:00"},
		{"4711", "WS 10", "B", "2024-05-01", "10:00"},
	}))

	assert.Equal(t, 2, s.Checked)
	assert.Equal(t, 0, s.OutOfOrder)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		date, timeOfDay string
		ok              bool
	}{
		{"2024-05-01", "09:00", true},
		{"2024-05-01", "09:00:30", true},
		{"01.05.2024", "09:00", true},
		{"2024-05-01", "", true},
		{"", "", false},
		{"yesterday", "", false},
	}
	for _, tt := range tests {
		_, ok := parseTimestamp(tt.date, tt.timeOfDay)
		assert.Equal(t, tt.ok, ok, "date=%q time=%q", tt.date, tt.timeOfDay)
	}
}
