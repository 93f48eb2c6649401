package table

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/aeromaint/docval/internal/model"
)

// ReasonColumn is the verdict column appended to annotated output
const ReasonColumn = "Reason"

// WriteAnnotated writes the table back out with a trailing Reason column
// holding each row's verdict. The input columns pass through untouched so
// downstream tooling keeps working.
func WriteAnnotated(path string, t *Table, verdicts []model.Verdict) error {
	if len(verdicts) != len(t.Records) {
		return fmt.Errorf("verdict count %d does not match row count %d", len(verdicts), len(t.Records))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)

	header := append(append([]string{}, t.Header...), ReasonColumn)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	width := len(t.Header)
	for i, record := range t.Records {
		row := make([]string, width+1)
		copy(row, record)
		row[width] = verdicts[i].String()
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
