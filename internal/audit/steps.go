// Package audit implements the action-step order check: within each work
// order, action timestamps must not run backwards as workstep numbers
// increase. It is independent of the reference/revision classifier and
// runs alongside it in the batch pipeline.
package audit

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aeromaint/docval/internal/table"
)

var digitRun = regexp.MustCompile(`\d+`)

// Timestamp layouts seen in exports, tried in order
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
}

// Finding flags one row whose timestamp contradicts its workstep order
type Finding struct {
	Row       int    `json:"row"`
	WorkOrder string `json:"work_order"`
	Workstep  int    `json:"workstep"`
	Sign      string `json:"sign,omitempty"` // who signed the offending action
	Issue     string `json:"issue"`
}

// Summary aggregates one audit run
type Summary struct {
	WorkOrders int       `json:"work_orders"` // distinct work orders seen
	Checked    int       `json:"checked"`     // rows with a parseable workstep and timestamp
	OutOfOrder int       `json:"out_of_order"`
	Findings   []Finding `json:"findings,omitempty"`
}

type step struct {
	row      int
	workstep int
	sign     string
	at       time.Time
}

// CheckStepOrder audits the table. Rows without a parseable workstep or
// timestamp are skipped, not flagged; the check only asserts ordering
// between rows it can actually place.
func CheckStepOrder(t *table.Table) *Summary {
	summary := &Summary{}

	byWorkOrder := make(map[string][]step)
	for i := range t.Records {
		wo := strings.TrimSpace(t.WorkOrder(i))
		if wo == "" {
			continue
		}
		ws, ok := parseWorkstep(t.Workstep(i))
		if !ok {
			continue
		}
		at, ok := parseTimestamp(t.ActionTimestamp(i))
		if !ok {
			continue
		}
		byWorkOrder[wo] = append(byWorkOrder[wo], step{row: i, workstep: ws, sign: strings.TrimSpace(t.Sign(i)), at: at})
	}

	workOrders := make([]string, 0, len(byWorkOrder))
	for wo := range byWorkOrder {
		workOrders = append(workOrders, wo)
	}
	sort.Strings(workOrders)

	summary.WorkOrders = len(workOrders)
	for _, wo := range workOrders {
		steps := byWorkOrder[wo]
		summary.Checked += len(steps)

		sort.SliceStable(steps, func(i, j int) bool {
			return steps[i].workstep < steps[j].workstep
		})

		lastAt := time.Time{}
		lastStep := 0
		for _, s := range steps {
			if !lastAt.IsZero() && s.workstep > lastStep && s.at.Before(lastAt) {
				summary.OutOfOrder++
				summary.Findings = append(summary.Findings, Finding{
					Row:       s.row,
					WorkOrder: wo,
					Workstep:  s.workstep,
					Sign:      s.sign,
					Issue: fmt.Sprintf("workstep %d signed at %s, before workstep %d at %s",
						s.workstep, s.at.Format("2006-01-02 15:04"),
						lastStep, lastAt.Format("2006-01-02 15:04")),
				})
				continue
			}
			if s.at.After(lastAt) || lastAt.IsZero() {
				lastAt = s.at
				lastStep = s.workstep
			}
		}
	}

	return summary
}

func parseWorkstep(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	m := digitRun.FindString(raw)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseTimestamp(date, timeOfDay string) (time.Time, bool) {
	combined := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(timeOfDay))
	if combined == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if at, err := time.Parse(layout, combined); err == nil {
			return at, true
		}
	}
	return time.Time{}, false
}
