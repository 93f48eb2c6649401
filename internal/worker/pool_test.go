package worker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeromaint/docval/internal/model"
)

// echoClassifier returns the entry text as the verdict, making results
// attributable to their jobs
type echoClassifier struct{}

func (echoClassifier) Classify(entry model.LogEntry) model.Verdict {
	if entry.Text == nil {
		return model.VerdictNotApplicable
	}
	return model.Verdict(*entry.Text)
}

func TestPool_FanOutCollect(t *testing.T) {
	const jobs = 100

	pool := NewPool(4, echoClassifier{})
	pool.Start()

	for i := 0; i < jobs; i++ {
		text := fmt.Sprintf("row-%d", i)
		pool.Submit(RowJob{Index: i, Entry: model.LogEntry{Text: &text}})
	}

	results := pool.Wait()
	require.Len(t, results, jobs)

	byIndex := make(map[int]model.Verdict, jobs)
	for _, r := range results {
		byIndex[r.Index] = r.Verdict
	}
	for i := 0; i < jobs; i++ {
		assert.Equal(t, model.Verdict(fmt.Sprintf("row-%d", i)), byIndex[i])
	}
}

func TestPool_SubmitAllBeforeWait(t *testing.T) {
	// Far more jobs than the channel buffers hold: every row must be
	// submittable before Wait is called, without blocking the submitter
	const jobs = 1000

	pool := NewPool(1, echoClassifier{})
	pool.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < jobs; i++ {
			text := fmt.Sprintf("row-%d", i)
			pool.Submit(RowJob{Index: i, Entry: model.LogEntry{Text: &text}})
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("submission blocked; results are not being drained during submit")
	}

	results := pool.Wait()
	require.Len(t, results, jobs)

	seen := make(map[int]bool, jobs)
	for _, r := range results {
		seen[r.Index] = true
	}
	assert.Len(t, seen, jobs)
}

func TestPool_ZeroWorkersClamped(t *testing.T) {
	pool := NewPool(0, echoClassifier{})
	pool.Start()

	text := "only"
	pool.Submit(RowJob{Index: 0, Entry: model.LogEntry{Text: &text}})

	results := pool.Wait()
	require.Len(t, results, 1)
	assert.Equal(t, model.Verdict("only"), results[0].Verdict)
}

func TestPool_ShutdownDropsSubmissions(t *testing.T) {
	pool := NewPool(2, echoClassifier{})
	pool.Start()
	pool.Shutdown()

	// Must not block after shutdown
	text := "late"
	pool.Submit(RowJob{Index: 0, Entry: model.LogEntry{Text: &text}})
}
