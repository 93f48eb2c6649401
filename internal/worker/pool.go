// Package worker runs row classification across a bounded pool of
// goroutines. Classification is pure and CPU-bound, so the pool needs no
// per-job coordination beyond fan-out and collection.
package worker

import (
	"context"
	"sync"

	"github.com/aeromaint/docval/internal/model"
)

// Classifier produces a verdict for one entry
type Classifier interface {
	Classify(entry model.LogEntry) model.Verdict
}

// RowJob is one row to classify
type RowJob struct {
	Index int
	Entry model.LogEntry
}

// RowResult is the verdict for one row
type RowResult struct {
	Index   int
	Verdict model.Verdict
}

// Pool fans RowJobs out to workers and collects RowResults. Results are
// drained as they arrive, so Submit only ever blocks on the bounded jobs
// queue; callers may submit any number of jobs before calling Wait.
type Pool struct {
	workers     int
	classifier  Classifier
	jobs        chan RowJob
	results     chan RowResult
	collected   []RowResult
	collectDone chan struct{}
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

// NewPool creates a pool with the given worker count
func NewPool(workers int, classifier Classifier) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:     workers,
		classifier:  classifier,
		jobs:        make(chan RowJob, workers*2), // buffered to keep workers fed
		results:     make(chan RowResult, workers*2),
		collectDone: make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := RowResult{Index: job.Index, Verdict: p.classifier.Classify(job.Entry)}
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect drains results continuously so workers never stall on a full
// results channel while jobs are still being submitted
func (p *Pool) collect() {
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
	close(p.collectDone)
}

// Submit queues a job. Dropped silently after Shutdown.
func (p *Pool) Submit(job RowJob) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for the workers to drain it, and returns
// all results (unordered; use Index to place them)
func (p *Pool) Wait() []RowResult {
	close(p.jobs)
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
	return p.collected
}

// Shutdown stops the pool immediately, abandoning queued jobs
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
