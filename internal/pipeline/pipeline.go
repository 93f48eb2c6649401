// Package pipeline runs the batch classification flow: load rows, resolve
// columns, classify every row through the engine, aggregate verdict
// counts, and optionally audit action-step ordering.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/aeromaint/docval/internal/audit"
	"github.com/aeromaint/docval/internal/classify"
	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/table"
	"github.com/aeromaint/docval/internal/worker"
)

// Options controls one pipeline instance
type Options struct {
	Workers      int
	CacheEnabled bool          // memoize verdicts for repeated input tuples
	CacheTTL     time.Duration // memo entry lifetime
	Audit        bool          // run the action-step order check
}

// Result is the outcome of one batch run
type Result struct {
	Report   model.BatchReport
	Verdicts []model.Verdict // one per input row, in row order
	Rows     []model.RowResult
	Audit    *audit.Summary // nil when auditing is disabled
}

// Pipeline classifies tables of log entries
type Pipeline struct {
	engine *classify.Engine
	logger *zap.Logger
	opts   Options
}

// New creates a pipeline around an initialized engine
func New(engine *classify.Engine, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &Pipeline{engine: engine, logger: logger, opts: opts}
}

// Run classifies every record in the table. The context is checked
// between row submissions; classification of an individual row is bounded
// and not cancellable.
func (p *Pipeline) Run(ctx context.Context, t *table.Table) (*Result, error) {
	report := model.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	classifier, hits := p.classifier()
	pool := worker.NewPool(p.opts.Workers, classifier)
	pool.Start()

	submitted := 0
	for i := range t.Records {
		if err := ctx.Err(); err != nil {
			pool.Shutdown()
			return nil, err
		}
		pool.Submit(worker.RowJob{Index: i, Entry: t.Entry(i)})
		submitted++
	}

	verdicts := make([]model.Verdict, len(t.Records))
	for _, r := range pool.Wait() {
		verdicts[r.Index] = r.Verdict
	}

	result := &Result{
		Verdicts: verdicts,
		Rows:     make([]model.RowResult, len(verdicts)),
	}
	for i, v := range verdicts {
		result.Rows[i] = model.RowResult{Index: i, WorkOrder: t.WorkOrder(i), Verdict: v}
		report.Summary.Add(v)
	}
	report.Summary.CacheHits = int(hits.Load())

	if !report.Summary.Consistent() {
		// Every verdict must land in exactly one category; a miss here
		// means an uncategorized verdict leaked out of the classifier
		p.logger.Warn("verdict count mismatch",
			zap.Int("total", report.Summary.Total))
	}

	if p.opts.Audit {
		result.Audit = audit.CheckStepOrder(t)
		if result.Audit.OutOfOrder > 0 {
			p.logger.Info("action-step order issues found",
				zap.Int("out_of_order", result.Audit.OutOfOrder),
				zap.Int("work_orders", result.Audit.WorkOrders))
		}
	}

	report.FinishedAt = time.Now()
	result.Report = report

	p.logger.Info("batch run complete",
		zap.String("run_id", report.RunID),
		zap.Int("rows", submitted),
		zap.Int("valid", report.Summary.Valid),
		zap.Int("missing_reference", report.Summary.MissingReference),
		zap.Int("missing_revision", report.Summary.MissingRevision),
		zap.Int("wrong_format", report.Summary.WrongFormat),
		zap.Int("not_applicable", report.Summary.NotApplicable+report.Summary.Echoed),
		zap.Int("cache_hits", report.Summary.CacheHits),
		zap.Duration("took", report.Duration()))

	return result, nil
}

// classifier wraps the engine with an optional verdict memo cache.
// Maintenance logs repeat narratives heavily ("GET ACCESS", "CLOSE UP"),
// so identical input tuples short-circuit to the cached verdict.
func (p *Pipeline) classifier() (worker.Classifier, *atomic.Int64) {
	hits := &atomic.Int64{}
	if !p.opts.CacheEnabled {
		return p.engine, hits
	}
	return &cachingClassifier{
		engine: p.engine,
		cache:  gocache.New(p.opts.CacheTTL, 2*p.opts.CacheTTL),
		hits:   hits,
	}, hits
}

type cachingClassifier struct {
	engine *classify.Engine
	cache  *gocache.Cache
	hits   *atomic.Int64
}

func (c *cachingClassifier) Classify(entry model.LogEntry) model.Verdict {
	key := entry.CacheKey()
	if cached, found := c.cache.Get(key); found {
		c.hits.Add(1)
		return cached.(model.Verdict)
	}

	verdict := c.engine.Classify(entry)
	c.cache.Set(key, verdict, gocache.DefaultExpiration)
	return verdict
}
