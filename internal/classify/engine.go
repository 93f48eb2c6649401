package classify

import (
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/rules"
)

// ErrReloadThrottled is returned when Reload is called faster than the
// engine's reload limit allows. The published ruleset is unchanged.
var ErrReloadThrottled = errors.New("rule catalog reload throttled")

// Reloads hit the backing rule store; coalesce bursts (e.g. a flurry of
// file-watch events from one editor save) to at most one per interval
const defaultReloadInterval = 5 * time.Second

// Ruleset is one atomically published (catalog, compiled patterns) pair
type Ruleset struct {
	Catalog  *rules.Catalog
	Patterns *PatternSet
}

// Engine owns the published ruleset and exposes classification over it.
//
// Classification is a pure function of (entry, published ruleset); the
// only shared mutable state is the ruleset pointer, which Reload replaces
// wholesale, and the reload limiter, also swapped atomically. In-flight
// classifications therefore observe either the fully old or the fully new
// catalog, never a mix.
type Engine struct {
	provider      rules.Provider
	logger        *zap.Logger
	current       atomic.Pointer[Ruleset]
	reloadLimit   atomic.Pointer[rate.Limiter]
	reloadPending atomic.Bool
}

// NewEngine loads the catalog once through the provider, compiles it, and
// publishes the initial ruleset. A load failure means the engine is not
// ready and no classification may proceed.
func NewEngine(provider rules.Provider, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		provider: provider,
		logger:   logger,
	}
	e.reloadLimit.Store(rate.NewLimiter(rate.Every(defaultReloadInterval), 1))

	rs, err := e.build()
	if err != nil {
		return nil, err
	}
	e.current.Store(rs)
	return e, nil
}

// Classify returns the verdict for one entry against the currently
// published ruleset. Safe for unlimited concurrent use; performs no I/O
// and never blocks.
func (e *Engine) Classify(entry model.LogEntry) model.Verdict {
	return e.current.Load().Patterns.Classify(entry)
}

// Ruleset returns the currently published ruleset snapshot. Callers may
// keep classifying against the snapshot for reproducibility even across
// reloads.
func (e *Engine) Ruleset() *Ruleset {
	return e.current.Load()
}

// Reload re-fetches the catalog, compiles a complete new pattern set, and
// publishes it with a single pointer swap. On any failure the previously
// published ruleset stays in effect.
//
// A throttled call returns ErrReloadThrottled but the change is not lost:
// a trailing reload is scheduled for when the limiter window opens, so the
// last change in a burst always reaches the published ruleset.
func (e *Engine) Reload() error {
	if !e.reloadLimit.Load().Allow() {
		e.scheduleTrailingReload()
		return ErrReloadThrottled
	}

	return e.reload()
}

func (e *Engine) reload() error {
	rs, err := e.build()
	if err != nil {
		e.logger.Error("rule catalog reload failed, keeping current ruleset", zap.Error(err))
		return err
	}

	e.current.Store(rs)
	e.logger.Info("rule catalog reloaded", zap.String("source", e.provider.Source()))
	return nil
}

// scheduleTrailingReload arranges one deferred reload after the limiter
// window opens. Bursts coalesce into a single pending reload.
func (e *Engine) scheduleTrailingReload() {
	if !e.reloadPending.CompareAndSwap(false, true) {
		return
	}

	r := e.reloadLimit.Load().Reserve()
	if !r.OK() {
		e.reloadPending.Store(false)
		return
	}

	time.AfterFunc(r.Delay(), func() {
		e.reloadPending.Store(false)
		// The reservation above consumed the token for this window
		_ = e.reload()
	})
}

// SetReloadLimit overrides the reload throttle for embedders with their
// own reload cadence
func (e *Engine) SetReloadLimit(limit rate.Limit, burst int) {
	e.reloadLimit.Store(rate.NewLimiter(limit, burst))
}

func (e *Engine) build() (*Ruleset, error) {
	catalog, err := e.provider.Load()
	if err != nil {
		return nil, err
	}

	patterns := Compile(catalog)
	if degraded := patterns.Degraded(); len(degraded) > 0 {
		e.logger.Warn("rule catalog is degraded; verdict quality will suffer",
			zap.Strings("empty_families", degraded))
	}

	return &Ruleset{Catalog: catalog, Patterns: patterns}, nil
}
