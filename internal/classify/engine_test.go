package classify

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/rules"
)

// stubProvider serves a swappable catalog, or a failure
type stubProvider struct {
	mu      sync.Mutex
	catalog *rules.Catalog
	err     error
}

func (s *stubProvider) Load() (*rules.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.catalog, nil
}

func (s *stubProvider) Source() string { return "stub" }

func (s *stubProvider) set(catalog *rules.Catalog, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.err = err
}

func minimalCatalog(keyword string) *rules.Catalog {
	return &rules.Catalog{
		ReferenceKeywords: []string{keyword},
		LinkingKeywords:   []string{"IAW"},
		RevisionPatterns:  []string{`\bREV\s*[:.]?\s*\d+\b`},
		ExecutionPatterns: []string{`\bPERFORMED\s+STEP\s*\d*\b`},
	}
}

func TestNewEngine_LoadFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("store down")}
	_, err := NewEngine(provider, nil)
	require.Error(t, err)
}

func TestEngine_Classify(t *testing.T) {
	engine, err := NewEngine(rules.NewBuiltinProvider(nil), nil)
	require.NoError(t, err)

	got := engine.Classify(model.LogEntry{Text: strPtr("IAW AMM 52-11-01 REV 156")})
	assert.Equal(t, model.VerdictValid, got)
}

func TestEngine_ReloadSwapsRuleset(t *testing.T) {
	provider := &stubProvider{catalog: minimalCatalog("AMM")}
	engine, err := NewEngine(provider, nil)
	require.NoError(t, err)
	engine.SetReloadLimit(rate.Inf, 1)

	// Under the first catalog AMM is a primary reference and the missing
	// revision is flagged; under the second it is just a document id in
	// linking context.
	e := model.LogEntry{Text: strPtr("IAW AMM 52-10")}
	require.Equal(t, model.VerdictMissingRevision, engine.Classify(e))

	snapshot := engine.Ruleset()

	provider.set(minimalCatalog("FOO"), nil)
	require.NoError(t, engine.Reload())

	assert.Equal(t, model.VerdictValid, engine.Classify(e))
	assert.Equal(t, model.VerdictMissingRevision, snapshot.Patterns.Classify(e),
		"a held snapshot must keep classifying with the rules it was taken under")
}

func TestEngine_ReloadFailureKeepsRuleset(t *testing.T) {
	provider := &stubProvider{catalog: minimalCatalog("AMM")}
	engine, err := NewEngine(provider, nil)
	require.NoError(t, err)
	engine.SetReloadLimit(rate.Inf, 1)

	before := engine.Ruleset()

	provider.set(nil, errors.New("store down"))
	require.Error(t, engine.Reload())

	assert.Same(t, before, engine.Ruleset())
	assert.Equal(t, model.VerdictMissingRevision,
		engine.Classify(model.LogEntry{Text: strPtr("IAW AMM 52-10")}))
}

func TestEngine_ReloadThrottled(t *testing.T) {
	provider := &stubProvider{catalog: minimalCatalog("AMM")}
	engine, err := NewEngine(provider, nil)
	require.NoError(t, err)

	engine.SetReloadLimit(rate.Every(time.Hour), 1)
	require.NoError(t, engine.Reload())

	err = engine.Reload()
	assert.ErrorIs(t, err, ErrReloadThrottled)
}

func TestEngine_ThrottledReloadAppliesTrailing(t *testing.T) {
	provider := &stubProvider{catalog: minimalCatalog("AMM")}
	engine, err := NewEngine(provider, nil)
	require.NoError(t, err)
	engine.SetReloadLimit(rate.Every(100*time.Millisecond), 1)

	e := model.LogEntry{Text: strPtr("IAW AMM 52-10")}
	require.Equal(t, model.VerdictMissingRevision, engine.Classify(e))

	require.NoError(t, engine.Reload())

	// The change behind a throttled reload must still land once the
	// limiter window opens
	provider.set(minimalCatalog("FOO"), nil)
	require.ErrorIs(t, engine.Reload(), ErrReloadThrottled)

	require.Eventually(t, func() bool {
		return engine.Classify(e) == model.VerdictValid
	}, 5*time.Second, 20*time.Millisecond,
		"the last change of a reload burst was never applied")
}

func TestEngine_WatchedFileBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesYAMLWithKeyword("AMM")), 0o644))

	engine, err := NewEngine(rules.NewFileProvider(path, nil), nil)
	require.NoError(t, err)
	engine.SetReloadLimit(rate.Every(200*time.Millisecond), 1)

	w, err := rules.Watch(path, func() { _ = engine.Reload() }, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	e := model.LogEntry{Text: strPtr("IAW AMM 52-10")}
	require.Equal(t, model.VerdictMissingRevision, engine.Classify(e))

	// Editor-save burst: two quick writes; the second lands inside the
	// reload throttle window but must still end up published. Only the
	// final contents flip the verdict, so catching up on the first write
	// alone does not pass.
	intermediate := rulesYAMLWithKeyword("AMM") + "skip_phrases_header: ['NEVER IN THIS TEST']\n"
	require.NoError(t, os.WriteFile(path, []byte(intermediate), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(rulesYAMLWithKeyword("FOO")), 0o644))

	require.Eventually(t, func() bool {
		return engine.Classify(e) == model.VerdictValid
	}, 10*time.Second, 50*time.Millisecond,
		"the published ruleset never caught up with the on-disk rules")
}

func rulesYAMLWithKeyword(keyword string) string {
	return `document_types:
  - code: ` + keyword + `
linking_keywords: [IAW]
revision_patterns:
  - '\bREV\s*[:.]?\s*\d+\b'
execution_patterns:
  - '\bPERFORMED\s+STEP\s*\d*\b'
`
}

func TestEngine_ConcurrentClassifyAndReload(t *testing.T) {
	provider := &stubProvider{catalog: minimalCatalog("AMM")}
	engine, err := NewEngine(provider, nil)
	require.NoError(t, err)
	engine.SetReloadLimit(rate.Inf, 1)

	e := model.LogEntry{Text: strPtr("IAW AMM 52-10")}
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				got := engine.Classify(e)
				// Either catalog may be in effect, but never a mix
				if got != model.VerdictMissingRevision && got != model.VerdictValid {
					t.Errorf("unexpected verdict %q", got)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			if j%2 == 0 {
				provider.set(minimalCatalog("FOO"), nil)
			} else {
				provider.set(minimalCatalog("AMM"), nil)
			}
			_ = engine.Reload()
		}
	}()

	// Limiter replacement races with Reload's limiter reads unless the
	// swap is atomic
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			engine.SetReloadLimit(rate.Inf, 1)
		}
	}()

	wg.Wait()
}
