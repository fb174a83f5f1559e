package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/relevano/semsearch/ai"
	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/storage"
)

const (
	// DefaultCandidateCap bounds how many stored records one search or
	// recommendation considers. Results are exact only within this window;
	// the cap trades recall for a bounded scan cost.
	DefaultCandidateCap = 1000

	// DefaultProfileWindow is how many of the caller's most recent records
	// contribute to the recommendation profile vector.
	DefaultProfileWindow = 10

	// DefaultRecommendThreshold is the minimum similarity for a candidate
	// to appear in recommendations. Distinct from the per-call search
	// threshold, which callers supply.
	DefaultRecommendThreshold = 0.6
)

// Searcher provides semantic similarity search and recommendations over
// embedding records. Candidate scoring runs on a worker pool; everything
// else is a single pass per request, so one Searcher serves concurrent
// callers.
type Searcher struct {
	repo               storage.EmbeddingRepository
	embedder           ai.Embedder
	pool               *ants.Pool
	candidateCap       int
	profileWindow      int
	recommendThreshold float32
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCandidateCap sets the maximum number of stored records scanned per
// operation. Default is DefaultCandidateCap.
func WithCandidateCap(cap int) Option {
	return func(s *Searcher) error {
		if cap < 1 {
			return fmt.Errorf("candidate cap must be positive, got %d", cap)
		}
		s.candidateCap = cap
		return nil
	}
}

// WithPoolSize sets the worker pool size for parallel candidate scoring.
// Default is runtime.NumCPU().
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithProfileWindow sets how many recent records build the profile vector.
// Default is DefaultProfileWindow.
func WithProfileWindow(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("profile window must be positive, got %d", n)
		}
		s.profileWindow = n
		return nil
	}
}

// WithRecommendThreshold sets the fixed similarity threshold applied to
// recommendations. Default is DefaultRecommendThreshold.
func WithRecommendThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		s.recommendThreshold = threshold
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repo storage.EmbeddingRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		repo:               repo,
		embedder:           embedder,
		pool:               pool,
		candidateCap:       DefaultCandidateCap,
		profileWindow:      DefaultProfileWindow,
		recommendThreshold: DefaultRecommendThreshold,
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.pool.Release()
			return nil, err
		}
	}

	return s, nil
}

// Release frees the scoring worker pool. The searcher must not be used
// after calling Release.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Search finds stored records semantically similar to the query text.
// Only candidates scoring at least threshold are returned, ranked by score
// descending, at most limit results. Records owned by excludeOwnerID are
// skipped (pass "" to search all owners).
func (s *Searcher) Search(ctx context.Context, query string, limit int, threshold float32, excludeOwnerID string) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, threshold, excludeOwnerID, nil)
}

// SearchWithMonitor is Search with observation hooks for each pipeline stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, threshold float32, excludeOwnerID string, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(vector)

	return s.rank(ctx, vector, limit, threshold, excludeOwnerID, monitor)
}

// Recommend ranks other users' records against a profile vector built from
// the owner's most recent records. An owner with no records receives an
// empty list, not an error. The caller's own records never appear.
func (s *Searcher) Recommend(ctx context.Context, ownerID string, limit int) ([]*core.SearchResult, error) {
	return s.RecommendWithMonitor(ctx, ownerID, limit, nil)
}

// RecommendWithMonitor is Recommend with observation hooks for each pipeline stage.
func (s *Searcher) RecommendWithMonitor(ctx context.Context, ownerID string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start("")

	recent, err := s.repo.GetRecentByOwner(ctx, ownerID, s.profileWindow)
	if err != nil {
		s.logger.Error("error fetching recent records for profile", "owner", ownerID, "err", err)
		return nil, err
	}

	vectors := make([][]float32, 0, len(recent))
	for _, record := range recent {
		if len(record.Vector) > 0 {
			vectors = append(vectors, record.Vector)
		}
	}
	if len(vectors) == 0 {
		// Nothing to build a profile from
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	profile, err := core.MeanVector(vectors)
	if err != nil {
		return nil, err
	}
	monitor.AfterEmbedding(profile)

	return s.rank(ctx, profile, limit, s.recommendThreshold, ownerID, monitor)
}

// rank is the shared scan/score/filter/sort/truncate pipeline.
// Scoring is parallelized across the worker pool; a dimension mismatch on
// any candidate aborts the whole batch.
func (s *Searcher) rank(ctx context.Context, vector []float32, limit int, threshold float32, excludeOwnerID string, monitor SearchMonitor) ([]*core.SearchResult, error) {
	candidates, err := s.repo.ScanCandidates(ctx, excludeOwnerID, s.candidateCap)
	if err != nil {
		s.logger.Error("error scanning candidates", "err", err)
		return nil, err
	}
	monitor.AfterScan(len(candidates))

	scores := make([]float32, len(candidates))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		scoreErr error
	)
	for i := range candidates {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			score, err := core.CosineSimilarity(vector, candidates[i].Vector)
			if err != nil {
				mu.Lock()
				if scoreErr == nil {
					scoreErr = fmt.Errorf("scoring record %d: %w", candidates[i].Id, err)
				}
				mu.Unlock()
				return
			}
			scores[i] = score
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool unavailable; score on the calling goroutine
			task()
		}
	}
	wg.Wait()

	if scoreErr != nil {
		s.logger.Error("error scoring candidates", "err", scoreErr)
		return nil, scoreErr
	}

	results := make([]*core.SearchResult, 0, len(candidates))
	for i, candidate := range candidates {
		if scores[i] >= threshold {
			results = append(results, &core.SearchResult{
				Record: candidate.WithoutVector(),
				Score:  scores[i],
			})
		}
	}
	monitor.AfterRanking(len(results))

	// Sort by score descending; equal scores are ordered by ascending
	// record ID so rankings are deterministic.
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Record.Id < b.Record.Id {
			return -1
		}
		if a.Record.Id > b.Record.Id {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)

	return results, nil
}
