package search

import "github.com/relevano/semsearch/core"

// SearchMonitor provides hooks to observe the ranking pipeline.
// Implement this interface to track intermediate steps during search
// and recommendation. Hooks are called sequentially from the calling
// goroutine.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterScan(candidates int)
	AfterRanking(kept int)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                      {}
func (n *noopMonitor) AfterEmbedding(_ []float32)          {}
func (n *noopMonitor) AfterScan(_ int)                     {}
func (n *noopMonitor) AfterRanking(_ int)                  {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)       {}
