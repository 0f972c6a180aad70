package search

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(collection, query string)
	AfterSemanticSearch(ids []string)
	SemanticHit(hit *Hit)
	VerbatimHit(hit *Hit)
	Finish(hits []*Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)            {}
func (n *noopMonitor) AfterSemanticSearch(_ []string) {}
func (n *noopMonitor) SemanticHit(_ *Hit)           {}
func (n *noopMonitor) VerbatimHit(_ *Hit)           {}
func (n *noopMonitor) Finish(_ []*Hit)              {}
