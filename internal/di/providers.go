package di

import (
	"cpd/internal/providers"
	"cpd/internal/services"
	"cpd/internal/social"
)

// provideGraph adapts the snapshot service to the graph's rating
// lookup seam. The in-memory graph is the wiring default; a real
// deployment swaps in the social-graph collaborator here.
func provideGraph(snapshots services.SnapshotServiceInterface) social.GraphInterface {
	return social.NewMemoryGraph(snapshots)
}

// provideStoreCounts narrows the snapshot service to the counters the
// metrics gauges read.
func provideStoreCounts(snapshots services.SnapshotServiceInterface) providers.StoreCounts {
	return snapshots
}
