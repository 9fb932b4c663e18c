package social

import (
	"sort"
	"sync"

	"cpd/internal/models"
)

// GraphInterface is the read-only boundary to the social-graph
// collaborator. Both lookups are side-effect free.
type GraphInterface interface {
	IsFriend(a, b string) bool
	TopPeersByRating(userID string, platform models.Platform, limit int) []string
}

// RatingLookup is what the graph needs from the account side to rank
// peers; satisfied by services.SnapshotService.
type RatingLookup interface {
	CurrentRating(userID string, platform models.Platform) int
}

// MemoryGraph is the in-process graph implementation. Friendships are
// symmetric; peer ranking delegates rating reads to the store side.
type MemoryGraph struct {
	mu      sync.RWMutex
	friends map[string]map[string]struct{}
	ratings RatingLookup
}

func NewMemoryGraph(ratings RatingLookup) *MemoryGraph {
	return &MemoryGraph{
		friends: make(map[string]map[string]struct{}),
		ratings: ratings,
	}
}

func (g *MemoryGraph) AddFriend(a, b string) {
	if a == b || a == "" || b == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.friends[a] == nil {
		g.friends[a] = make(map[string]struct{})
	}
	if g.friends[b] == nil {
		g.friends[b] = make(map[string]struct{})
	}
	g.friends[a][b] = struct{}{}
	g.friends[b][a] = struct{}{}
}

func (g *MemoryGraph) IsFriend(a, b string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.friends[a][b]
	return ok
}

func (g *MemoryGraph) TopPeersByRating(userID string, platform models.Platform, limit int) []string {
	g.mu.RLock()
	peers := make([]string, 0, len(g.friends[userID]))
	for peer := range g.friends[userID] {
		peers = append(peers, peer)
	}
	g.mu.RUnlock()

	type ranked struct {
		id     string
		rating int
	}
	rankedPeers := make([]ranked, 0, len(peers))
	for _, peer := range peers {
		rating := 0
		if platform == models.ModeOverall || platform == "" {
			for _, p := range models.KnownPlatforms() {
				rating += g.ratings.CurrentRating(peer, p)
			}
		} else {
			rating = g.ratings.CurrentRating(peer, platform)
		}
		rankedPeers = append(rankedPeers, ranked{id: peer, rating: rating})
	}

	sort.Slice(rankedPeers, func(i, j int) bool {
		if rankedPeers[i].rating != rankedPeers[j].rating {
			return rankedPeers[i].rating > rankedPeers[j].rating
		}
		return rankedPeers[i].id < rankedPeers[j].id
	})

	if limit > 0 && len(rankedPeers) > limit {
		rankedPeers = rankedPeers[:limit]
	}
	out := make([]string, 0, len(rankedPeers))
	for _, rp := range rankedPeers {
		out = append(out, rp.id)
	}
	return out
}
