package models

import (
	"sort"
	"sync"
	"time"
)

// SnapshotStore is the append-only store of snapshots plus the handle
// registry. Snapshot uniqueness is (UserID, Platform, Timestamp
// truncated to the second): a colliding write is a no-op, which makes
// duplicate or racing ingestion convergent.
type SnapshotStore struct {
	mu      sync.RWMutex
	snaps   map[string]map[Platform][]*Snapshot
	handles map[string]map[Platform]*PlatformHandle
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snaps:   make(map[string]map[Platform][]*Snapshot),
		handles: make(map[string]map[Platform]*PlatformHandle),
	}
}

// Put writes one snapshot. Returns false when a snapshot with the
// same (user, platform, timestamp) already exists. The owning
// handle's CurrentRating cache is refreshed in the same operation
// when the written snapshot is the latest for the pair.
func (s *SnapshotStore) Put(snap *Snapshot) bool {
	if snap == nil || !IsKnownPlatform(snap.Platform) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *snap
	cp.Timestamp = cp.Timestamp.UTC().Truncate(time.Second)
	if cp.TopicBreakdown != nil {
		topics := make(map[string]int, len(cp.TopicBreakdown))
		for k, v := range cp.TopicBreakdown {
			topics[k] = v
		}
		cp.TopicBreakdown = topics
	}

	if s.snaps[cp.UserID] == nil {
		s.snaps[cp.UserID] = make(map[Platform][]*Snapshot)
	}
	list := s.snaps[cp.UserID][cp.Platform]

	i := sort.Search(len(list), func(i int) bool {
		return !list[i].Timestamp.Before(cp.Timestamp)
	})
	if i < len(list) && list[i].Timestamp.Equal(cp.Timestamp) {
		return false
	}

	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = &cp
	s.snaps[cp.UserID][cp.Platform] = list

	if i == len(list)-1 {
		if h, ok := s.handles[cp.UserID][cp.Platform]; ok {
			h.CurrentRating = cp.Rating
		}
	}
	return true
}

// InWindow returns snapshots for one user with timestamps in
// [from, to], sorted time-ascending. An empty platform selects all
// platforms.
func (s *SnapshotStore) InWindow(userID string, platform Platform, from, to time.Time) []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Snapshot
	for p, list := range s.snaps[userID] {
		if platform != "" && p != platform {
			continue
		}
		for _, snap := range list {
			if snap.Timestamp.Before(from) || snap.Timestamp.After(to) {
				continue
			}
			cp := *snap
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Latest returns the most recent snapshot for a pair, or nil.
func (s *SnapshotStore) Latest(userID string, platform Platform) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.snaps[userID][platform]
	if len(list) == 0 {
		return nil
	}
	cp := *list[len(list)-1]
	return &cp
}

func (s *SnapshotStore) SnapshotCount(platform Platform) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, byPlatform := range s.snaps {
		for p, list := range byPlatform {
			if platform == "" || p == platform {
				count += len(list)
			}
		}
	}
	return count
}

// PutHandle registers or replaces the handle for (user, platform).
func (s *SnapshotStore) PutHandle(h *PlatformHandle) {
	if h == nil || !IsKnownPlatform(h.Platform) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handles[h.UserID] == nil {
		s.handles[h.UserID] = make(map[Platform]*PlatformHandle)
	}
	cp := *h
	s.handles[h.UserID][h.Platform] = &cp
}

func (s *SnapshotStore) GetHandle(userID string, platform Platform) (PlatformHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.handles[userID][platform]
	if !ok {
		return PlatformHandle{}, false
	}
	return *h, true
}

func (s *SnapshotStore) HandlesFor(userID string) []PlatformHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PlatformHandle
	for _, h := range s.handles[userID] {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

// VerifiedHandles returns every verified handle across all users in a
// stable order, for the scheduler's sweep.
func (s *SnapshotStore) VerifiedHandles() []PlatformHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PlatformHandle
	for _, byPlatform := range s.handles {
		for _, h := range byPlatform {
			if h.Verified {
				out = append(out, *h)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

func (s *SnapshotStore) HandleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, byPlatform := range s.handles {
		count += len(byPlatform)
	}
	return count
}

// Unlink removes the handle for (user, platform) and cascades
// deletion of that pair's snapshots. This is the only deletion path.
func (s *SnapshotStore) Unlink(userID string, platform Platform) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if byPlatform, ok := s.handles[userID]; ok {
		delete(byPlatform, platform)
		if len(byPlatform) == 0 {
			delete(s.handles, userID)
		}
	}
	if byPlatform, ok := s.snaps[userID]; ok {
		delete(byPlatform, platform)
		if len(byPlatform) == 0 {
			delete(s.snaps, userID)
		}
	}
}

// Export copies the full store content into its persistence image.
func (s *SnapshotStore) Export() *Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Storage{Version: StorageVersion}
	for _, byPlatform := range s.handles {
		for _, h := range byPlatform {
			cp := *h
			st.Handles = append(st.Handles, &cp)
		}
	}
	for _, byPlatform := range s.snaps {
		for _, list := range byPlatform {
			for _, snap := range list {
				cp := *snap
				st.Snapshots = append(st.Snapshots, &cp)
			}
		}
	}
	return st
}

// Restore replaces the store content from a persistence image.
func (s *SnapshotStore) Restore(st *Storage) {
	if st == nil {
		return
	}

	s.mu.Lock()
	s.snaps = make(map[string]map[Platform][]*Snapshot)
	s.handles = make(map[string]map[Platform]*PlatformHandle)
	s.mu.Unlock()

	for _, h := range st.Handles {
		s.PutHandle(h)
	}
	for _, snap := range st.Snapshots {
		s.Put(snap)
	}
}
