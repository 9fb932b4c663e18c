package services

import (
	"time"

	"cpd/internal/models"
)

type SnapshotServiceInterface interface {
	WriteSnapshot(snap *models.Snapshot) bool
	SnapshotsInWindow(userID string, platform models.Platform, from, to time.Time) []*models.Snapshot
	LatestSnapshot(userID string, platform models.Platform) *models.Snapshot
	LinkHandle(userID string, platform models.Platform, handle string) models.PlatformHandle
	UnlinkHandle(userID string, platform models.Platform)
	Handle(userID string, platform models.Platform) (models.PlatformHandle, bool)
	HandlesFor(userID string) []models.PlatformHandle
	VerifiedHandles() []models.PlatformHandle
	CurrentRating(userID string, platform models.Platform) int
	SnapshotCount(platform models.Platform) int
	HandleCount() int
	ExportStorage() *models.Storage
	RestoreStorage(st *models.Storage)
}

// SnapshotService is the facade over the snapshot store. All
// idempotency and cache maintenance lives in the store itself.
type SnapshotService struct {
	store *models.SnapshotStore
}

func NewSnapshotService() SnapshotServiceInterface {
	return &SnapshotService{store: models.NewSnapshotStore()}
}

func (ss *SnapshotService) WriteSnapshot(snap *models.Snapshot) bool {
	return ss.store.Put(snap)
}

func (ss *SnapshotService) SnapshotsInWindow(userID string, platform models.Platform, from, to time.Time) []*models.Snapshot {
	return ss.store.InWindow(userID, platform, from, to)
}

func (ss *SnapshotService) LatestSnapshot(userID string, platform models.Platform) *models.Snapshot {
	return ss.store.Latest(userID, platform)
}

// LinkHandle registers (or replaces) the external handle for a pair.
// Relinking resets the rating cache; the caller is expected to run a
// backfill right after.
func (ss *SnapshotService) LinkHandle(userID string, platform models.Platform, handle string) models.PlatformHandle {
	h := models.PlatformHandle{
		UserID:    userID,
		Platform:  platform,
		Handle:    handle,
		Verified:  true,
		CreatedAt: time.Now().UTC(),
	}
	ss.store.PutHandle(&h)
	return h
}

func (ss *SnapshotService) UnlinkHandle(userID string, platform models.Platform) {
	ss.store.Unlink(userID, platform)
}

func (ss *SnapshotService) Handle(userID string, platform models.Platform) (models.PlatformHandle, bool) {
	return ss.store.GetHandle(userID, platform)
}

func (ss *SnapshotService) HandlesFor(userID string) []models.PlatformHandle {
	return ss.store.HandlesFor(userID)
}

func (ss *SnapshotService) VerifiedHandles() []models.PlatformHandle {
	return ss.store.VerifiedHandles()
}

func (ss *SnapshotService) CurrentRating(userID string, platform models.Platform) int {
	h, ok := ss.store.GetHandle(userID, platform)
	if !ok {
		return 0
	}
	return h.CurrentRating
}

func (ss *SnapshotService) SnapshotCount(platform models.Platform) int {
	return ss.store.SnapshotCount(platform)
}

func (ss *SnapshotService) HandleCount() int {
	return ss.store.HandleCount()
}

func (ss *SnapshotService) ExportStorage() *models.Storage {
	return ss.store.Export()
}

func (ss *SnapshotService) RestoreStorage(st *models.Storage) {
	ss.store.Restore(st)
}
