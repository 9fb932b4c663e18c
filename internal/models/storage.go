package models

const StorageVersion = 1

// Storage is the on-disk image of the snapshot store.
type Storage struct {
	Version   int               `json:"version"`
	Handles   []*PlatformHandle `json:"handles"`
	Snapshots []*Snapshot       `json:"snapshots"`
}
