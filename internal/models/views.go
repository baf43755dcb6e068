package models

// ConfigView is the post-operation view of a configuration key handed back
// to HTTP handlers.
type ConfigView struct {
	Key  string   `json:"key"`
	Keys []string `json:"keys"`
	Data *AppData `json:"data"`
}

// KeysView is returned by operations that change the key/snapshot set
// without producing data.
type KeysView struct {
	Key  string   `json:"key"`
	Keys []string `json:"keys"`
}

// SnapshotListView lists snapshot metadata for a resolved key.
type SnapshotListView struct {
	Key       string         `json:"key"`
	Keys      []string       `json:"keys"`
	Snapshots []SnapshotMeta `json:"snapshots"`
}

// SnapshotCreateView reports a snapshot creation attempt. Created is false
// when the current data hash matched the most recent snapshot and the
// existing one was returned instead.
type SnapshotCreateView struct {
	Key      string        `json:"key"`
	Keys     []string      `json:"keys"`
	Created  bool          `json:"created"`
	Snapshot *SnapshotMeta `json:"snapshot,omitempty"`
}
