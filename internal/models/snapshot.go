package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SnapshotReason records why a snapshot was taken
type SnapshotReason string

const (
	SnapshotReasonManual        SnapshotReason = "manual"
	SnapshotReasonAuto          SnapshotReason = "auto"
	SnapshotReasonBeforeRestore SnapshotReason = "before_restore"
	SnapshotReasonBeforeImport  SnapshotReason = "before_import"
)

// ValidSnapshotReason reports whether reason is one of the known tags.
func ValidSnapshotReason(reason SnapshotReason) bool {
	switch reason {
	case SnapshotReasonManual, SnapshotReasonAuto, SnapshotReasonBeforeRestore, SnapshotReasonBeforeImport:
		return true
	}
	return false
}

// SnapshotItem is one immutable historical version of a configuration key.
// Hash is the SHA-256 hex of the normalized data, see ComputeDataHash.
type SnapshotItem struct {
	ID        string         `json:"id"`
	Key       string         `json:"key"`
	CreatedAt string         `json:"createdAt"`
	Reason    SnapshotReason `json:"reason"`
	Note      string         `json:"note,omitempty"`
	Hash      string         `json:"hash"`
	Data      *AppData       `json:"data"`
}

// SnapshotMeta is the listing view of a snapshot, without the embedded data.
type SnapshotMeta struct {
	ID        string         `json:"id"`
	Key       string         `json:"key"`
	CreatedAt string         `json:"createdAt"`
	Reason    SnapshotReason `json:"reason"`
	Note      string         `json:"note,omitempty"`
}

func (s *SnapshotItem) Meta() SnapshotMeta {
	return SnapshotMeta{
		ID:        s.ID,
		Key:       s.Key,
		CreatedAt: s.CreatedAt,
		Reason:    s.Reason,
		Note:      s.Note,
	}
}

// SnapshotDB maps configuration key to its snapshots, most recent first.
type SnapshotDB map[string][]*SnapshotItem

// ComputeDataHash hashes the normalized form of data, so equality is
// semantic rather than textual: struct marshaling fixes the key order, and
// the updatedAt stamp is excluded because normalization refreshes it on
// every pass.
func ComputeDataHash(data *AppData, opts NormalizeOptions) string {
	normalized := NormalizeData(data, opts)
	normalized.UpdatedAt = ""
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
