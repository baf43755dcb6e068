package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"navboard-be/config"
	"navboard-be/internal/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/natefinch/atomic"
)

// SnapshotRepository persists per-key snapshot history as one JSON document,
// most recent first, capped per key. Key resolution goes through the
// AppRepository so listing and creation follow the same fallback rule.
type SnapshotRepository struct {
	mu    sync.Mutex
	cfg   *config.Config
	apps  *AppRepository
	notes *bluemonday.Policy
}

func NewSnapshotRepository(cfg *config.Config, apps *AppRepository) *SnapshotRepository {
	return &SnapshotRepository{
		cfg:   cfg,
		apps:  apps,
		notes: bluemonday.StripTagsPolicy(),
	}
}

func (r *SnapshotRepository) snapshotFilePath() string {
	return filepath.Join(r.cfg.DataDir, r.cfg.SnapshotFile)
}

func (r *SnapshotRepository) normalizeOptions() models.NormalizeOptions {
	return models.NormalizeOptions{RecycleRetentionDays: r.cfg.RecycleRetentionDays}
}

// createdAtLayout keeps a fixed-width fraction so timestamps sort correctly
// as strings too (RFC3339Nano trims trailing zeros).
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseCreatedAt(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

type rawSnapshotItem struct {
	ID        string          `json:"id"`
	CreatedAt string          `json:"createdAt"`
	Reason    string          `json:"reason"`
	Note      string          `json:"note"`
	Hash      string          `json:"hash"`
	Data      json.RawMessage `json:"data"`
}

// readDB loads and repairs the snapshot document. Malformed items (missing
// id, timestamp, hash or data) are dropped, lists are re-sorted most recent
// first and truncated to the cap. Read failures yield an empty database.
// Callers must hold r.mu.
func (r *SnapshotRepository) readDB() models.SnapshotDB {
	db := models.SnapshotDB{}

	raw, err := os.ReadFile(r.snapshotFilePath())
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		return db
	}
	var entries map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return db
	}

	opts := r.normalizeOptions()
	for key, rawItems := range entries {
		items := make([]*models.SnapshotItem, 0, len(rawItems))
		for _, rawItem := range rawItems {
			var item rawSnapshotItem
			if err := json.Unmarshal(rawItem, &item); err != nil {
				continue
			}
			if item.ID == "" || item.CreatedAt == "" || item.Hash == "" || len(bytes.TrimSpace(item.Data)) == 0 {
				continue
			}
			reason := models.SnapshotReason(item.Reason)
			if !models.ValidSnapshotReason(reason) {
				reason = models.SnapshotReasonManual
			}
			items = append(items, &models.SnapshotItem{
				ID:        item.ID,
				Key:       key,
				CreatedAt: item.CreatedAt,
				Reason:    reason,
				Note:      item.Note,
				Hash:      item.Hash,
				Data:      models.NormalizeRaw(item.Data, opts),
			})
		}
		sort.SliceStable(items, func(i, j int) bool {
			return parseCreatedAt(items[i].CreatedAt).After(parseCreatedAt(items[j].CreatedAt))
		})
		if len(items) > r.cfg.SnapshotMaxPerKey {
			items = items[:r.cfg.SnapshotMaxPerKey]
		}
		if len(items) > 0 {
			db[key] = items
		}
	}
	return db
}

// writeDB atomically rewrites the whole snapshot document. Callers must
// hold r.mu.
func (r *SnapshotRepository) writeDB(db models.SnapshotDB) error {
	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(r.snapshotFilePath(), bytes.NewReader(encoded))
}

// push prepends a snapshot of data for key and truncates the list to the
// cap. When the hash matches the current head the push is a no-op returning
// the existing snapshot, unless force is set: the pre-restore safety copy
// must exist even if it duplicates an older state.
func (r *SnapshotRepository) push(key string, data *models.AppData, reason models.SnapshotReason, note string, force bool) (bool, *models.SnapshotItem, error) {
	db := r.readDB()
	list := db[key]
	opts := r.normalizeOptions()
	hash := models.ComputeDataHash(data, opts)
	if !force && len(list) > 0 && list[0].Hash == hash {
		return false, list[0], nil
	}

	item := &models.SnapshotItem{
		ID:        uuid.NewString(),
		Key:       key,
		CreatedAt: time.Now().UTC().Format(createdAtLayout),
		Reason:    reason,
		Note:      strings.TrimSpace(r.notes.Sanitize(note)),
		Hash:      hash,
		Data:      models.NormalizeData(data, opts),
	}
	list = append([]*models.SnapshotItem{item}, list...)
	if len(list) > r.cfg.SnapshotMaxPerKey {
		list = list[:r.cfg.SnapshotMaxPerKey]
	}
	db[key] = list
	if err := r.writeDB(db); err != nil {
		return false, nil, err
	}
	return true, item, nil
}

// ListSnapshots returns snapshot metadata for the resolved key, most recent
// first, without the embedded data.
func (r *SnapshotRepository) ListSnapshots(targetKey string) *models.SnapshotListView {
	view := r.apps.ReadAppData(targetKey)

	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.readDB()
	list := db[view.Key]
	metas := make([]models.SnapshotMeta, 0, len(list))
	for _, item := range list {
		metas = append(metas, item.Meta())
	}
	return &models.SnapshotListView{Key: view.Key, Keys: view.Keys, Snapshots: metas}
}

// CreateSnapshot records the current data of the resolved key. Created is
// false when the data hash matches the most recent snapshot (repeated saves
// of unchanged data do not pile up history).
func (r *SnapshotRepository) CreateSnapshot(targetKey string, reason models.SnapshotReason, note string) (*models.SnapshotCreateView, error) {
	view := r.apps.ReadAppData(targetKey)

	r.mu.Lock()
	defer r.mu.Unlock()

	created, item, err := r.push(view.Key, view.Data, reason, note, false)
	if err != nil {
		return nil, err
	}
	meta := item.Meta()
	return &models.SnapshotCreateView{Key: view.Key, Keys: view.Keys, Created: created, Snapshot: &meta}, nil
}

// DeleteSnapshot removes one snapshot of the resolved key. A key whose list
// becomes empty is removed from the document entirely.
func (r *SnapshotRepository) DeleteSnapshot(targetKey, snapshotID string) (*models.KeysView, error) {
	view := r.apps.ReadAppData(targetKey)

	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.readDB()
	current := db[view.Key]
	next := make([]*models.SnapshotItem, 0, len(current))
	for _, item := range current {
		if item.ID != snapshotID {
			next = append(next, item)
		}
	}
	if len(next) == len(current) {
		return nil, ErrSnapshotNotFound
	}
	if len(next) > 0 {
		db[view.Key] = next
	} else {
		delete(db, view.Key)
	}
	if err := r.writeDB(db); err != nil {
		return nil, err
	}
	return &models.KeysView{Key: view.Key, Keys: view.Keys}, nil
}

// RestoreSnapshot rolls the resolved key back to a stored snapshot. The
// current data is always captured first under before_restore, even when its
// hash matches the head, and only then overwritten.
func (r *SnapshotRepository) RestoreSnapshot(targetKey, snapshotID string) (*models.ConfigView, error) {
	current := r.apps.ReadAppData(targetKey)

	r.mu.Lock()
	db := r.readDB()
	var match *models.SnapshotItem
	for _, item := range db[current.Key] {
		if item.ID == snapshotID {
			match = item
			break
		}
	}
	if match == nil {
		r.mu.Unlock()
		return nil, ErrSnapshotNotFound
	}

	nowText := time.Now().Format("2006-01-02 15:04:05")
	if _, _, err := r.push(current.Key, current.Data, models.SnapshotReasonBeforeRestore, fmt.Sprintf("恢复前自动快照 %s", nowText), true); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	return r.apps.WriteAppData(current.Key, match.Data)
}

// ImportAppData replaces the resolved key's data with an arbitrary JSON
// payload, capturing the current state under before_import first.
func (r *SnapshotRepository) ImportAppData(targetKey string, payload json.RawMessage) (*models.ConfigView, error) {
	current := r.apps.ReadAppData(targetKey)

	r.mu.Lock()
	nowText := time.Now().Format("2006-01-02 15:04:05")
	if _, _, err := r.push(current.Key, current.Data, models.SnapshotReasonBeforeImport, fmt.Sprintf("导入前自动快照 %s", nowText), false); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	data := models.NormalizeRaw(payload, r.normalizeOptions())
	return r.apps.WriteAppData(current.Key, data)
}
