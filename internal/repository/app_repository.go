package repository

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"navboard-be/config"
	"navboard-be/internal/models"

	"github.com/natefinch/atomic"
)

// AppRepository persists the key -> AppData mapping as one pretty-printed
// JSON document, fully rewritten on every mutation. Read failures self-heal
// into a seeded default database; write failures propagate.
//
// A repository-level mutex serializes operations within the process. Two
// processes sharing the data directory still race at the file level.
type AppRepository struct {
	mu  sync.Mutex
	cfg *config.Config
}

func NewAppRepository(cfg *config.Config) *AppRepository {
	return &AppRepository{cfg: cfg}
}

func (r *AppRepository) dataFilePath() string {
	return filepath.Join(r.cfg.DataDir, r.cfg.DataFile)
}

func (r *AppRepository) normalizeOptions() models.NormalizeOptions {
	return models.NormalizeOptions{RecycleRetentionDays: r.cfg.RecycleRetentionDays}
}

// sortedKeys returns the key set in stable order; "first existing key"
// resolution and the keys listing both rely on it.
func sortedKeys(db models.AppDB) []string {
	keys := make([]string, 0, len(db))
	for key := range db {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// normalizeDB repairs a raw document into a valid AppDB. The single-profile
// legacy format (one AppData at the top level) is upgraded under the
// default key; anything unrecognizable seeds a fresh default. The second
// return reports whether the document shape had to be repaired.
func (r *AppRepository) normalizeDB(raw []byte) (models.AppDB, bool) {
	opts := r.normalizeOptions()

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.AppDB{models.DefaultKey: models.CreateDefaultData()}, true
	}

	// single-profile format: categories array at the top level
	var probe struct {
		Categories json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return models.AppDB{models.DefaultKey: models.CreateDefaultData()}, true
	}
	if len(bytes.TrimSpace(probe.Categories)) > 0 && bytes.TrimSpace(probe.Categories)[0] == '[' {
		return models.AppDB{models.DefaultKey: models.NormalizeRaw(trimmed, opts)}, true
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return models.AppDB{models.DefaultKey: models.CreateDefaultData()}, true
	}

	repaired := false
	db := models.AppDB{}
	for key, value := range entries {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || value[0] != '{' {
			repaired = true
			continue
		}
		db[key] = models.NormalizeRaw(value, opts)
	}
	if len(db) == 0 {
		return models.AppDB{models.DefaultKey: models.CreateDefaultData()}, true
	}
	return db, repaired
}

// readDB loads the backing document. Any read or parse failure falls back
// to a freshly seeded or repaired database which is persisted immediately;
// read-side errors are never surfaced to callers. Callers must hold r.mu.
func (r *AppRepository) readDB() models.AppDB {
	raw, err := os.ReadFile(r.dataFilePath())
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		db := models.AppDB{models.DefaultKey: models.CreateDefaultData()}
		if werr := r.writeDB(db); werr != nil {
			log.Printf("app store: seeding data file failed: %v", werr)
		}
		return db
	}
	db, repaired := r.normalizeDB(raw)
	if repaired {
		if werr := r.writeDB(db); werr != nil {
			log.Printf("app store: persisting repaired data file failed: %v", werr)
		}
	}
	return db
}

// writeDB normalizes every entry and atomically rewrites the whole
// document. Callers must hold r.mu.
func (r *AppRepository) writeDB(db models.AppDB) error {
	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		return err
	}
	opts := r.normalizeOptions()
	normalized := models.AppDB{}
	for key, data := range db {
		normalized[key] = models.NormalizeData(data, opts)
	}
	encoded, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(r.dataFilePath(), bytes.NewReader(encoded))
}

// resolveKey applies the key resolution rule: the target key when it
// exists, otherwise the first existing key.
func resolveKey(db models.AppDB, targetKey string) string {
	if targetKey != "" {
		if _, ok := db[targetKey]; ok {
			return targetKey
		}
	}
	keys := sortedKeys(db)
	if len(keys) > 0 {
		return keys[0]
	}
	return models.DefaultKey
}

// All returns the whole normalized database, one entry per key. Used by
// cross-key reads such as search.
func (r *AppRepository) All() models.AppDB {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readDB()
}

// ReadAppData resolves targetKey (empty means "whichever exists") and
// returns its data. It never fails: an unknown key resolves to the first
// existing one, and a missing entry is seeded in memory.
func (r *AppRepository) ReadAppData(targetKey string) *models.ConfigView {
	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.readDB()
	key := resolveKey(db, targetKey)
	if _, ok := db[key]; !ok {
		db[key] = models.CreateDefaultData()
	}
	return &models.ConfigView{Key: key, Keys: sortedKeys(db), Data: db[key]}
}

// WriteAppData normalizes data, stores it under key (creating the key if
// new) and persists the whole database.
func (r *AppRepository) WriteAppData(key string, data *models.AppData) (*models.ConfigView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.readDB()
	db[key] = models.NormalizeData(data, r.normalizeOptions())
	if err := r.writeDB(db); err != nil {
		return nil, err
	}
	return &models.ConfigView{Key: key, Keys: sortedKeys(db), Data: db[key]}, nil
}

// CreateConfigKey seeds default data under a new key. ErrDuplicateKey when
// the key already exists.
func (r *AppRepository) CreateConfigKey(key string) (*models.ConfigView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.readDB()
	if _, ok := db[key]; ok {
		return nil, ErrDuplicateKey
	}
	db[key] = models.CreateDefaultData()
	if err := r.writeDB(db); err != nil {
		return nil, err
	}
	return &models.ConfigView{Key: key, Keys: sortedKeys(db), Data: db[key]}, nil
}

// DeleteConfigKey removes a key and returns the view of the first remaining
// key. ErrUnknownKey when absent, ErrLastKeyProtected when it is the only
// key left.
func (r *AppRepository) DeleteConfigKey(key string) (*models.ConfigView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.readDB()
	if _, ok := db[key]; !ok {
		return nil, ErrUnknownKey
	}
	if len(db) <= 1 {
		return nil, ErrLastKeyProtected
	}
	delete(db, key)
	if err := r.writeDB(db); err != nil {
		return nil, err
	}
	nextKey := sortedKeys(db)[0]
	return &models.ConfigView{Key: nextKey, Keys: sortedKeys(db), Data: db[nextKey]}, nil
}
