package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"navboard-be/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (*AppRepository, *SnapshotRepository) {
	t.Helper()
	cfg := testConfig(t)
	apps := NewAppRepository(cfg)
	return apps, NewSnapshotRepository(cfg, apps)
}

func writeTitled(t *testing.T, apps *AppRepository, key, title string) {
	t.Helper()
	_, err := apps.WriteAppData(key, &models.AppData{Categories: []models.Category{
		{ID: "c1", Title: title},
	}})
	require.NoError(t, err)
}

func TestCreateSnapshot_DedupsUnchangedData(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t)
	writeTitled(t, apps, "default", "v1")

	first, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, "v1")
	require.NoError(t, err)
	assert.True(t, first.Created)
	require.NotNil(t, first.Snapshot)

	second, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, "again")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Snapshot.ID, second.Snapshot.ID, "existing snapshot returned")

	list := snaps.ListSnapshots("")
	assert.Len(t, list.Snapshots, 1)
}

func TestCreateSnapshot_NewAfterChange(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t)
	writeTitled(t, apps, "default", "v1")
	_, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, "v1")
	require.NoError(t, err)

	writeTitled(t, apps, "default", "v2")
	second, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, "v2")
	require.NoError(t, err)
	assert.True(t, second.Created)

	list := snaps.ListSnapshots("")
	require.Len(t, list.Snapshots, 2)
	assert.Equal(t, "v2", list.Snapshots[0].Note, "most recent first")
	assert.Equal(t, "v1", list.Snapshots[1].Note)
}

func TestSnapshotCap_EvictsOldestFirst(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t) // cap is 5
	evicted := make([]string, 0, 2)
	for i := 1; i <= 7; i++ {
		writeTitled(t, apps, "default", fmt.Sprintf("v%d", i))
		view, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, fmt.Sprintf("v%d", i))
		require.NoError(t, err)
		require.True(t, view.Created)
		if i <= 2 {
			evicted = append(evicted, view.Snapshot.ID)
		}
	}

	list := snaps.ListSnapshots("")
	require.Len(t, list.Snapshots, 5)
	for _, meta := range list.Snapshots {
		assert.NotContains(t, evicted, meta.ID, "oldest snapshots evicted")
	}
	for i := 0; i < len(list.Snapshots)-1; i++ {
		assert.GreaterOrEqual(t, list.Snapshots[i].CreatedAt, list.Snapshots[i+1].CreatedAt)
	}
	assert.Equal(t, "v7", list.Snapshots[0].Note)
	assert.Equal(t, "v3", list.Snapshots[4].Note)
}

func TestDeleteSnapshot(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t)
	writeTitled(t, apps, "default", "v1")
	created, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, "v1")
	require.NoError(t, err)

	_, err = snaps.DeleteSnapshot("default", "no-such-id")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	view, err := snaps.DeleteSnapshot("default", created.Snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, "default", view.Key)
	assert.Empty(t, snaps.ListSnapshots("").Snapshots)
}

func TestDeleteSnapshot_RemovesEmptyKeyFromDocument(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	apps := NewAppRepository(cfg)
	snaps := NewSnapshotRepository(cfg, apps)

	writeTitled(t, apps, "default", "v1")
	created, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, "")
	require.NoError(t, err)
	_, err = snaps.DeleteSnapshot("default", created.Snapshot.ID)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(cfg.DataDir, cfg.SnapshotFile))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "default", "empty lists are dropped, not kept as []")
}

func TestRestoreSnapshot_Scenario(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t)

	writeTitled(t, apps, "work", "v1")
	v1, err := snaps.CreateSnapshot("work", models.SnapshotReasonManual, "v1")
	require.NoError(t, err)
	require.True(t, v1.Created)
	v1Data := apps.ReadAppData("work").Data

	writeTitled(t, apps, "work", "v2")
	v2, err := snaps.CreateSnapshot("work", models.SnapshotReasonManual, "v2")
	require.NoError(t, err)
	require.True(t, v2.Created)
	require.Len(t, snaps.ListSnapshots("work").Snapshots, 2)

	restored, err := snaps.RestoreSnapshot("work", v1.Snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, "work", restored.Key)

	list := snaps.ListSnapshots("work")
	require.Len(t, list.Snapshots, 3, "before_restore auto-snapshot added")
	assert.Equal(t, models.SnapshotReasonBeforeRestore, list.Snapshots[0].Reason)

	opts := models.NormalizeOptions{RecycleRetentionDays: 30}
	assert.Equal(t, models.ComputeDataHash(v1Data, opts), models.ComputeDataHash(restored.Data, opts))
	assert.Equal(t, "v1", apps.ReadAppData("work").Data.Categories[0].Title)
}

func TestRestoreSnapshot_ForcesDuplicateBeforeRestore(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t)
	writeTitled(t, apps, "default", "v1")
	created, err := snaps.CreateSnapshot("", models.SnapshotReasonManual, "v1")
	require.NoError(t, err)

	// current data is hash-identical to the head snapshot; the safety copy
	// must be taken anyway
	_, err = snaps.RestoreSnapshot("default", created.Snapshot.ID)
	require.NoError(t, err)

	list := snaps.ListSnapshots("")
	require.Len(t, list.Snapshots, 2)
	assert.Equal(t, models.SnapshotReasonBeforeRestore, list.Snapshots[0].Reason)
}

func TestRestoreSnapshot_NotFound(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t)
	writeTitled(t, apps, "default", "v1")

	_, err := snaps.RestoreSnapshot("default", "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestImportAppData_TakesBeforeImportSnapshot(t *testing.T) {
	t.Parallel()

	apps, snaps := newTestRepos(t)
	writeTitled(t, apps, "default", "old")

	payload := json.RawMessage(`{"categories": [{"id": "n1", "title": "Imported"}]}`)
	view, err := snaps.ImportAppData("default", payload)
	require.NoError(t, err)
	assert.Equal(t, "Imported", view.Data.Categories[0].Title)

	list := snaps.ListSnapshots("")
	require.NotEmpty(t, list.Snapshots)
	assert.Equal(t, models.SnapshotReasonBeforeImport, list.Snapshots[0].Reason)
}
