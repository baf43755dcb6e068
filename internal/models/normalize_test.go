package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOpts() NormalizeOptions {
	return NormalizeOptions{
		RecycleRetentionDays: 30,
		Now:                  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeRaw_GarbageFallsBackToDefault(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`null`, `[]`, `42`, `"hello"`, `{broken`} {
		data := NormalizeRaw(json.RawMessage(raw), testOpts())
		require.NotNil(t, data, "input %q", raw)
		require.Len(t, data.Categories, 1)
		assert.Equal(t, "常用", data.Categories[0].Title)
		assert.NotEmpty(t, data.Categories[0].ID)
	}
}

func TestNormalizeRaw_CanonicalShape(t *testing.T) {
	t.Parallel()

	raw := `{
		"categories": [
			{"id": "c1", "title": "Tools", "color": "#123456", "position": 0, "cards": [
				{"id": "k1", "title": "Router", "wanLink": "https://r.example", "position": 0}
			]}
		],
		"layout": {"head": {"name": "My Home", "backgroundBlur": 12, "desktopColumns": 6}}
	}`
	data := NormalizeRaw(json.RawMessage(raw), testOpts())

	require.Len(t, data.Categories, 1)
	assert.Equal(t, "Tools", data.Categories[0].Title)
	assert.Equal(t, "#123456", data.Categories[0].Color)
	require.Len(t, data.Categories[0].Cards, 1)
	card := data.Categories[0].Cards[0]
	assert.Equal(t, "Router", card.Title)
	assert.True(t, card.OpenInNewWindow, "openInNewWindow defaults to true")
	assert.Equal(t, "My Home", data.Layout.Head.Name)
	assert.Equal(t, 12, data.Layout.Head.BackgroundBlur)
	assert.Equal(t, 6, data.Layout.Head.DesktopColumns)
}

func TestNormalizeRaw_LegacyWrapperUpgrade(t *testing.T) {
	t.Parallel()

	raw := `{
		"default": {
			"layout": {"head": {"name": "Old Home", "backgroundBlur": 99}},
			"categories": [
				{"title": "Legacy", "style": {"color": "#abcdef"}, "cards": [
					{"title": "Box", "remark": "an old note"}
				]}
			]
		}
	}`
	data := NormalizeRaw(json.RawMessage(raw), testOpts())

	require.Len(t, data.Categories, 1)
	assert.Equal(t, "Legacy", data.Categories[0].Title)
	assert.Equal(t, "#abcdef", data.Categories[0].Color, "style.color carried over")
	require.Len(t, data.Categories[0].Cards, 1)
	assert.Equal(t, "an old note", data.Categories[0].Cards[0].Description, "remark becomes description")
	assert.Equal(t, "Old Home", data.Layout.Head.Name)
	assert.Equal(t, 40, data.Layout.Head.BackgroundBlur, "blur clamped to 40")
}

func TestNormalizeRaw_WrapperUnderFirstProperty(t *testing.T) {
	t.Parallel()

	raw := `{"main": {"categories": [{"title": "First"}]}}`
	data := NormalizeRaw(json.RawMessage(raw), testOpts())

	require.Len(t, data.Categories, 1)
	assert.Equal(t, "First", data.Categories[0].Title)
}

func TestNormalizeRaw_ColorDefaults(t *testing.T) {
	t.Parallel()

	raw := `{"categories": [
		{"title": "NoColor"},
		{"title": "Glass", "color": ""},
		{"title": "Explicit", "color": "#000000"}
	]}`
	data := NormalizeRaw(json.RawMessage(raw), testOpts())

	require.Len(t, data.Categories, 3)
	assert.Equal(t, defaultColors[0], data.Categories[0].Color, "missing color gets a palette default")
	assert.Equal(t, "", data.Categories[1].Color, "explicit empty color is preserved")
	assert.Equal(t, "#000000", data.Categories[2].Color)
}

func TestNormalizeRaw_MistypedFieldsLoseOnlyTheField(t *testing.T) {
	t.Parallel()

	raw := `{"categories": [
		{"title": "NumColor", "color": 123, "cards": [
			{"title": "C1", "openInNewWindow": "yes", "position": "first"}
		]},
		{"title": 42, "color": "#fff", "cards": {}},
		{"title": "Fine", "color": "#fff"}
	]}`
	data := NormalizeRaw(json.RawMessage(raw), testOpts())

	require.Len(t, data.Categories, 3, "mistyped fields must not drop the category")
	assert.Equal(t, "NumColor", data.Categories[0].Title)
	assert.Equal(t, defaultColors[0], data.Categories[0].Color, "numeric color falls back to the palette")
	require.Len(t, data.Categories[0].Cards, 1)
	card := data.Categories[0].Cards[0]
	assert.Equal(t, "C1", card.Title)
	assert.True(t, card.OpenInNewWindow, "mistyped flag falls back to the default")
	assert.Equal(t, 0, card.Position)
	assert.Equal(t, "分类 2", data.Categories[1].Title, "numeric title reads as missing")
	assert.Empty(t, data.Categories[1].Cards, "non-array cards read as empty")
	assert.Equal(t, "Fine", data.Categories[2].Title)
}

func TestNormalizeRaw_ExplicitOpenInNewWindowFalse(t *testing.T) {
	t.Parallel()

	raw := `{"categories": [{"title": "T", "cards": [{"title": "C", "openInNewWindow": false}]}]}`
	data := NormalizeRaw(json.RawMessage(raw), testOpts())
	assert.False(t, data.Categories[0].Cards[0].OpenInNewWindow)
}

func TestNormalizeData_DensePositions(t *testing.T) {
	t.Parallel()

	data := &AppData{
		Categories: []Category{
			{ID: "b", Title: "B", Position: 9, Cards: []Card{
				{ID: "y", Title: "Y", Position: 7},
				{ID: "x", Title: "X", Position: 2},
			}},
			{ID: "a", Title: "A", Position: 3},
		},
	}
	normalized := NormalizeData(data, testOpts())

	require.Len(t, normalized.Categories, 2)
	assert.Equal(t, "a", normalized.Categories[0].ID, "ordered by stored position")
	assert.Equal(t, "b", normalized.Categories[1].ID)
	for i, category := range normalized.Categories {
		assert.Equal(t, i, category.Position)
	}
	cards := normalized.Categories[1].Cards
	require.Len(t, cards, 2)
	assert.Equal(t, "x", cards[0].ID)
	assert.Equal(t, 0, cards[0].Position)
	assert.Equal(t, "y", cards[1].ID)
	assert.Equal(t, 1, cards[1].Position)
}

func TestNormalizeData_ClampsHeadConfig(t *testing.T) {
	t.Parallel()

	data := &AppData{
		Categories: []Category{{ID: "c", Title: "C"}},
		Layout: &LayoutConfig{Head: &HeadConfig{
			BackgroundBlur: 100,
			DesktopColumns: 20,
			NavOpacity:     -5,
			OverlayOpacity: 250,
		}},
	}
	normalized := NormalizeData(data, testOpts())

	head := normalized.Layout.Head
	assert.Equal(t, 40, head.BackgroundBlur)
	assert.Equal(t, 8, head.DesktopColumns)
	assert.Equal(t, 0, head.NavOpacity)
	assert.Equal(t, 100, head.OverlayOpacity)
}

func TestNormalizeData_EmptyCategoriesSeeded(t *testing.T) {
	t.Parallel()

	normalized := NormalizeData(&AppData{}, testOpts())
	require.Len(t, normalized.Categories, 1)
	assert.Equal(t, "常用", normalized.Categories[0].Title)
	assert.NotEmpty(t, normalized.UpdatedAt)
}

func TestNormalizeData_RecycleExpiry(t *testing.T) {
	t.Parallel()

	opts := testOpts()
	fresh := opts.Now.AddDate(0, 0, -5).Format(time.RFC3339)
	stale := opts.Now.AddDate(0, 0, -45).Format(time.RFC3339)

	data := &AppData{
		Categories: []Category{{ID: "c", Title: "C"}},
		RecycleBin: &RecycleBin{
			Categories: []DeletedCategoryItem{
				{RecycleID: "r1", DeletedAt: fresh, Data: Category{ID: "g1", Title: "Kept"}},
				{RecycleID: "r2", DeletedAt: stale, Data: Category{ID: "g2", Title: "Expired"}},
			},
			Cards: []DeletedCardItem{
				{RecycleID: "r3", DeletedAt: fresh, CategoryID: "c", CategoryTitle: "C", Data: Card{ID: "d1", Title: "Kept"}},
				{RecycleID: "r4", DeletedAt: stale, Data: Card{ID: "d2", Title: "Expired"}},
				{DeletedAt: fresh, Data: Card{Title: "no id"}}, // malformed, dropped
			},
		},
	}
	normalized := NormalizeData(data, opts)

	require.NotNil(t, normalized.RecycleBin)
	require.Len(t, normalized.RecycleBin.Categories, 1)
	assert.Equal(t, "r1", normalized.RecycleBin.Categories[0].RecycleID)
	require.Len(t, normalized.RecycleBin.Cards, 1)
	assert.Equal(t, "r3", normalized.RecycleBin.Cards[0].RecycleID)
	assert.Equal(t, "C", normalized.RecycleBin.Cards[0].CategoryTitle)
}

func TestNormalizeData_RecycleIDRepaired(t *testing.T) {
	t.Parallel()

	opts := testOpts()
	data := &AppData{
		Categories: []Category{{ID: "c", Title: "C"}},
		RecycleBin: &RecycleBin{
			Categories: []DeletedCategoryItem{
				{DeletedAt: opts.Now.Format(time.RFC3339), Data: Category{ID: "g", Title: "G"}},
			},
		},
	}
	normalized := NormalizeData(data, opts)
	require.Len(t, normalized.RecycleBin.Categories, 1)
	assert.NotEmpty(t, normalized.RecycleBin.Categories[0].RecycleID)
}

func TestNormalizeData_CleansInvalidUTF8Text(t *testing.T) {
	t.Parallel()

	data := &AppData{
		Categories: []Category{
			{ID: "c", Title: "a\xffb", Cards: []Card{
				{ID: "k", Title: "x\xfey", Description: "d\xffe"},
			}},
		},
	}
	normalized := NormalizeData(data, testOpts())

	assert.Equal(t, "ab", normalized.Categories[0].Title)
	assert.Equal(t, "xy", normalized.Categories[0].Cards[0].Title)
	assert.Equal(t, "de", normalized.Categories[0].Cards[0].Description)
}

func TestNormalizeData_Idempotent(t *testing.T) {
	t.Parallel()

	opts := testOpts()
	raw := `{
		"categories": [
			{"title": "Shuffled", "position": 5, "cards": [
				{"title": "B", "position": 3},
				{"title": "A", "position": 1}
			]},
			{"title": "Glass", "color": "", "position": 1}
		],
		"layout": {"head": {"backgroundBlur": 77, "desktopColumns": 0}}
	}`
	once := NormalizeRaw(json.RawMessage(raw), opts)
	twice := NormalizeData(once, opts)

	once.UpdatedAt = ""
	twice.UpdatedAt = ""
	assert.Equal(t, once, twice)
}
