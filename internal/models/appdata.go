package models

import (
	"time"

	"github.com/google/uuid"
)

// Card is a single bookmark entry inside a category
type Card struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Cover           string `json:"cover,omitempty"`
	CoverColor      string `json:"coverColor,omitempty"`
	WanLink         string `json:"wanLink,omitempty"`
	LanLink         string `json:"lanLink,omitempty"`
	OpenInNewWindow bool   `json:"openInNewWindow"`
	Position        int    `json:"position"`
}

// Category owns an ordered list of cards. An empty Color is meaningful
// (glass/no-fill in the UI) and must survive normalization.
type Category struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	Position int    `json:"position"`
	Cards    []Card `json:"cards"`
}

// HeadConfig holds presentation settings for a configuration
type HeadConfig struct {
	Name                 string `json:"name,omitempty"`
	Subtitle             string `json:"subtitle"`
	BackgroundImage      string `json:"backgroundImage,omitempty"`
	BackgroundBlur       int    `json:"backgroundBlur"`       // 0-40
	UnsplashCollectionID string `json:"unsplashCollectionId"` // optional
	DesktopColumns       int    `json:"desktopColumns"`       // 1-8, cards per row on desktop
	NavOpacity           int    `json:"navOpacity"`           // 0-100
	OverlayOpacity       int    `json:"overlayOpacity"`       // 0-100
	CategoryOpacity      int    `json:"categoryOpacity"`      // 0-100
	CardOpacity          int    `json:"cardOpacity"`          // 0-100
}

type LayoutConfig struct {
	Head *HeadConfig `json:"head,omitempty"`
}

// DeletedCategoryItem is a soft-deleted category parked in the recycle bin.
// RecycleID is distinct from the category id so that duplicate restores of
// the same category can coexist.
type DeletedCategoryItem struct {
	RecycleID string   `json:"recycleId"`
	DeletedAt string   `json:"deletedAt"`
	Data      Category `json:"data"`
}

// DeletedCardItem additionally remembers where the card came from, so the UI
// can still label it after the source category itself is gone.
type DeletedCardItem struct {
	RecycleID     string `json:"recycleId"`
	DeletedAt     string `json:"deletedAt"`
	CategoryID    string `json:"categoryId,omitempty"`
	CategoryTitle string `json:"categoryTitle,omitempty"`
	Data          Card   `json:"data"`
}

type RecycleBin struct {
	Categories []DeletedCategoryItem `json:"categories"`
	Cards      []DeletedCardItem     `json:"cards"`
}

// AppData is the full state of one configuration key
type AppData struct {
	Categories []Category    `json:"categories"`
	Layout     *LayoutConfig `json:"layout,omitempty"`
	RecycleBin *RecycleBin   `json:"recycleBin,omitempty"`
	UpdatedAt  string        `json:"updatedAt,omitempty"`
}

// AppDB maps configuration key to its data. It is never persisted empty.
type AppDB map[string]*AppData

// DefaultKey is the seed configuration key used when storage is empty
const DefaultKey = "default"

var defaultColors = []string{"#3B82F6", "#10B981", "#F59E0B", "#8B5CF6", "#EC4899", "#EF4444"}

func defaultHeadConfig() *HeadConfig {
	return &HeadConfig{
		Name:            "Home",
		Subtitle:        "",
		BackgroundBlur:  0,
		DesktopColumns:  4,
		NavOpacity:      62,
		OverlayOpacity:  70,
		CategoryOpacity: 5,
		CardOpacity:     5,
	}
}

// CreateDefaultData builds the seed data for a fresh configuration key:
// default layout plus a single empty category.
func CreateDefaultData() *AppData {
	return &AppData{
		Layout: &LayoutConfig{Head: defaultHeadConfig()},
		Categories: []Category{
			{
				ID:       uuid.NewString(),
				Title:    "常用",
				Color:    defaultColors[0],
				Position: 0,
				Cards:    []Card{},
			},
		},
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
