package handlers

import (
	"net/http"
	"sort"
	"strings"

	"navboard-be/internal/repository"
	"navboard-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sahilm/fuzzy"
)

// SearchHandler flattens every card across all configuration keys into a
// searchable index
type SearchHandler struct {
	apps *repository.AppRepository
}

func NewSearchHandler(apps *repository.AppRepository) *SearchHandler {
	return &SearchHandler{apps: apps}
}

// ========== Response Types ==========

// SearchCard is the card subset exposed to the command palette
type SearchCard struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	WanLink         string `json:"wanLink"`
	LanLink         string `json:"lanLink"`
	OpenInNewWindow bool   `json:"openInNewWindow"`
}

// SearchItem is one result row with its category context
type SearchItem struct {
	Key           string     `json:"key"`
	CategoryID    string     `json:"categoryId"`
	CategoryTitle string     `json:"categoryTitle"`
	Card          SearchCard `json:"card"`
}

type searchIndex []SearchItem

func (s searchIndex) String(i int) string {
	return utils.FoldString(s[i].Card.Title + " " + s[i].Card.Description)
}

func (s searchIndex) Len() int { return len(s) }

// ========== Handler ==========

// Get returns the flattened card index. With ?q= the index is fuzzy-ranked
// over accent-folded titles and descriptions.
func (h *SearchHandler) Get(c *gin.Context) {
	db := h.apps.All()

	keys := make([]string, 0, len(db))
	for key := range db {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := searchIndex{}
	for _, key := range keys {
		for _, category := range db[key].Categories {
			for _, card := range category.Cards {
				items = append(items, SearchItem{
					Key:           key,
					CategoryID:    category.ID,
					CategoryTitle: category.Title,
					Card: SearchCard{
						ID:              card.ID,
						Title:           card.Title,
						Description:     card.Description,
						WanLink:         card.WanLink,
						LanLink:         card.LanLink,
						OpenInNewWindow: card.OpenInNewWindow,
					},
				})
			}
		}
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
		return
	}

	matches := fuzzy.FindFrom(utils.FoldString(query), items)
	ranked := make([]SearchItem, 0, len(matches))
	for _, match := range matches {
		ranked = append(ranked, items[match.Index])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": ranked})
}
