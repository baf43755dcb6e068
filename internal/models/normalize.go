package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"navboard-be/internal/utils"

	"github.com/google/uuid"
)

// NormalizeOptions carries the knobs the normalizer depends on. The zero
// value means "30 day recycle retention, wall clock now"; tests pin both.
type NormalizeOptions struct {
	RecycleRetentionDays int
	Now                  time.Time
}

func (o NormalizeOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

func (o NormalizeOptions) retentionDays() int {
	if o.RecycleRetentionDays <= 0 {
		return 30
	}
	return o.RecycleRetentionDays
}

// ---------- raw (untrusted) decoding ----------

// Card and category fields decode individually from raw JSON so one
// mistyped value (a numeric color, a string position) loses just that field
// instead of the whole entity. Absent and mistyped both read as nil, which
// still distinguishes "missing" from "explicitly empty/zero" for category
// colors and openInNewWindow.
type rawCard struct {
	ID              json.RawMessage `json:"id"`
	Title           json.RawMessage `json:"title"`
	Description     json.RawMessage `json:"description"`
	Remark          json.RawMessage `json:"remark"` // legacy alias of description
	Cover           json.RawMessage `json:"cover"`
	CoverColor      json.RawMessage `json:"coverColor"`
	WanLink         json.RawMessage `json:"wanLink"`
	LanLink         json.RawMessage `json:"lanLink"`
	OpenInNewWindow json.RawMessage `json:"openInNewWindow"`
	Position        json.RawMessage `json:"position"`
}

type rawCategoryStyle struct {
	Color *string `json:"color"`
}

type rawCategory struct {
	ID       json.RawMessage `json:"id"`
	Title    json.RawMessage `json:"title"`
	Color    json.RawMessage `json:"color"`
	Style    json.RawMessage `json:"style"` // legacy color carrier
	Position json.RawMessage `json:"position"`
	Cards    json.RawMessage `json:"cards"`
}

type rawHead struct {
	Name                 *string  `json:"name"`
	Subtitle             *string  `json:"subtitle"`
	BackgroundImage      *string  `json:"backgroundImage"`
	BackgroundBlur       *float64 `json:"backgroundBlur"`
	UnsplashCollectionID *string  `json:"unsplashCollectionId"`
	DesktopColumns       *float64 `json:"desktopColumns"`
	NavOpacity           *float64 `json:"navOpacity"`
	OverlayOpacity       *float64 `json:"overlayOpacity"`
	CategoryOpacity      *float64 `json:"categoryOpacity"`
	CardOpacity          *float64 `json:"cardOpacity"`
}

type rawLayout struct {
	Head json.RawMessage `json:"head"`
}

type rawAppData struct {
	Categories []json.RawMessage `json:"categories"`
	Layout     json.RawMessage   `json:"layout"`
	RecycleBin json.RawMessage   `json:"recycleBin"`
}

type rawRecycleBin struct {
	Categories []json.RawMessage `json:"categories"`
	Cards      []json.RawMessage `json:"cards"`
}

type rawDeletedCategory struct {
	RecycleID *string         `json:"recycleId"`
	DeletedAt *string         `json:"deletedAt"`
	Data      json.RawMessage `json:"data"`
}

type rawDeletedCard struct {
	RecycleID     *string         `json:"recycleId"`
	DeletedAt     *string         `json:"deletedAt"`
	CategoryID    *string         `json:"categoryId"`
	CategoryTitle *string         `json:"categoryTitle"`
	Data          json.RawMessage `json:"data"`
}

func strOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func strField(raw json.RawMessage) *string {
	var v string
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

func numField(raw json.RawMessage) *float64 {
	var v float64
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

func boolField(raw json.RawMessage) *bool {
	var v bool
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

func legacyStyleColor(raw json.RawMessage) *string {
	if !isJSONObject(raw) {
		return nil
	}
	var style rawCategoryStyle
	if json.Unmarshal(raw, &style) != nil {
		return nil
	}
	return style.Color
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// topLevelEntries decodes the keys of a JSON object in document order. The
// legacy-wrapper sniff depends on "the first property", which a Go map
// cannot preserve.
func topLevelEntries(raw []byte) ([]string, map[string]json.RawMessage, bool) {
	if !isJSONObject(raw) {
		return nil, nil, false
	}
	values := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, nil, false
	}

	var order []string
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, nil, false
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if key, ok := tok.(string); ok {
			order = append(order, key)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			break
		}
	}
	if len(order) != len(values) {
		// fall back to whatever order the map gives; keys still usable
		order = order[:0]
		for key := range values {
			order = append(order, key)
		}
	}
	return order, values, true
}

// NormalizeRaw repairs an arbitrary JSON payload into valid AppData. It never
// fails: unrecognizable input collapses to the default seed data. Legacy
// wrapper shapes (a profile object keyed under "default" or the first
// property) are detected before the canonical shape.
func NormalizeRaw(raw json.RawMessage, opts NormalizeOptions) *AppData {
	if legacy, ok := convertLegacyPayload(raw, opts); ok {
		return legacy
	}

	var payload rawAppData
	if !isJSONObject(raw) || json.Unmarshal(raw, &payload) != nil {
		return NormalizeData(CreateDefaultData(), opts)
	}

	data := &AppData{
		Categories: decodeCategories(payload.Categories),
		Layout:     decodeLayout(payload.Layout),
		RecycleBin: decodeRecycleBin(payload.RecycleBin),
	}
	return NormalizeData(data, opts)
}

// convertLegacyPayload upgrades the pre-multi-key export format: a wrapper
// object whose "default" entry (or first entry) holds layout + categories.
func convertLegacyPayload(raw json.RawMessage, opts NormalizeOptions) (*AppData, bool) {
	order, values, ok := topLevelEntries(raw)
	if !ok || len(order) == 0 {
		return nil, false
	}

	candidate, exists := values["default"]
	if !exists {
		candidate = values[order[0]]
	}
	if !isJSONObject(candidate) {
		return nil, false
	}

	var profile rawAppData
	if err := json.Unmarshal(candidate, &profile); err != nil {
		return nil, false
	}
	// legacy only when the nested object carries a categories array; a
	// canonical AppData has the array at the top level instead.
	var probe struct {
		Categories json.RawMessage `json:"categories"`
	}
	if json.Unmarshal(candidate, &probe) != nil || !isJSONArray(probe.Categories) {
		return nil, false
	}

	data := &AppData{
		Categories: decodeCategories(profile.Categories),
		Layout:     decodeLayout(profile.Layout),
	}
	return NormalizeData(data, opts), true
}

func decodeCategories(items []json.RawMessage) []Category {
	categories := make([]Category, 0, len(items))
	for index, item := range items {
		var rc rawCategory
		if !isJSONObject(item) || json.Unmarshal(item, &rc) != nil {
			continue
		}

		color := strField(rc.Color)
		if color == nil {
			color = legacyStyleColor(rc.Style)
		}
		if color == nil {
			fallback := defaultColors[index%len(defaultColors)]
			color = &fallback
		}

		position := index
		if p := numField(rc.Position); p != nil {
			position = int(*p)
		}

		var cardItems []json.RawMessage
		if isJSONArray(rc.Cards) {
			_ = json.Unmarshal(rc.Cards, &cardItems)
		}

		categories = append(categories, Category{
			ID:       strOr(strField(rc.ID), ""),
			Title:    strOr(strField(rc.Title), ""),
			Color:    *color,
			Position: position,
			Cards:    decodeCards(cardItems),
		})
	}
	return categories
}

func decodeCards(items []json.RawMessage) []Card {
	cards := make([]Card, 0, len(items))
	for index, item := range items {
		var rc rawCard
		if !isJSONObject(item) || json.Unmarshal(item, &rc) != nil {
			continue
		}

		description := strOr(strField(rc.Description), "")
		if description == "" {
			description = strOr(strField(rc.Remark), "")
		}

		openInNewWindow := true
		if b := boolField(rc.OpenInNewWindow); b != nil {
			openInNewWindow = *b
		}

		position := index
		if p := numField(rc.Position); p != nil {
			position = int(*p)
		}

		cards = append(cards, Card{
			ID:              strOr(strField(rc.ID), ""),
			Title:           strOr(strField(rc.Title), ""),
			Description:     description,
			Cover:           strOr(strField(rc.Cover), ""),
			CoverColor:      strOr(strField(rc.CoverColor), ""),
			WanLink:         strOr(strField(rc.WanLink), ""),
			LanLink:         strOr(strField(rc.LanLink), ""),
			OpenInNewWindow: openInNewWindow,
			Position:        position,
		})
	}
	return cards
}

func decodeLayout(raw json.RawMessage) *LayoutConfig {
	head := defaultHeadConfig()
	if !isJSONObject(raw) {
		return &LayoutConfig{Head: head}
	}
	var layout rawLayout
	if json.Unmarshal(raw, &layout) != nil || !isJSONObject(layout.Head) {
		return &LayoutConfig{Head: head}
	}
	var rh rawHead
	if json.Unmarshal(layout.Head, &rh) != nil {
		return &LayoutConfig{Head: head}
	}

	if rh.Name != nil {
		head.Name = *rh.Name
	}
	if rh.Subtitle != nil {
		head.Subtitle = *rh.Subtitle
	}
	if rh.BackgroundImage != nil {
		head.BackgroundImage = *rh.BackgroundImage
	}
	if rh.UnsplashCollectionID != nil {
		head.UnsplashCollectionID = *rh.UnsplashCollectionID
	}
	if rh.BackgroundBlur != nil {
		head.BackgroundBlur = int(*rh.BackgroundBlur)
	}
	if rh.DesktopColumns != nil {
		head.DesktopColumns = int(*rh.DesktopColumns)
	}
	if rh.NavOpacity != nil {
		head.NavOpacity = int(*rh.NavOpacity)
	}
	if rh.OverlayOpacity != nil {
		head.OverlayOpacity = int(*rh.OverlayOpacity)
	}
	if rh.CategoryOpacity != nil {
		head.CategoryOpacity = int(*rh.CategoryOpacity)
	}
	if rh.CardOpacity != nil {
		head.CardOpacity = int(*rh.CardOpacity)
	}
	return &LayoutConfig{Head: head}
}

func decodeRecycleBin(raw json.RawMessage) *RecycleBin {
	if !isJSONObject(raw) {
		return nil
	}
	var rb rawRecycleBin
	if json.Unmarshal(raw, &rb) != nil {
		return nil
	}

	bin := &RecycleBin{Categories: []DeletedCategoryItem{}, Cards: []DeletedCardItem{}}
	for _, item := range rb.Categories {
		var rc rawDeletedCategory
		if !isJSONObject(item) || json.Unmarshal(item, &rc) != nil {
			continue
		}
		decoded := decodeCategories([]json.RawMessage{rc.Data})
		if len(decoded) == 0 {
			continue
		}
		bin.Categories = append(bin.Categories, DeletedCategoryItem{
			RecycleID: strOr(rc.RecycleID, ""),
			DeletedAt: strOr(rc.DeletedAt, ""),
			Data:      decoded[0],
		})
	}
	for _, item := range rb.Cards {
		var rc rawDeletedCard
		if !isJSONObject(item) || json.Unmarshal(item, &rc) != nil {
			continue
		}
		decoded := decodeCards([]json.RawMessage{rc.Data})
		if len(decoded) == 0 {
			continue
		}
		bin.Cards = append(bin.Cards, DeletedCardItem{
			RecycleID:     strOr(rc.RecycleID, ""),
			DeletedAt:     strOr(rc.DeletedAt, ""),
			CategoryID:    strOr(rc.CategoryID, ""),
			CategoryTitle: strOr(rc.CategoryTitle, ""),
			Data:          decoded[0],
		})
	}
	return bin
}

// ---------- typed normalization ----------

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// rankCategories stable-sorts by the stored position and re-packs to 0..n-1.
func rankCategories(categories []Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Position < categories[j].Position
	})
	for i := range categories {
		categories[i].Position = i
	}
}

func rankCards(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Position < cards[j].Position
	})
	for i := range cards {
		cards[i].Position = i
	}
}

func normalizeCard(card Card, index int) Card {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	// imported backups can carry broken encodings
	card.Title = utils.ToValidUTF8(card.Title)
	card.Description = utils.ToValidUTF8(card.Description)
	if card.Title == "" {
		card.Title = fmt.Sprintf("卡片 %d", index+1)
	}
	return card
}

func normalizeCategory(category Category, index int) Category {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.Title = utils.ToValidUTF8(category.Title)
	if category.Title == "" {
		category.Title = fmt.Sprintf("分类 %d", index+1)
	}
	// an explicit empty color stays empty (glass style); raw decoding
	// already defaulted truly missing colors from the palette
	if category.Cards == nil {
		category.Cards = []Card{}
	}
	for i := range category.Cards {
		category.Cards[i] = normalizeCard(category.Cards[i], i)
	}
	rankCards(category.Cards)
	return category
}

func normalizeHead(layout *LayoutConfig) *LayoutConfig {
	head := defaultHeadConfig()
	if layout != nil && layout.Head != nil {
		*head = *layout.Head
	}
	if head.DesktopColumns == 0 {
		head.DesktopColumns = 4
	}
	head.BackgroundBlur = clampInt(head.BackgroundBlur, 0, 40)
	head.DesktopColumns = clampInt(head.DesktopColumns, 1, 8)
	head.NavOpacity = clampInt(head.NavOpacity, 0, 100)
	head.OverlayOpacity = clampInt(head.OverlayOpacity, 0, 100)
	head.CategoryOpacity = clampInt(head.CategoryOpacity, 0, 100)
	head.CardOpacity = clampInt(head.CardOpacity, 0, 100)
	return &LayoutConfig{Head: head}
}

func normalizeRecycleBin(bin *RecycleBin, opts NormalizeOptions) *RecycleBin {
	if bin == nil {
		return nil
	}
	cutoff := opts.now().AddDate(0, 0, -opts.retentionDays())
	nowText := opts.now().Format(time.RFC3339)

	out := &RecycleBin{Categories: []DeletedCategoryItem{}, Cards: []DeletedCardItem{}}
	for _, item := range bin.Categories {
		if item.Data.ID == "" {
			continue
		}
		if item.RecycleID == "" {
			item.RecycleID = uuid.NewString()
		}
		deletedAt, err := time.Parse(time.RFC3339, item.DeletedAt)
		if err != nil {
			item.DeletedAt = nowText
		} else if deletedAt.Before(cutoff) {
			continue
		}
		item.Data = normalizeCategory(item.Data, 0)
		out.Categories = append(out.Categories, item)
	}
	for _, item := range bin.Cards {
		if item.Data.ID == "" {
			continue
		}
		if item.RecycleID == "" {
			item.RecycleID = uuid.NewString()
		}
		deletedAt, err := time.Parse(time.RFC3339, item.DeletedAt)
		if err != nil {
			item.DeletedAt = nowText
		} else if deletedAt.Before(cutoff) {
			continue
		}
		item.Data = normalizeCard(item.Data, 0)
		out.Cards = append(out.Cards, item)
	}
	return out
}

// NormalizeData repairs typed data in place of trusting it: missing ids and
// titles are filled, positions are re-packed dense, layout numbers clamped,
// expired recycle entries pruned (the only place expiry happens), and a seed
// category substituted when none remain. updatedAt is stamped on every pass,
// so this is also the save-timestamping step. Aside from that stamp and
// recycle expiry the function is idempotent.
func NormalizeData(data *AppData, opts NormalizeOptions) *AppData {
	if data == nil {
		data = &AppData{}
	}

	categories := make([]Category, len(data.Categories))
	copy(categories, data.Categories)
	for i := range categories {
		categories[i] = normalizeCategory(categories[i], i)
	}
	rankCategories(categories)
	if len(categories) == 0 {
		categories = CreateDefaultData().Categories
	}

	return &AppData{
		Categories: categories,
		Layout:     normalizeHead(data.Layout),
		RecycleBin: normalizeRecycleBin(data.RecycleBin, opts),
		UpdatedAt:  opts.now().Format(time.RFC3339),
	}
}
