package menu

// Dish is a single extracted menu entry.
// ID is a synthetic per-extraction ordinal id; two dishes sharing a name
// stay distinguishable. Name is display/search data only.
type Dish struct {
	ID               string  `json:"id"`
	OriginalName     string  `json:"original_name"`
	TranslatedName   string  `json:"translated_name,omitempty"`
	Description      string  `json:"description,omitempty"`
	Price            string  `json:"price,omitempty"`
	Confidence       float64 `json:"confidence"`
	Category         string  `json:"category,omitempty"`
	ImageSearchQuery string  `json:"image_search_query,omitempty"`
}

// DishImage is one converted image-search hit.
// Never mutated after creation except IsLoaded.
type DishImage struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	SourceURL    string `json:"source_url,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	DishName     string `json:"dish_name"`
	IsLoaded     bool   `json:"is_loaded"`
}

type ImageStatus string

const (
	ImageIdle    ImageStatus = "idle"
	ImageLoading ImageStatus = "loading"
	ImageLoaded  ImageStatus = "loaded"
	ImageFailed  ImageStatus = "failed"
)

// ImageState tracks image enrichment for one dish during a run.
type ImageState struct {
	Status ImageStatus `json:"status"`
	Images []DishImage `json:"images,omitempty"`
	Error  string      `json:"error,omitempty"`
}
