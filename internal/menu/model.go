package menu

import "time"

// AnalysisResult is one completed recognition pass over a menu photo.
type AnalysisResult struct {
	Items                 []Dish  `json:"items"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	Confidence            float64 `json:"confidence"`
	DetectedLanguage      string  `json:"detected_language"`
}

// PersistedMenu is an AnalysisResult saved into scan history.
type PersistedMenu struct {
	ID            string         `json:"id"`
	Result        AnalysisResult `json:"result"`
	ScanDate      time.Time      `json:"scan_date"`
	IsFavorite    bool           `json:"is_favorite"`
	ThumbnailData []byte         `json:"thumbnail_data,omitempty"`
}

// PendingUpload is a persisted record awaiting transmission.
// At most one entry per record id lives in the queue.
type PendingUpload struct {
	Record   PersistedMenu `json:"record"`
	QueuedAt time.Time     `json:"queued_at"`
}

// UserProfile holds lightweight preferences stored next to scan history.
type UserProfile struct {
	Name           string `json:"name,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// CartItem is one dish picked from an analyzed menu.
type CartItem struct {
	Dish     Dish `json:"dish"`
	Quantity int  `json:"quantity"`
}
