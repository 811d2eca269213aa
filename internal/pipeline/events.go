package pipeline

import "time"

// Stage is one step of the analysis state machine.
type Stage string

const (
	StageIdle            Stage = "idle"
	StagePreprocessing   Stage = "preprocessing"
	StageTextRecognition Stage = "text_recognition"
	StageMenuExtraction  Stage = "menu_extraction"
	StageImageSearch     Stage = "image_search"
	StageCompleted       Stage = "completed"
	StageFailed          Stage = "failed"
)

// Progress maps each stage onto overall run progress.
func (s Stage) Progress() float64 {
	switch s {
	case StagePreprocessing:
		return 0.1
	case StageTextRecognition:
		return 0.3
	case StageMenuExtraction:
		return 0.6
	case StageImageSearch:
		return 0.8
	case StageCompleted:
		return 1.0
	default:
		return 0
	}
}

// Event is emitted on every stage transition and per-dish image update.
// Observers (UI, logger, test harness) subscribe without coupling the
// state machine to any of them.
type Event struct {
	Stage     Stage     `json:"stage"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	DishID    string    `json:"dish_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer receives run events. Callbacks must not block.
type Observer func(Event)
