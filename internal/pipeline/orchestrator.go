// Package pipeline drives a photographed menu through preprocessing,
// recognition, extraction and per-dish image enrichment. One run at a
// time; per-dish failures never abort the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"menureader/internal/extract"
	"menureader/internal/history"
	"menureader/internal/menu"
)

var ErrAlreadyInProgress = errors.New("analysis already in progress")

// VisionModel returns the raw model text for a menu photo.
type VisionModel interface {
	Describe(ctx context.Context, imageData []byte, mimeType, targetLang string) (string, error)
}

// ImageSearcher fetches representative images for one dish.
type ImageSearcher interface {
	Search(ctx context.Context, dishName, query string) ([]menu.DishImage, error)
}

// Orchestrator owns all run-scoped state. Only its own goroutines mutate
// the stage, progress and per-dish image map.
type Orchestrator struct {
	vision VisionModel
	search ImageSearcher
	hist   *history.Manager

	limiter *rate.Limiter
	workers int
	maxDim  int

	mu          sync.Mutex
	running     bool
	stage       Stage
	imageStates map[string]menu.ImageState
	result      *menu.AnalysisResult
	observers   []Observer
}

type Option func(*Orchestrator)

// WithWorkers bounds the image-search pool.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSearchInterval tunes the gate between outbound image-search calls.
func WithSearchInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

func New(vision VisionModel, search ImageSearcher, hist *history.Manager, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		vision:      vision,
		search:      search,
		hist:        hist,
		limiter:     rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
		workers:     3,
		maxDim:      maxBoundingDim,
		stage:       StageIdle,
		imageStates: make(map[string]menu.ImageState),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subscribe registers an observer for stage and per-dish events.
func (o *Orchestrator) Subscribe(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, obs)
}

// Stage returns the current stage and its progress value.
func (o *Orchestrator) Stage() (Stage, float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage, o.stage.Progress()
}

// ImageStates returns a snapshot of the per-dish image map.
func (o *Orchestrator) ImageStates() map[string]menu.ImageState {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[string]menu.ImageState, len(o.imageStates))
	for k, v := range o.imageStates {
		out[k] = v
	}
	return out
}

// Result returns the last completed analysis, nil while none exists.
func (o *Orchestrator) Result() *menu.AnalysisResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Analyze runs the full pipeline on one photo. A second concurrent call
// fails immediately with ErrAlreadyInProgress and leaves the active run
// untouched. The run flag clears on every exit path.
func (o *Orchestrator) Analyze(ctx context.Context, imageData []byte, targetLang string) (*menu.AnalysisResult, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrAlreadyInProgress
	}
	o.running = true
	o.result = nil
	o.imageStates = make(map[string]menu.ImageState)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	start := time.Now()

	// ---- Preprocessing ----
	o.setStage(StagePreprocessing, "")
	processed, mimeType, err := downsample(imageData, o.maxDim)
	if err != nil {
		return nil, o.fail(fmt.Errorf("preprocessing failed: %w", err))
	}

	if err := ctx.Err(); err != nil {
		return nil, o.fail(err)
	}

	// ---- Text recognition ----
	o.setStage(StageTextRecognition, "")
	raw, err := o.vision.Describe(ctx, processed, mimeType, targetLang)
	if err != nil {
		return nil, o.fail(fmt.Errorf("recognition failed: %w", err))
	}

	// ---- Menu extraction ----
	// Extraction happens as part of response handling; an empty yield is a
	// valid empty result, never an error.
	o.setStage(StageMenuExtraction, "")
	items := extract.Extract(raw)

	lang, confidence, ok := extract.Metadata(raw)
	if !ok {
		lang = targetLang
		confidence = averageConfidence(items)
	}

	result := &menu.AnalysisResult{
		Items:            items,
		Confidence:       confidence,
		DetectedLanguage: lang,
	}

	// ---- Image search ----
	o.setStage(StageImageSearch, "")
	if len(items) > 0 {
		o.enrichImages(ctx, items)
	}

	// Per-dish search errors are tolerated; caller cancellation is not.
	if err := ctx.Err(); err != nil {
		return nil, o.fail(err)
	}

	result.ProcessingTimeSeconds = time.Since(start).Seconds()

	o.mu.Lock()
	o.result = result
	o.mu.Unlock()

	if o.hist != nil {
		if _, err := o.hist.Save(ctx, *result, processed); err != nil {
			log.Printf("HISTORY_SAVE_FAILED err=%v", err)
		}
	}

	o.setStage(StageCompleted, fmt.Sprintf("%d dishes", len(items)))
	return result, nil
}

// enrichImages runs the bounded worker pool over the extracted dishes.
// Each dish transitions Loading -> Loaded/Failed independently; a failed
// search records the error on that dish and the run proceeds.
func (o *Orchestrator) enrichImages(ctx context.Context, items []menu.Dish) {
	jobs := make(chan menu.Dish)
	var wg sync.WaitGroup

	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dish := range jobs {
				o.searchOne(ctx, dish)
			}
		}()
	}

	for _, dish := range items {
		jobs <- dish
	}
	close(jobs)
	wg.Wait()
}

func (o *Orchestrator) searchOne(ctx context.Context, dish menu.Dish) {
	o.setImageState(dish.ID, menu.ImageState{Status: menu.ImageLoading})

	// Shared gate keeps outbound search calls API-friendly.
	if err := o.limiter.Wait(ctx); err != nil {
		o.setImageState(dish.ID, menu.ImageState{Status: menu.ImageFailed, Error: err.Error()})
		return
	}

	images, err := o.search.Search(ctx, dish.OriginalName, dish.ImageSearchQuery)
	if err != nil {
		log.Printf("IMAGE_SEARCH_FAILED dish=%q err=%v", dish.OriginalName, err)
		o.setImageState(dish.ID, menu.ImageState{Status: menu.ImageFailed, Error: err.Error()})
		return
	}

	o.setImageState(dish.ID, menu.ImageState{Status: menu.ImageLoaded, Images: images})
}

func (o *Orchestrator) setStage(s Stage, msg string) {
	o.mu.Lock()
	o.stage = s
	observers := append([]Observer(nil), o.observers...)
	o.mu.Unlock()

	ev := Event{Stage: s, Progress: s.Progress(), Message: msg, Timestamp: time.Now()}
	log.Printf("PIPELINE_STAGE stage=%s progress=%.1f", s, ev.Progress)
	for _, obs := range observers {
		obs(ev)
	}
}

func (o *Orchestrator) setImageState(dishID string, state menu.ImageState) {
	o.mu.Lock()
	o.imageStates[dishID] = state
	stage := o.stage
	observers := append([]Observer(nil), o.observers...)
	o.mu.Unlock()

	ev := Event{
		Stage:     stage,
		Progress:  stage.Progress(),
		Message:   string(state.Status),
		DishID:    dishID,
		Timestamp: time.Now(),
	}
	for _, obs := range observers {
		obs(ev)
	}
}

func (o *Orchestrator) fail(err error) error {
	o.setStage(StageFailed, err.Error())
	return err
}

func averageConfidence(items []menu.Dish) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, d := range items {
		sum += d.Confidence
	}
	return sum / float64(len(items))
}
