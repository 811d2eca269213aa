// Package history owns the persisted scan history, the offline pending
// upload queue and the storage quota. All mutation goes through Manager;
// nothing else touches the underlying keys.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"menureader/internal/kv"
	"menureader/internal/menu"
)

var ErrNotFound = errors.New("history record not found")

// Manager serializes whole collections per logical key, so every write is
// atomic from the caller's perspective: a failed write leaves the stored
// value untouched.
type Manager struct {
	mu      sync.Mutex
	store   kv.Store
	offline func() bool
	now     func() time.Time
}

type Option func(*Manager)

// WithOfflineSignal wires the external connectivity signal. When it
// reports true, saves are additionally queued for later transmission.
func WithOfflineSignal(offline func() bool) Option {
	return func(m *Manager) { m.offline = offline }
}

// WithClock overrides time.Now (eviction tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store kv.Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		offline: func() bool { return false },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// --------------------------------------------------
// History
// --------------------------------------------------

// Save appends a completed analysis to history, most-recent-first. While
// offline the record is also enqueued for upload (duplicate ids are a
// no-op there).
func (m *Manager) Save(ctx context.Context, result menu.AnalysisResult, thumbnail []byte) (menu.PersistedMenu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := menu.PersistedMenu{
		ID:            uuid.New().String(),
		Result:        result,
		ScanDate:      m.now(),
		ThumbnailData: thumbnail,
	}

	records, err := m.loadAll(ctx)
	if err != nil {
		return menu.PersistedMenu{}, err
	}

	records = append([]menu.PersistedMenu{record}, records...)
	if err := m.writeAll(ctx, records); err != nil {
		return menu.PersistedMenu{}, err
	}

	if m.offline() {
		if err := m.enqueueLocked(ctx, record); err != nil {
			log.Printf("PENDING_ENQUEUE_FAILED id=%s err=%v", record.ID, err)
		}
	}

	return record, nil
}

// LoadHistory returns the full history, most recent first.
func (m *Manager) LoadHistory(ctx context.Context) ([]menu.PersistedMenu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadAll(ctx)
}

// Paginate returns one page of history plus the total record count.
func (m *Manager) Paginate(ctx context.Context, page, size int) ([]menu.PersistedMenu, int, error) {
	if page < 1 || size < 1 {
		return nil, 0, errors.New("page and size must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.loadAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	start := (page - 1) * size
	if start >= len(records) {
		return nil, len(records), nil
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], len(records), nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.loadAll(ctx)
	if err != nil {
		return err
	}

	kept := records[:0]
	found := false
	for _, r := range records {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return ErrNotFound
	}

	return m.writeAll(ctx, kept)
}

// ToggleFavorite flips the favorite flag and returns the updated record.
// Favorites are exempt from all eviction.
func (m *Manager) ToggleFavorite(ctx context.Context, id string) (menu.PersistedMenu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.loadAll(ctx)
	if err != nil {
		return menu.PersistedMenu{}, err
	}

	for i := range records {
		if records[i].ID == id {
			records[i].IsFavorite = !records[i].IsFavorite
			if err := m.writeAll(ctx, records); err != nil {
				return menu.PersistedMenu{}, err
			}
			return records[i], nil
		}
	}

	return menu.PersistedMenu{}, ErrNotFound
}

// --------------------------------------------------
// Pending upload queue
// --------------------------------------------------

func (m *Manager) EnqueuePending(ctx context.Context, record menu.PersistedMenu) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enqueueLocked(ctx, record)
}

func (m *Manager) enqueueLocked(ctx context.Context, record menu.PersistedMenu) error {
	queue, err := m.loadQueue(ctx)
	if err != nil {
		return err
	}

	// Idempotent: one queue entry per record id.
	for _, e := range queue {
		if e.Record.ID == record.ID {
			return nil
		}
	}

	queue = append(queue, menu.PendingUpload{Record: record, QueuedAt: m.now()})
	return m.writeQueue(ctx, queue)
}

func (m *Manager) DequeuePending(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue, err := m.loadQueue(ctx)
	if err != nil {
		return err
	}

	kept := queue[:0]
	for _, e := range queue {
		if e.Record.ID != id {
			kept = append(kept, e)
		}
	}
	return m.writeQueue(ctx, kept)
}

// PendingUploads returns the queue oldest-first.
func (m *Manager) PendingUploads(ctx context.Context) ([]menu.PendingUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadQueue(ctx)
}

// --------------------------------------------------
// Quota
// --------------------------------------------------

// StorageSizeBytes is the serialized size of the history collection,
// thumbnails included.
func (m *Manager) StorageSizeBytes(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sizeLocked(ctx)
}

func (m *Manager) sizeLocked(ctx context.Context) (int64, error) {
	raw, err := m.store.Get(ctx, kv.KeyMenuHistory)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(len(raw)), nil
}

// SetQuota stores the storage ceiling. When current usage already exceeds
// the new limit, the retention window is tightened proportionally instead
// of failing; favorites are never evicted, so usage may legitimately stay
// above a very small quota.
func (m *Manager) SetQuota(ctx context.Context, bytes int64) error {
	if bytes <= 0 {
		return errors.New("quota must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.Marshal(bytes)
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, kv.KeyMaxStorageLimit, raw); err != nil {
		return err
	}

	return m.shrinkToQuotaLocked(ctx, bytes)
}

// Quota returns the configured ceiling, zero when unset.
func (m *Manager) Quota(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.store.Get(ctx, kv.KeyMaxStorageLimit)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var quota int64
	if err := json.Unmarshal(raw, &quota); err != nil {
		return 0, err
	}
	return quota, nil
}

// EvictOld drops non-favorite records strictly older than keepDays.
func (m *Manager) EvictOld(ctx context.Context, keepDays int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictLocked(ctx, float64(keepDays))
}

func (m *Manager) evictLocked(ctx context.Context, keepDays float64) error {
	records, err := m.loadAll(ctx)
	if err != nil {
		return err
	}

	cutoff := m.now().Add(-time.Duration(keepDays * 24 * float64(time.Hour)))
	kept := records[:0]
	evicted := 0
	for _, r := range records {
		if !r.IsFavorite && r.ScanDate.Before(cutoff) {
			evicted++
			continue
		}
		kept = append(kept, r)
	}

	if evicted == 0 {
		return nil
	}

	log.Printf("HISTORY_EVICTED count=%d keep_days=%.1f", evicted, keepDays)
	return m.writeAll(ctx, kept)
}

func (m *Manager) shrinkToQuotaLocked(ctx context.Context, quota int64) error {
	usage, err := m.sizeLocked(ctx)
	if err != nil || usage <= quota {
		return err
	}

	records, err := m.loadAll(ctx)
	if err != nil {
		return err
	}

	// Proportional tightening: shrink the retention span by usage ratio,
	// repeating while eviction still makes progress. Favorites stay.
	span := m.retentionSpanDays(records)
	for i := 0; i < 8 && span > 0; i++ {
		span = span * float64(quota) / float64(usage)
		if err := m.evictLocked(ctx, span); err != nil {
			return err
		}

		newUsage, err := m.sizeLocked(ctx)
		if err != nil {
			return err
		}
		if newUsage <= quota || newUsage == usage {
			return nil
		}
		usage = newUsage
	}
	return nil
}

// retentionSpanDays is the age of the oldest non-favorite record.
func (m *Manager) retentionSpanDays(records []menu.PersistedMenu) float64 {
	var span float64
	now := m.now()
	for _, r := range records {
		if r.IsFavorite {
			continue
		}
		if age := now.Sub(r.ScanDate).Hours() / 24; age > span {
			span = age
		}
	}
	return span
}

// --------------------------------------------------
// Profile & cart passthrough
// --------------------------------------------------

func (m *Manager) SaveProfile(ctx context.Context, p menu.UserProfile) error {
	return m.putJSON(ctx, kv.KeyUserProfile, p)
}

func (m *Manager) LoadProfile(ctx context.Context) (menu.UserProfile, error) {
	var p menu.UserProfile
	err := m.getJSON(ctx, kv.KeyUserProfile, &p)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return menu.UserProfile{}, nil
	}
	return p, err
}

func (m *Manager) SaveCart(ctx context.Context, items []menu.CartItem) error {
	return m.putJSON(ctx, kv.KeyCartItems, items)
}

func (m *Manager) LoadCart(ctx context.Context) ([]menu.CartItem, error) {
	var items []menu.CartItem
	err := m.getJSON(ctx, kv.KeyCartItems, &items)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	return items, err
}

// --------------------------------------------------
// Serialization
// --------------------------------------------------

func (m *Manager) loadAll(ctx context.Context) ([]menu.PersistedMenu, error) {
	var records []menu.PersistedMenu
	err := m.getJSON(ctx, kv.KeyMenuHistory, &records)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	return records, err
}

func (m *Manager) writeAll(ctx context.Context, records []menu.PersistedMenu) error {
	return m.putJSON(ctx, kv.KeyMenuHistory, records)
}

func (m *Manager) loadQueue(ctx context.Context) ([]menu.PendingUpload, error) {
	var queue []menu.PendingUpload
	err := m.getJSON(ctx, kv.KeyPendingUploads, &queue)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	return queue, err
}

func (m *Manager) writeQueue(ctx context.Context, queue []menu.PendingUpload) error {
	return m.putJSON(ctx, kv.KeyPendingUploads, queue)
}

func (m *Manager) getJSON(ctx context.Context, key string, out any) error {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// putJSON is the single write path. A marshal failure is logged and the
// write abandoned; the previously stored value stays intact.
func (m *Manager) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("STORE_MARSHAL_FAILED key=%s err=%v", key, err)
		return err
	}
	return m.store.Put(ctx, key, raw)
}
