// Package uploadsync drains the offline pending-upload queue once
// connectivity returns, one record per tick.
package uploadsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"menureader/internal/history"
)

// Uploader transmits one serialized record. Satisfied by storage.R2Client.
type Uploader interface {
	UploadJSON(ctx context.Context, key string, data []byte) (string, error)
}

type Service struct {
	hist     *history.Manager
	uploader Uploader
}

func NewService(hist *history.Manager, uploader Uploader) *Service {
	return &Service{hist: hist, uploader: uploader}
}

// ProcessOne transmits the oldest pending record and dequeues it.
// An empty queue is NOT an error; a failed transmission leaves the entry
// queued for the next tick and never blocks the worker.
func (s *Service) ProcessOne(ctx context.Context) error {
	queue, err := s.hist.PendingUploads(ctx)
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		return nil
	}

	entry := queue[0]

	data, err := json.Marshal(entry.Record)
	if err != nil {
		// Unserializable entries can never transmit; drop them.
		log.Printf("SYNC_DROPPED id=%s err=%v", entry.Record.ID, err)
		return s.hist.DequeuePending(ctx, entry.Record.ID)
	}

	key := fmt.Sprintf("scans/%s.json", entry.Record.ID)
	url, err := s.uploader.UploadJSON(ctx, key, data)
	if err != nil {
		log.Printf("SYNC_FAILED id=%s err=%v", entry.Record.ID, err)
		return nil
	}

	log.Printf("SYNC_DONE id=%s url=%s", entry.Record.ID, url)
	return s.hist.DequeuePending(ctx, entry.Record.ID)
}
