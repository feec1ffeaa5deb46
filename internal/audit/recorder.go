// Package audit records service history entries without blocking the
// request path. Writes happen on background goroutines after the caller's
// transaction has committed; a failed write is logged and dropped, never
// surfaced to the client.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// Recorder fans history writes out to background goroutines.
type Recorder struct {
	history *repository.HistoryRepo
	wg      sync.WaitGroup
	timeout time.Duration
}

// NewRecorder creates a Recorder writing through the given history repo.
func NewRecorder(history *repository.HistoryRepo) *Recorder {
	return &Recorder{history: history, timeout: 5 * time.Second}
}

// Record writes the entry asynchronously. The caller's context is not used:
// the write must proceed even after the HTTP request finishes.
func (r *Recorder) Record(e repository.HistoryEntry) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.history.Insert(ctx, e); err != nil {
			log.Printf("audit: record %s for service %d failed: %v", e.Action, e.ServiceID, err)
		}
	}()
}

// Wait blocks until all in-flight writes finish. Used on shutdown and in
// tests.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
