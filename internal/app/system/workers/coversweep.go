// internal/app/system/workers/coversweep.go
package workers

import (
	"context"
	"sync"
	"time"

	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	"github.com/dalemusser/comicshelf/internal/app/system/imagestore"
	"go.uber.org/zap"
)

// CoverSweep is a background worker that deletes uploaded cover images no
// book references. Uploads whose request failed after the file was written
// normally clean up after themselves; this catches the ones that did not
// (crashes, timeouts during cleanup).
type CoverSweep struct {
	books    *bookstore.Store
	images   *imagestore.Store
	log      *zap.Logger
	interval time.Duration
	grace    time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup

	// now is the clock used to apply the grace period.
	now func() time.Time
}

// NewCoverSweep creates a sweep worker.
//
// Parameters:
//   - books: source of the image URLs in use
//   - images: the upload directory
//   - interval: how often to sweep (e.g., 1 hour)
//   - grace: minimum file age before it may be removed, so uploads belonging
//     to an in-flight request are left alone
func NewCoverSweep(books *bookstore.Store, images *imagestore.Store, logger *zap.Logger, interval, grace time.Duration) *CoverSweep {
	return &CoverSweep{
		books:    books,
		images:   images,
		log:      logger,
		interval: interval,
		grace:    grace,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the background sweep loop.
func (w *CoverSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("cover sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("grace", w.grace))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *CoverSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("cover sweep worker stopped")
}

func (w *CoverSweep) run() {
	defer w.wg.Done()

	// Run once immediately on start
	w.sweepOnce()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweepOnce()
		}
	}
}

func (w *CoverSweep) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := w.Sweep(ctx); err != nil {
		w.log.Error("cover sweep failed", zap.Error(err))
	}
}

// Sweep runs one pass and returns the number of files removed.
func (w *CoverSweep) Sweep(ctx context.Context) (int, error) {
	files, err := w.images.Files()
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}

	used, err := w.books.Distinct(ctx, "image", nil)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]struct{}, len(used))
	for _, u := range used {
		inUse[u] = struct{}{}
	}

	cutoff := w.now().Add(-w.grace)
	removed := 0
	for _, f := range files {
		if _, ok := inUse[f.URL]; ok || f.ModTime.After(cutoff) {
			continue
		}
		w.images.Remove(f.Path)
		removed++
	}

	if removed > 0 {
		w.log.Info("removed orphaned cover images", zap.Int("count", removed))
	}
	return removed, nil
}
