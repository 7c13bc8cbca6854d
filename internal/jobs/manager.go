// Package jobs runs background index passes on a bounded worker pool.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/charliedev/reliquary/internal/indexer"
	"github.com/charliedev/reliquary/services"
)

// reindexTimeout bounds one background pass; a pass that cannot finish in
// this window is rolled back and retried on the next save.
const reindexTimeout = time.Minute

// Manager schedules reindex passes for saved elements. Delivery is
// at-least-once and fire-and-forget: a failed pass logs and relies on the
// next save of the same element to requeue its values.
type Manager struct {
	pool   *ants.Pool
	writer *indexer.Writer
}

var _ services.IndexScheduler = (*Manager)(nil)

// NewManager creates a manager running at most maxWorkers passes at once.
func NewManager(writer *indexer.Writer, maxWorkers int) (*Manager, error) {
	pool, err := ants.NewPool(maxWorkers)
	if err != nil {
		return nil, err
	}
	log.Printf("Index job manager started with %d max workers", maxWorkers)
	return &Manager{pool: pool, writer: writer}, nil
}

// Schedule queues a reindex pass for one element and site. Safe to call from
// save hooks; the pass itself runs on the pool.
func (m *Manager) Schedule(elementID, siteID int64) {
	err := m.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
		defer cancel()
		if err := m.writer.Reindex(ctx, elementID, siteID); err != nil {
			log.Printf("Reindex of element %d site %d failed: %v", elementID, siteID, err)
		}
	})
	if err != nil {
		log.Printf("Failed to schedule reindex of element %d site %d: %v", elementID, siteID, err)
	}
}

// Stop waits for running passes and releases the pool.
func (m *Manager) Stop() {
	m.pool.Release()
	log.Printf("Index job manager stopped")
}
