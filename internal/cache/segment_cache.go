// Package cache holds fetched segment payloads keyed by descriptor ID,
// evicting anything no session still considers active.
package cache

import (
	"context"
	"sync"
	"time"

	"streamplane/internal/logger"
)

// ActiveSegmentsProvider returns the set of segment IDs that must survive
// eviction.
type ActiveSegmentsProvider func() map[string]struct{}

// SegmentCache is a thread-safe in-memory payload cache.
type SegmentCache struct {
	mutex    sync.RWMutex
	payloads map[string][]byte
	logger   logger.Logger
	provider ActiveSegmentsProvider

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a cache whose eviction decisions are driven by provider.
func New(log logger.Logger, provider ActiveSegmentsProvider) *SegmentCache {
	ctx, cancel := context.WithCancel(context.Background())
	return &SegmentCache{
		payloads: make(map[string][]byte),
		logger:   log,
		provider: provider,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the background eviction worker.
func (sc *SegmentCache) Start() {
	go sc.evictionWorker()
}

// Stop shuts down the eviction worker.
func (sc *SegmentCache) Stop() {
	sc.cancel()
}

// Set stores a segment payload.
func (sc *SegmentCache) Set(id string, data []byte) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	sc.payloads[id] = data
	sc.logger.Debugf("Cached segment %s, size: %d bytes", id, len(data))
}

// Get retrieves a segment payload.
func (sc *SegmentCache) Get(id string) ([]byte, bool) {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	data, found := sc.payloads[id]
	return data, found
}

// Len returns the number of cached payloads.
func (sc *SegmentCache) Len() int {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return len(sc.payloads)
}

// Flush runs one eviction pass synchronously and returns the number of
// evicted payloads. The background worker calls this on a timer; tests
// call it directly.
func (sc *SegmentCache) Flush() int {
	active := sc.provider()

	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	evicted := 0
	for id := range sc.payloads {
		if _, isActive := active[id]; !isActive {
			delete(sc.payloads, id)
			evicted++
		}
	}
	if evicted > 0 {
		sc.logger.Infof("Evicted %d segments, %d remain cached", evicted, len(sc.payloads))
	}
	return evicted
}

func (sc *SegmentCache) evictionWorker() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sc.ctx.Done():
			return
		case <-ticker.C:
			sc.Flush()
		}
	}
}
