// Package metrics provides business metric collection for the service.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds atomic counters for ingestion and chat activity.
type Metrics struct {
	// ingestion
	documentsIngested uint64
	chunksIngested    uint64
	ingestErrors      uint64

	// chat
	chatsTotal      uint64
	chatsDegraded   uint64
	chatsErrors     uint64
	chatsCacheHits  uint64
	chatsCacheMisses uint64

	// external calls
	searchTotal        uint64
	searchErrors       uint64
	completionTotal    uint64
	completionErrors   uint64
	completionDuration float64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	global *Metrics
	once   sync.Once
)

// Get returns the global metrics instance.
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{startTime: time.Now()}
	})
	return global
}

// RecordIngest records one ingestion attempt.
func (m *Metrics) RecordIngest(chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.ingestErrors, 1)
		return
	}
	atomic.AddUint64(&m.documentsIngested, 1)
	atomic.AddUint64(&m.chunksIngested, uint64(chunks))
}

// RecordChat records one chat turn.
func (m *Metrics) RecordChat(degraded bool, err error) {
	atomic.AddUint64(&m.chatsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.chatsErrors, 1)
		return
	}
	if degraded {
		atomic.AddUint64(&m.chatsDegraded, 1)
	}
}

// RecordCache records a cache lookup outcome.
func (m *Metrics) RecordCache(hit bool) {
	if hit {
		atomic.AddUint64(&m.chatsCacheHits, 1)
	} else {
		atomic.AddUint64(&m.chatsCacheMisses, 1)
	}
}

// RecordSearch records one similarity search call.
func (m *Metrics) RecordSearch(err error) {
	atomic.AddUint64(&m.searchTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.searchErrors, 1)
	}
}

// RecordCompletion records one completion call.
func (m *Metrics) RecordCompletion(duration time.Duration, err error) {
	atomic.AddUint64(&m.completionTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.completionErrors, 1)
		return
	}
	m.durationMu.Lock()
	m.completionDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// Stats returns a snapshot for the stats endpoint.
func (m *Metrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	completionDuration := m.completionDuration
	m.durationMu.Unlock()

	cacheHits := atomic.LoadUint64(&m.chatsCacheHits)
	cacheMisses := atomic.LoadUint64(&m.chatsCacheMisses)
	cacheTotal := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if cacheTotal > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheTotal)
	}

	completionTotal := atomic.LoadUint64(&m.completionTotal)
	avgCompletion := 0.0
	if completionTotal > 0 {
		avgCompletion = completionDuration / float64(completionTotal)
	}

	return map[string]interface{}{
		"ingestion": map[string]interface{}{
			"documents": atomic.LoadUint64(&m.documentsIngested),
			"chunks":    atomic.LoadUint64(&m.chunksIngested),
			"errors":    atomic.LoadUint64(&m.ingestErrors),
		},
		"chat": map[string]interface{}{
			"total":          atomic.LoadUint64(&m.chatsTotal),
			"degraded":       atomic.LoadUint64(&m.chatsDegraded),
			"errors":         atomic.LoadUint64(&m.chatsErrors),
			"cache_hits":     cacheHits,
			"cache_misses":   cacheMisses,
			"cache_hit_rate": cacheHitRate,
		},
		"search": map[string]interface{}{
			"total":  atomic.LoadUint64(&m.searchTotal),
			"errors": atomic.LoadUint64(&m.searchErrors),
		},
		"completion": map[string]interface{}{
			"total":               completionTotal,
			"errors":              atomic.LoadUint64(&m.completionErrors),
			"total_duration_secs": completionDuration,
			"avg_duration_secs":   avgCompletion,
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset clears all counters. Only used by tests.
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.documentsIngested, 0)
	atomic.StoreUint64(&m.chunksIngested, 0)
	atomic.StoreUint64(&m.ingestErrors, 0)
	atomic.StoreUint64(&m.chatsTotal, 0)
	atomic.StoreUint64(&m.chatsDegraded, 0)
	atomic.StoreUint64(&m.chatsErrors, 0)
	atomic.StoreUint64(&m.chatsCacheHits, 0)
	atomic.StoreUint64(&m.chatsCacheMisses, 0)
	atomic.StoreUint64(&m.searchTotal, 0)
	atomic.StoreUint64(&m.searchErrors, 0)
	atomic.StoreUint64(&m.completionTotal, 0)
	atomic.StoreUint64(&m.completionErrors, 0)

	m.durationMu.Lock()
	m.completionDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
