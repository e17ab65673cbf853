// Package metrics tracks per-run counters for the monitoring endpoint.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsCollected      int64
	DuplicatesSkipped   int64
	PostsPublished      int64
	GenerationRetries   int64
	GenerationFallbacks int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddItemsCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsCollected += int64(n)
}

func (m *Metrics) AddDuplicatesSkipped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped += int64(n)
}

func (m *Metrics) IncrementPostsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsPublished++
}

func (m *Metrics) IncrementGenerationRetries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerationRetries++
}

func (m *Metrics) IncrementGenerationFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerationFallbacks++
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"items_collected":      m.ItemsCollected,
		"duplicates_skipped":   m.DuplicatesSkipped,
		"posts_published":      m.PostsPublished,
		"generation_retries":   m.GenerationRetries,
		"generation_fallbacks": m.GenerationFallbacks,
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
