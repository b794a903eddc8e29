package jobs

import (
	"sync"
	"time"
)

// JobStats is a point-in-time snapshot of one job's counters.
type JobStats struct {
	Runs     int        `json:"runs"`
	Failures int        `json:"failures"`
	LastRun  *time.Time `json:"last_run,omitempty"`
}

// Metrics tracks per-job run totals. Safe for concurrent use by job
// goroutines and the status endpoint.
type Metrics struct {
	mu    sync.Mutex
	stats map[string]*JobStats
}

func NewMetrics() *Metrics {
	return &Metrics{stats: map[string]*JobStats{}}
}

func (m *Metrics) RecordSuccess(job string) {
	m.record(job, false)
}

func (m *Metrics) RecordFailure(job string) {
	m.record(job, true)
}

func (m *Metrics) record(job string, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[job]
	if !ok {
		s = &JobStats{}
		m.stats[job] = s
	}
	s.Runs++
	if failed {
		s.Failures++
	}
	now := time.Now()
	s.LastRun = &now
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() map[string]JobStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]JobStats, len(m.stats))
	for job, s := range m.stats {
		out[job] = *s
	}
	return out
}
