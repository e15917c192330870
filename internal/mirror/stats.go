package mirror

import (
	"sync"
	"time"
)

type Counts struct {
	Succeeded int `json:"succeeded"`
	Accepted  int `json:"accepted"`
	Failed    int `json:"failed"`
}

func (c *Counts) add(o Outcome) {
	switch o {
	case OutcomeSuccess:
		c.Succeeded++
	case OutcomeAccepted:
		c.Accepted++
	default:
		c.Failed++
	}
}

type BatchReport struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Changes   int           `json:"changes"`
	Skipped   int           `json:"skipped"`
	Counts
}

type ReconcileReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	ListFailed bool          `json:"listFailed"`
	ScanFailed bool          `json:"scanFailed"`
	Deletes    Counts        `json:"deletes"`
	Uploads    Counts        `json:"uploads"`
}

// SyncStats keeps the latest reports and running totals.
type SyncStats struct {
	mu        sync.RWMutex
	batches   int
	totals    Counts
	lastBatch *BatchReport
	reconcile *ReconcileReport
}

type StatsSnapshot struct {
	Batches   int              `json:"batches"`
	Totals    Counts           `json:"totals"`
	LastBatch *BatchReport     `json:"lastBatch,omitempty"`
	Reconcile *ReconcileReport `json:"reconcile,omitempty"`
}

func (s *SyncStats) setBatch(r *BatchReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
	s.totals.Succeeded += r.Succeeded
	s.totals.Accepted += r.Accepted
	s.totals.Failed += r.Failed
	s.lastBatch = r
}

func (s *SyncStats) setReconcile(r *ReconcileReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcile = r
}

func (s *SyncStats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := StatsSnapshot{Batches: s.batches, Totals: s.totals}
	if s.lastBatch != nil {
		b := *s.lastBatch
		out.LastBatch = &b
	}
	if s.reconcile != nil {
		r := *s.reconcile
		out.Reconcile = &r
	}
	return out
}
