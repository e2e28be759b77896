package indexer

import (
	"sync"
	"time"
)

// Status is a point-in-time view of the current or most recent run.
type Status struct {
	RunID      string    `json:"run_id,omitempty"`
	Phase      Phase     `json:"phase"`
	Total      int       `json:"total"`
	Attempted  int       `json:"attempted"`
	Indexed    int       `json:"indexed"`
	Failed     int       `json:"failed"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastResult *Result   `json:"last_result,omitempty"`
}

// Tracker is an Observer that keeps the latest Status for readers on other goroutines.
type Tracker struct {
	mu     sync.RWMutex
	status Status
	now    func() time.Time
}

// NewTracker returns an idle Tracker.
func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.status.UpdatedAt = t.now().UTC()
	return t
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.status
	if s.LastResult != nil {
		res := *s.LastResult
		s.LastResult = &res
	}
	return s
}

// Running reports whether a run is in progress.
func (t *Tracker) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status.Phase != "" && t.status.Phase != PhaseDone
}

// PhaseChanged implements Observer.
func (t *Tracker) PhaseChanged(runID string, phase Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if phase == PhaseStart {
		last := t.status.LastResult
		t.status = Status{LastResult: last}
	}
	t.status.RunID = runID
	t.status.Phase = phase
	t.status.UpdatedAt = t.now().UTC()
}

// BatchStarted implements Observer.
func (t *Tracker) BatchStarted(_ string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Total = total
	t.status.UpdatedAt = t.now().UTC()
}

// Submitted implements Observer.
func (t *Tracker) Submitted(_ string, _ string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Attempted++
	if err != nil {
		t.status.Failed++
	} else {
		t.status.Indexed++
	}
	t.status.UpdatedAt = t.now().UTC()
}

// Finished implements Observer.
func (t *Tracker) Finished(res Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.LastResult = &res
	t.status.UpdatedAt = t.now().UTC()
}
