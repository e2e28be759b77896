package indexer

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerFollowsRun(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	assert.False(t, tr.Running())

	tr.PhaseChanged("r1", PhaseStart)
	tr.PhaseChanged("r1", PhaseSubmitting)
	tr.BatchStarted("r1", 3)
	tr.Submitted("r1", "u1", nil)
	tr.Submitted("r1", "u2", errors.New("boom"))
	assert.True(t, tr.Running())

	snap := tr.Snapshot()
	assert.Equal(t, "r1", snap.RunID)
	assert.Equal(t, PhaseSubmitting, snap.Phase)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 2, snap.Attempted)
	assert.Equal(t, 1, snap.Indexed)
	assert.Equal(t, 1, snap.Failed)
	assert.Nil(t, snap.LastResult)

	tr.Finished(Result{RunID: "r1", Indexed: []string{"u1"}, Failed: []string{"u2"}})
	tr.PhaseChanged("r1", PhaseDone)
	assert.False(t, tr.Running())

	snap = tr.Snapshot()
	require.NotNil(t, snap.LastResult)
	assert.Equal(t, "r1", snap.LastResult.RunID)

	// A new run resets counters but keeps the previous result.
	tr.PhaseChanged("r2", PhaseStart)
	snap = tr.Snapshot()
	assert.Equal(t, "r2", snap.RunID)
	assert.Zero(t, snap.Attempted)
	require.NotNil(t, snap.LastResult)
	assert.Equal(t, "r1", snap.LastResult.RunID)
}

func TestTrackerConcurrentAccess(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.Submitted("r", "u", nil)
		}()
		go func() {
			defer wg.Done()
			_ = tr.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, tr.Snapshot().Attempted)
}

func TestObserversFanOut(t *testing.T) {
	t.Parallel()

	a, b := &phaseRecorder{}, &phaseRecorder{}
	obs := Observers(a, nil, b)
	obs.PhaseChanged("r", PhaseCrawling)
	obs.BatchStarted("r", 1)
	obs.Submitted("r", "u", nil)
	obs.Finished(Result{})

	assert.Equal(t, []Phase{PhaseCrawling}, a.phases)
	assert.Equal(t, []Phase{PhaseCrawling}, b.phases)
}
