// Package progress tracks per-run counters for entries visited, plan
// items emitted, and outcomes recorded.
package progress

import (
	"sync"
	"time"
)

// Update is a snapshot of the run counters
type Update struct {
	Entries   int
	Plans     int
	Succeeded int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Callback receives counter updates
type Callback func(update Update)

// Tracker accumulates run counters and reports them through an optional
// callback. The callback runs outside the lock, so it may call back into
// the tracker.
type Tracker struct {
	mu        sync.Mutex
	callback  Callback
	startTime time.Time
	entries   int
	plans     int
	succeeded int
	skipped   int
	failed    int
}

// NewTracker creates a tracker; callback may be nil
func NewTracker(callback Callback) *Tracker {
	return &Tracker{
		callback:  callback,
		startTime: time.Now(),
	}
}

// AddEntry records one visited entry
func (t *Tracker) AddEntry() {
	t.mu.Lock()
	t.entries++
	update := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(update)
}

// AddPlans records emitted plan items
func (t *Tracker) AddPlans(count int) {
	t.mu.Lock()
	t.plans += count
	update := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(update)
}

// AddSucceeded records one successful outcome
func (t *Tracker) AddSucceeded() { t.addOutcome(&t.succeeded) }

// AddSkipped records one skipped outcome
func (t *Tracker) AddSkipped() { t.addOutcome(&t.skipped) }

// AddFailed records one failed outcome
func (t *Tracker) AddFailed() { t.addOutcome(&t.failed) }

func (t *Tracker) addOutcome(counter *int) {
	t.mu.Lock()
	*counter++
	update := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(update)
}

// Snapshot returns the current counters
func (t *Tracker) Snapshot() Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Update {
	return Update{
		Entries:   t.entries,
		Plans:     t.plans,
		Succeeded: t.succeeded,
		Skipped:   t.skipped,
		Failed:    t.failed,
		Elapsed:   time.Since(t.startTime),
	}
}

func (t *Tracker) notify(update Update) {
	if t.callback != nil {
		t.callback(update)
	}
}
