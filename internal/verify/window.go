package verify

import "time"

// NewWindow creates a rolling recency window of the given length,
// ending at the moment of each Admits call.
func NewWindow(hours int) Window {
	return Window{
		Hours: hours,
		now:   time.Now,
	}
}

// Window admits or rejects a candidate message by recency. Stale
// evidence must not corroborate a fresh claim.
type Window struct {
	Hours int

	now func() time.Time
}

// WithNow overrides the clock. Intended for tests.
func (w Window) WithNow(now func() time.Time) Window {
	w.now = now
	return w
}

// Admits reports whether a message timestamp (milliseconds since
// epoch, UTC) falls inside the window. The boundary instant itself is
// admitted.
func (w Window) Admits(internalDateMs int64) bool {
	ts := time.UnixMilli(internalDateMs).UTC()
	cutoff := w.now().UTC().Add(-time.Duration(w.Hours) * time.Hour)
	return !ts.Before(cutoff)
}
