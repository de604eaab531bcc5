package protocol

// Tracker counts replay chunks as they arrive. It lives on the session
// goroutine, so no locking. Completion is the session's call to make
// (it compares Received against Expected); the tracker only counts and
// reports progress.
type Tracker struct {
	expected   int
	received   int
	onProgress func(float64)
}

func NewTracker(expected int, onProgress func(float64)) *Tracker {
	return &Tracker{expected: expected, onProgress: onProgress}
}

// Mark records one received chunk and returns its index among chunks
// received so far (the index synthetic timestamps key off).
func (t *Tracker) Mark() int {
	idx := t.received
	t.received++
	t.report()
	return idx
}

// SetExpected records the announced chunk total. Chunks counted before
// the announcement keep their indexes; progress is re-reported against
// the new denominator.
func (t *Tracker) SetExpected(n int) {
	t.expected = n
	t.report()
}

func (t *Tracker) report() {
	if t.onProgress != nil && t.expected > 0 {
		t.onProgress(float64(t.received) / float64(t.expected))
	}
}

func (t *Tracker) Received() int { return t.received }
func (t *Tracker) Expected() int { return t.expected }

// Progress is received/expected, in [0,1] once everything arrived.
func (t *Tracker) Progress() float64 {
	if t.expected == 0 {
		return 0
	}
	return float64(t.received) / float64(t.expected)
}
