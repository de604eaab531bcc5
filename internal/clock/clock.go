package clock

// SpeedTable is the fixed set of playback multipliers. Negative runs
// the timeline backward, the zero entry is pause, >1 fast-forwards.
var SpeedTable = []float64{-8, -4, -2, -1, 0, 1, 2, 4, 8}

const (
	pauseIndex  = 4 // SpeedTable[pauseIndex] == 0
	normalIndex = 5 // SpeedTable[normalIndex] == 1

	// maxTickMS absorbs scheduling jitter: a real-time delta above it
	// is replaced with a nominal frame instead of a huge jump.
	maxTickMS     int64 = 1000
	nominalTickMS int64 = 33
)

// Clock is the scheduler's virtual clock. Mutated only by the playback
// scheduler, once per tick.
type Clock struct {
	VirtualTime         int64
	PreviousVirtualTime int64
	IsReplay            bool

	speedIndex  int
	resumeIndex int
}

// New starts paused; Play moves to 1x unless a speed was chosen before
// pausing.
func New(replay bool) *Clock {
	return &Clock{
		IsReplay:    replay,
		speedIndex:  pauseIndex,
		resumeIndex: normalIndex,
	}
}

func (c *Clock) Speed() float64  { return SpeedTable[c.speedIndex] }
func (c *Clock) SpeedIndex() int { return c.speedIndex }
func (c *Clock) Paused() bool    { return c.speedIndex == pauseIndex }

// StepUp moves one entry toward the fastest forward speed, clamped.
func (c *Clock) StepUp() {
	if c.speedIndex < len(SpeedTable)-1 {
		c.speedIndex++
	}
}

// StepDown moves one entry toward the fastest reverse speed, clamped.
func (c *Clock) StepDown() {
	if c.speedIndex > 0 {
		c.speedIndex--
	}
}

// Pause remembers the current speed so Play can restore it.
func (c *Clock) Pause() {
	if c.speedIndex != pauseIndex {
		c.resumeIndex = c.speedIndex
		c.speedIndex = pauseIndex
	}
}

func (c *Clock) Play() {
	if c.speedIndex == pauseIndex {
		c.speedIndex = c.resumeIndex
	}
}

// Advance records the previous virtual time and moves the clock by
// dt*speed. Returns the traversed interval endpoints (from, to).
func (c *Clock) Advance(dtMS int64) (from, to int64) {
	if dtMS > maxTickMS {
		dtMS = nominalTickMS
	}
	c.PreviousVirtualTime = c.VirtualTime
	c.VirtualTime += int64(float64(dtMS) * c.Speed())
	return c.PreviousVirtualTime, c.VirtualTime
}
