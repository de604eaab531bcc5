package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StepClampsToTableBounds(t *testing.T) {
	c := New(true)

	for i := 0; i < len(SpeedTable)*3; i++ {
		c.StepUp()
	}
	assert.Equal(t, len(SpeedTable)-1, c.SpeedIndex())
	assert.Equal(t, SpeedTable[len(SpeedTable)-1], c.Speed())

	for i := 0; i < len(SpeedTable)*3; i++ {
		c.StepDown()
	}
	assert.Equal(t, 0, c.SpeedIndex())
	assert.Equal(t, SpeedTable[0], c.Speed())
}

func TestClock_PausePlayRestoresSpeed(t *testing.T) {
	c := New(true)
	assert.True(t, c.Paused(), "clock starts paused")

	c.Play()
	assert.Equal(t, 1.0, c.Speed(), "play from initial pause runs at 1x")

	c.StepUp() // 2x
	c.Pause()
	assert.True(t, c.Paused())
	c.Play()
	assert.Equal(t, 2.0, c.Speed(), "play restores the pre-pause speed")

	// Pausing while paused must not clobber the resume speed.
	c.Pause()
	c.Pause()
	c.Play()
	assert.Equal(t, 2.0, c.Speed())
}

func TestClock_AdvanceRecordsPrevious(t *testing.T) {
	c := New(true)
	c.Play()

	from, to := c.Advance(100)
	assert.Equal(t, int64(0), from)
	assert.Equal(t, int64(100), to)

	from, to = c.Advance(250)
	assert.Equal(t, int64(100), from, "previous always equals the prior tick's virtual time")
	assert.Equal(t, int64(350), to)
	assert.Equal(t, c.PreviousVirtualTime, from)
	assert.Equal(t, c.VirtualTime, to)
}

func TestClock_AdvanceReverse(t *testing.T) {
	c := New(true)
	c.VirtualTime = 1000
	c.Play()
	c.StepDown() // 0 (pause)
	c.StepDown() // -1

	from, to := c.Advance(200)
	assert.Equal(t, int64(1000), from)
	assert.Equal(t, int64(800), to)
}

func TestClock_JitterClamp(t *testing.T) {
	c := New(true)
	c.Play()

	// A delta above 1000ms is replaced with a nominal frame, not applied.
	_, to := c.Advance(5000)
	assert.Equal(t, nominalTickMS, to)

	// Exactly the threshold passes through.
	c = New(true)
	c.Play()
	_, to = c.Advance(1000)
	assert.Equal(t, int64(1000), to)
}

func TestClock_PausedAdvanceHoldsStill(t *testing.T) {
	c := New(true)
	c.VirtualTime = 400

	from, to := c.Advance(100)
	assert.Equal(t, int64(400), from)
	assert.Equal(t, int64(400), to)
}
