package playback

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/sim-replay-client/internal/clock"
	"github.com/DoyleJ11/sim-replay-client/internal/dispatch"
	"github.com/DoyleJ11/sim-replay-client/internal/store"
	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

// Scheduler advances the virtual clock each tick and dispatches every
// stored packet whose timestamp falls inside the traversed interval,
// forward or backward depending on the speed sign.
type Scheduler struct {
	log   *zap.Logger
	clock *clock.Clock
	store *store.Store
	undo  *UndoRegistry
	disp  *dispatch.Dispatcher
}

func NewScheduler(log *zap.Logger, c *clock.Clock, st *store.Store, u *UndoRegistry, d *dispatch.Dispatcher) *Scheduler {
	return &Scheduler{log: log, clock: c, store: st, undo: u, disp: d}
}

// Tick runs one scheduling step. Both the bucket for the new virtual
// time and the one for the previous virtual time are consulted, since
// the 1s bucket width does not align with per-tick deltas. A single
// tick spanning more than two buckets (very high speed) under-samples;
// that fidelity bound is accepted rather than widening the scan.
func (s *Scheduler) Tick(dtMS int64) {
	from, to := s.clock.Advance(dtMS)
	speed := s.clock.Speed()
	if speed == 0 {
		return
	}

	lo, hi := from, to
	if speed < 0 {
		lo, hi = to, from
	}

	if hi/1000-lo/1000 > 1 {
		s.log.Debug("tick spans more than two buckets, sampling endpoints only",
			zap.Int64("from", from), zap.Int64("to", to))
	}

	candidates := s.store.BucketFor(lo)
	if lo/1000 != hi/1000 {
		candidates = append(candidates[:len(candidates):len(candidates)], s.store.BucketFor(hi)...)
	}

	if speed > 0 {
		for _, p := range candidates {
			// forward: previous < ts <= current
			if p.Timestamp > from && p.Timestamp <= to {
				_ = s.disp.Dispatch(p)
			}
		}
		return
	}

	for i := len(candidates) - 1; i >= 0; i-- {
		p := candidates[i]
		// reverse: current <= ts < previous
		if p.Timestamp < from && p.Timestamp >= to {
			s.dispatchReversed(p)
		}
	}
}

func (s *Scheduler) dispatchReversed(p types.Packet) {
	u := s.undo.Invert(p)
	switch u.Action {
	case UndoSuppress:
	case UndoReplace:
		_ = s.disp.Dispatch(u.Replacement)
	default:
		_ = s.disp.Dispatch(p)
	}
}
