package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/sim-replay-client/internal/clock"
	"github.com/DoyleJ11/sim-replay-client/internal/dispatch"
	"github.com/DoyleJ11/sim-replay-client/internal/entity"
	"github.com/DoyleJ11/sim-replay-client/internal/playback"
	"github.com/DoyleJ11/sim-replay-client/internal/protocol"
	"github.com/DoyleJ11/sim-replay-client/internal/render"
	"github.com/DoyleJ11/sim-replay-client/internal/store"
)

type Msg interface{ isSessionMsg() }

// Frame is one raw inbound websocket frame, text or binary.
type Frame struct {
	Binary bool
	Data   []byte
}

func (Frame) isSessionMsg() {}

// Tick drives one scheduler step with the measured real-time delta.
type Tick struct{ DT int64 }

func (Tick) isSessionMsg() {}

type SpeedUp struct{}
type SpeedDown struct{}
type Pause struct{}
type Play struct{}

func (SpeedUp) isSessionMsg()   {}
func (SpeedDown) isSessionMsg() {}
func (Pause) isSessionMsg()     {}
func (Play) isSessionMsg()      {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// GetView reflects internal state without data races; used by the
// control surface and tests.
type GetView struct {
	Reply chan View
}

func (GetView) isSessionMsg() {}

type View struct {
	SessionID     string  `json:"session_id"`
	ClientID      string  `json:"client_id,omitempty"`
	Replay        bool    `json:"replay"`
	VirtualTime   int64   `json:"virtual_time"`
	SpeedIndex    int     `json:"speed_index"`
	Speed         float64 `json:"speed"`
	Paused        bool    `json:"paused"`
	Entities      int     `json:"entities"`
	Trails        int     `json:"trails"`
	Chunks        int     `json:"chunks"`
	Progress      float64 `json:"progress"`
	ArenaTime     float64 `json:"arena_time"`
	StoredPackets int     `json:"stored_packets"`
}

// Session reconstructs one remote simulation, live or replayed. All
// state transitions happen on its single loop goroutine: frames and
// ticks are messages, never direct calls.
type Session struct {
	inbox chan Msg
	id    string
	log   *zap.Logger

	clock    *clock.Clock
	store    *store.Store
	disp     *dispatch.Dispatcher
	undo     *playback.UndoRegistry
	sched    *playback.Scheduler
	entities *entity.Registry
	trails   *render.TrailBook

	tracker   *protocol.Tracker
	complete  chan struct{}
	completed bool
	progress  float64

	clientID  string
	replay    bool
	arenaTime float64

	ctx    context.Context
	cancel context.CancelFunc
}

// trailLimit bounds each entity's position history held for the trail
// renderer.
const trailLimit = 256

func New(parent context.Context, log *zap.Logger, id string, replay bool) *Session {
	ctx, cancel := context.WithCancel(parent)

	c := clock.New(replay)
	st := store.New()
	d := dispatch.New(log)
	u := playback.NewUndoRegistry()
	trails := render.NewTrailBook(trailLimit)

	s := &Session{
		inbox:    make(chan Msg, 64),
		id:       id,
		log:      log.With(zap.String("session", id)),
		clock:    c,
		store:    st,
		disp:     d,
		undo:     u,
		sched:    playback.NewScheduler(log, c, st, u, d),
		entities: entity.NewRegistry(log, entity.DefaultRules(), trails),
		trails:   trails,
		complete: make(chan struct{}),
		replay:   replay,
		ctx:      ctx,
		cancel:   cancel,
	}

	// The world handler is a singleton, known before identity arrives.
	s.disp.Register("world", s.worldMethods())

	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) ID() string { return s.id }

// Complete closes once every expected replay chunk has arrived.
func (s *Session) Complete() <-chan struct{} { return s.complete }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.teardown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Frame:
				s.handleFrame(msg)

			case Tick:
				if s.replay {
					s.sched.Tick(msg.DT)
				}

			case SpeedUp:
				s.clock.StepUp()
			case SpeedDown:
				s.clock.StepDown()
			case Pause:
				s.clock.Pause()
			case Play:
				s.clock.Play()

			case GetView:
				msg.Reply <- s.view()

			case Shutdown:
				s.teardown()
				return
			}
		}
	}
}

// handleFrame is the single ingestion point. One corrupt frame never
// stops the stream: every decode failure is logged and absorbed.
func (s *Session) handleFrame(f Frame) {
	if f.Binary && protocol.IsChunk(f.Data) {
		s.handleChunk(f.Data)
		return
	}

	msg, err := protocol.DecodeText(f.Data)
	if err != nil {
		s.log.Warn("dropping malformed frame", zap.Error(err))
		return
	}

	switch msg.Type {
	case "assign-id":
		s.assignIdentity(msg.ID)

	case "replay-info":
		// The announcement may trail the first chunks; keep the counts
		// already marked and only install the denominator.
		if s.tracker == nil {
			s.tracker = s.newTracker(msg.Chunks)
		} else {
			s.tracker.SetExpected(msg.Chunks)
		}
		s.log.Info("replay announced", zap.Int("chunks", msg.Chunks))
		s.checkComplete()

	case "rpc":
		p, err := protocol.DecodeRPC(msg)
		if err != nil {
			s.log.Warn("dropping malformed rpc", zap.Error(err))
			return
		}
		if s.clientID == "" {
			s.log.Warn("rpc before identity assignment",
				zap.String("handler", p.HandlerID), zap.String("method", p.Method))
		}
		// Live path: straight to the dispatcher, no store, no clock.
		_ = s.disp.Dispatch(p)

	default:
		s.log.Warn("unknown control message", zap.String("type", msg.Type))
	}
}

func (s *Session) handleChunk(data []byte) {
	if s.tracker == nil {
		// Chunk before replay-info: count it anyway, the announcement
		// supplies the denominator when it arrives.
		s.log.Warn("replay chunk before announcement")
		s.tracker = s.newTracker(0)
	}

	idx := s.tracker.Mark()
	defer s.checkComplete()

	packets, err := protocol.DecodeChunk(data, idx)
	if err != nil {
		s.log.Warn("dropping corrupt replay chunk", zap.Int("chunk", idx), zap.Error(err))
		return
	}
	for _, p := range packets {
		s.store.Insert(p)
	}
}

func (s *Session) newTracker(expected int) *protocol.Tracker {
	return protocol.NewTracker(expected, func(ratio float64) {
		s.progress = ratio
	})
}

// checkComplete fires the completion signal exactly once, when the
// last expected chunk has been counted (even if that chunk itself was
// corrupt: progress is about transfer, not decode).
func (s *Session) checkComplete() {
	if !s.completed && s.tracker.Expected() > 0 && s.tracker.Received() >= s.tracker.Expected() {
		s.completed = true
		close(s.complete)
		s.log.Info("replay fully received",
			zap.Int("chunks", s.tracker.Received()),
			zap.Int("packets", s.store.Len()))
	}
}

// assignIdentity establishes local identity and registers the
// per-instance avatar handler (and its lifecycle inverses) under the
// assigned id.
func (s *Session) assignIdentity(id string) {
	if s.clientID != "" {
		s.log.Warn("duplicate identity assignment", zap.String("id", id))
		s.deregisterAvatar()
	}
	s.clientID = id
	s.disp.Register(id, s.avatarMethods())
	s.undo.RegisterInverse(id, "createEntity", s.invertCreate)
	s.undo.RegisterInverse(id, "destroyEntity", s.invertDestroy)
	s.log.Info("identity assigned", zap.String("id", id))
}

func (s *Session) deregisterAvatar() {
	if s.clientID == "" {
		return
	}
	s.disp.Deregister(s.clientID)
	s.undo.DeregisterHandler(s.clientID)
	s.clientID = ""
}

// teardown runs the session-switch contract: the per-instance handler
// goes first, then every live entity is torn down synchronously. No
// stale entity survives into the next session.
func (s *Session) teardown() {
	s.deregisterAvatar()
	s.entities.Reset()
	s.cancel()
}

func (s *Session) view() View {
	return View{
		SessionID:     s.id,
		ClientID:      s.clientID,
		Replay:        s.replay,
		VirtualTime:   s.clock.VirtualTime,
		SpeedIndex:    s.clock.SpeedIndex(),
		Speed:         s.clock.Speed(),
		Paused:        s.clock.Paused(),
		Entities:      s.entities.Count(),
		Trails:        s.trails.Len(),
		Chunks:        s.chunksReceived(),
		Progress:      s.progress,
		ArenaTime:     s.arenaTime,
		StoredPackets: s.store.Len(),
	}
}

func (s *Session) chunksReceived() int {
	if s.tracker == nil {
		return 0
	}
	return s.tracker.Received()
}

var errBadArgs = errors.New("bad argument list")
