package hub

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/DoyleJ11/sim-replay-client/internal/protocol"
	"github.com/DoyleJ11/sim-replay-client/internal/session"
	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

type HubMsg interface{ isHubMsg() }

// Subscribe switches the client to a live session. The previous
// session (if any) is torn down before the new one sees any traffic.
type Subscribe struct {
	SessionID string
	Reply     chan *session.Session
}

// BeginReplay switches to a recorded session. If the archive has the
// session's chunks they are re-fed locally; otherwise the request goes
// upstream.
type BeginReplay struct {
	SessionID string
	Reply     chan *session.Session
}

// Frame is a raw inbound websocket frame, routed to the active session.
type Frame struct {
	Binary bool
	Data   []byte
}

// Tick fans the frame cadence into the active session.
type Tick struct{ DT int64 }

// Control forwards a playback control message to the active session.
type Control struct{ Msg session.Msg }

// ActiveSession answers with the current session, possibly nil.
type ActiveSession struct {
	Reply chan *session.Session
}

type ShutdownHub struct{}

func (Subscribe) isHubMsg()     {}
func (BeginReplay) isHubMsg()   {}
func (Frame) isHubMsg()         {}
func (Tick) isHubMsg()          {}
func (Control) isHubMsg()       {}
func (ActiveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// CommandSender writes outbound commands to the server. The websocket
// client implements it.
type CommandSender interface {
	Send(cmd types.ClientCommand) error
}

// Archive persists received replay chunks and serves them back for
// offline re-play. Nil disables persistence entirely.
type Archive interface {
	SaveChunk(sessionID string, index int, frame []byte) error
	Chunks(sessionID string) ([][]byte, error)
}

// Hub owns the single active session and the switch protocol between
// sessions. Like every other actor here, all state lives on one loop.
type Hub struct {
	inbox   chan HubMsg
	log     *zap.Logger
	sender  CommandSender
	archive Archive

	active   *session.Session
	identity []byte // stashed assign-id frame, replayed into new sessions
	chunkSeq int

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger, sender CommandSender, archive Archive) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		log:     log,
		sender:  sender,
		archive: archive,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				s := h.switchTo(msg.SessionID, false)
				h.send(types.ClientCommand{Type: "subscribe", SessionID: msg.SessionID})
				msg.Reply <- s

			case BeginReplay:
				msg.Reply <- h.beginReplay(msg.SessionID)

			case Frame:
				h.routeFrame(msg)

			case Tick:
				if h.active != nil {
					h.active.Inbox() <- session.Tick{DT: msg.DT}
				}

			case Control:
				if h.active != nil {
					h.active.Inbox() <- msg.Msg
				}

			case ActiveSession:
				msg.Reply <- h.active

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// switchTo tears the current session down and starts the next one. The
// stashed identity frame is replayed so the new session registers its
// avatar handler before any rpc traffic.
func (h *Hub) switchTo(id string, replay bool) *session.Session {
	if h.active != nil {
		h.active.Inbox() <- session.Shutdown{}
	}
	h.chunkSeq = 0
	h.active = session.New(h.ctx, h.log, id, replay)
	if h.identity != nil {
		h.active.Inbox() <- session.Frame{Data: h.identity}
	}
	h.log.Info("session switched", zap.String("session", id), zap.Bool("replay", replay))
	return h.active
}

func (h *Hub) beginReplay(id string) *session.Session {
	s := h.switchTo(id, true)

	if h.archive != nil {
		chunks, err := h.archive.Chunks(id)
		if err == nil && len(chunks) > 0 {
			h.log.Info("replaying from local archive",
				zap.String("session", id), zap.Int("chunks", len(chunks)))
			info, _ := json.Marshal(types.ServerMessage{Type: "replay-info", Chunks: len(chunks)})
			s.Inbox() <- session.Frame{Data: info}
			for _, chunk := range chunks {
				s.Inbox() <- session.Frame{Binary: true, Data: chunk}
			}
			return s
		}
	}

	h.send(types.ClientCommand{Type: "begin-replay", SessionID: id})
	return s
}

func (h *Hub) routeFrame(f Frame) {
	if h.active == nil {
		// Identity assignment is the only frame worth keeping before the
		// first subscribe. Anything else is dropped, not stashed.
		if f.Binary {
			return
		}
		if msg, err := protocol.DecodeText(f.Data); err == nil && msg.Type == "assign-id" {
			h.identity = f.Data
		}
		return
	}

	if f.Binary && protocol.IsChunk(f.Data) && h.archive != nil {
		if err := h.archive.SaveChunk(h.active.ID(), h.chunkSeq, f.Data); err != nil {
			h.log.Warn("archive write failed", zap.Error(err))
		}
		h.chunkSeq++
	}

	h.active.Inbox() <- session.Frame{Binary: f.Binary, Data: f.Data}
}

func (h *Hub) send(cmd types.ClientCommand) {
	if h.sender == nil {
		return
	}
	if err := h.sender.Send(cmd); err != nil {
		h.log.Warn("outbound command failed", zap.String("type", cmd.Type), zap.Error(err))
	}
}

func (h *Hub) shutdown() {
	if h.active != nil {
		h.active.Inbox() <- session.Shutdown{}
		h.active = nil
	}
	h.cancel()
}
