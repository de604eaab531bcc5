package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/sim-replay-client/internal/protocol"
	"github.com/DoyleJ11/sim-replay-client/internal/session"
	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

type fakeSender struct {
	cmds chan types.ClientCommand
}

func newFakeSender() *fakeSender {
	return &fakeSender{cmds: make(chan types.ClientCommand, 8)}
}

func (f *fakeSender) Send(cmd types.ClientCommand) error {
	f.cmds <- cmd
	return nil
}

type fakeArchive struct {
	mu     sync.Mutex
	chunks map[string][][]byte
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{chunks: make(map[string][][]byte)}
}

func (f *fakeArchive) SaveChunk(sessionID string, index int, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks[sessionID] = append(f.chunks[sessionID], frame)
	return nil
}

func (f *fakeArchive) Chunks(sessionID string) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chunks[sessionID], nil
}

func (f *fakeArchive) count(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks[sessionID])
}

func recvSession(t *testing.T, ch <-chan *session.Session) *session.Session {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for session")
		return nil // unreachable
	}
}

func recvCommand(t *testing.T, ch <-chan types.ClientCommand) types.ClientCommand {
	t.Helper()
	select {
	case cmd := <-ch:
		return cmd
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for command")
		return types.ClientCommand{} // unreachable
	}
}

func getView(t *testing.T, s *session.Session) session.View {
	t.Helper()
	reply := make(chan session.View, 1)
	s.Inbox() <- session.GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return session.View{} // unreachable
	}
}

func textFrame(t *testing.T, msg types.ServerMessage) Frame {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return Frame{Data: data}
}

func TestHub_SubscribeReplaysStashedIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newFakeSender()
	h := NewHub(ctx, zap.NewNop(), sender, nil)

	// Identity arrives on connect, before any subscription exists.
	h.Inbox() <- textFrame(t, types.ServerMessage{Type: "assign-id", ID: "av1"})

	reply := make(chan *session.Session, 1)
	h.Inbox() <- Subscribe{SessionID: "s1", Reply: reply}
	s := recvSession(t, reply)

	if cmd := recvCommand(t, sender.cmds); cmd.Type != "subscribe" || cmd.SessionID != "s1" {
		t.Fatalf("unexpected outbound command: %+v", cmd)
	}
	if v := getView(t, s); v.ClientID != "av1" {
		t.Fatalf("identity not replayed into new session: %q", v.ClientID)
	}
}

func TestHub_StrayFrameDoesNotClobberIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx, zap.NewNop(), newFakeSender(), nil)

	// Only assign-id is stashed: control frames and garbage arriving
	// before the first subscribe are dropped.
	h.Inbox() <- textFrame(t, types.ServerMessage{Type: "assign-id", ID: "av1"})
	h.Inbox() <- textFrame(t, types.ServerMessage{Type: "replay-info", Chunks: 3})
	h.Inbox() <- Frame{Data: []byte("not json")}

	reply := make(chan *session.Session, 1)
	h.Inbox() <- Subscribe{SessionID: "s1", Reply: reply}
	s := recvSession(t, reply)

	if v := getView(t, s); v.ClientID != "av1" {
		t.Fatalf("identity clobbered before subscribe: %q", v.ClientID)
	}
}

func TestHub_SubscribeSwitchesSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx, zap.NewNop(), newFakeSender(), nil)

	reply := make(chan *session.Session, 1)
	h.Inbox() <- Subscribe{SessionID: "s1", Reply: reply}
	first := recvSession(t, reply)

	h.Inbox() <- Subscribe{SessionID: "s2", Reply: reply}
	second := recvSession(t, reply)

	if first == second {
		t.Fatal("expected a fresh session after switch")
	}
	if v := getView(t, second); v.SessionID != "s2" {
		t.Fatalf("active session is %q, want s2", v.SessionID)
	}
}

func TestHub_BeginReplayFromArchive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frame, err := protocol.EncodeChunk([]types.RawPacket{
		{HandlerID: "av1", Method: "updatePosition", Args: []any{1, 0.0, 0.0, 0.0}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	archive := newFakeArchive()
	archive.chunks["rec1"] = [][]byte{frame, frame}

	sender := newFakeSender()
	h := NewHub(ctx, zap.NewNop(), sender, archive)

	reply := make(chan *session.Session, 1)
	h.Inbox() <- BeginReplay{SessionID: "rec1", Reply: reply}
	s := recvSession(t, reply)

	v := getView(t, s)
	if !v.Replay {
		t.Fatal("expected a replay session")
	}
	if v.StoredPackets != 2 {
		t.Fatalf("archived chunks not ingested: %d packets", v.StoredPackets)
	}
	if v.Progress != 1.0 {
		t.Fatalf("want progress 1.0, got %v", v.Progress)
	}

	// Fully served locally: nothing goes upstream.
	select {
	case cmd := <-sender.cmds:
		t.Fatalf("unexpected upstream command: %+v", cmd)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BeginReplayWithoutArchiveGoesUpstream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newFakeSender()
	h := NewHub(ctx, zap.NewNop(), sender, newFakeArchive())

	reply := make(chan *session.Session, 1)
	h.Inbox() <- BeginReplay{SessionID: "rec9", Reply: reply}
	recvSession(t, reply)

	if cmd := recvCommand(t, sender.cmds); cmd.Type != "begin-replay" || cmd.SessionID != "rec9" {
		t.Fatalf("unexpected outbound command: %+v", cmd)
	}
}

func TestHub_ArchivesIncomingChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archive := newFakeArchive()
	h := NewHub(ctx, zap.NewNop(), newFakeSender(), archive)

	reply := make(chan *session.Session, 1)
	h.Inbox() <- BeginReplay{SessionID: "rec1", Reply: reply}
	s := recvSession(t, reply)

	frame, err := protocol.EncodeChunk([]types.RawPacket{
		{HandlerID: "av1", Method: "updatePosition", Args: []any{1, 0.0, 0.0, 0.0}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	h.Inbox() <- Frame{Binary: true, Data: frame}

	// An ActiveSession round-trip orders us after the hub forwarded the
	// frame into the session inbox.
	sync := make(chan *session.Session, 1)
	h.Inbox() <- ActiveSession{Reply: sync}
	recvSession(t, sync)

	if v := getView(t, s); v.StoredPackets != 1 {
		t.Fatalf("chunk not routed to session: %d packets", v.StoredPackets)
	}
	if n := archive.count("rec1"); n != 1 {
		t.Fatalf("chunk not archived: %d", n)
	}
}

func TestHub_ControlReachesActiveSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx, zap.NewNop(), newFakeSender(), nil)

	reply := make(chan *session.Session, 1)
	h.Inbox() <- BeginReplay{SessionID: "rec1", Reply: reply}
	s := recvSession(t, reply)

	h.Inbox() <- Control{Msg: session.Play{}}
	h.Inbox() <- Control{Msg: session.SpeedUp{}}

	sync := make(chan *session.Session, 1)
	h.Inbox() <- ActiveSession{Reply: sync}
	recvSession(t, sync)

	if v := getView(t, s); v.Speed != 2.0 {
		t.Fatalf("want speed 2.0 after play+step, got %v", v.Speed)
	}
}
