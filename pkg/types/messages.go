package types

// Server -> Client (text frames)
// assign-id:
//   id: string (must arrive before any rpc traffic)
// replay-info:
//   chunks: number (expected chunk total for the session being replayed)
// rpc:
//   handler_id, method, args, timestamp?, scope?
//
// Server -> Client (binary frames)
// Either a JSON rpc message (live path, dispatched immediately) or a
// replay chunk: 6-byte "REPLAY" marker + zlib-compressed JSON array of
// RawPacket.
//
// Client -> Server
// subscribe:     session_id: string
// begin-replay:  session_id: string

type ServerMessage struct {
	Type      string `json:"type"` // "assign-id" | "replay-info" | "rpc"
	ID        string `json:"id,omitempty"`
	Chunks    int    `json:"chunks,omitempty"`
	HandlerID string `json:"handler_id,omitempty"`
	Method    string `json:"method,omitempty"`
	Args      []any  `json:"args,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

type ClientCommand struct {
	Type      string `json:"type"` // "subscribe" | "begin-replay"
	SessionID string `json:"session_id"`
}

// RawPacket is the wire form of one call inside a replay chunk.
// Timestamp is optional here; it must be resolved before the packet
// reaches the store.
type RawPacket struct {
	HandlerID string `json:"handler_id"`
	Method    string `json:"method"`
	Args      []any  `json:"args"`
	Timestamp *int64 `json:"timestamp,omitempty"`
	Scope     string `json:"scope,omitempty"`
}
