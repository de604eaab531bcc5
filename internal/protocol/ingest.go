package protocol

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

// ChunkMarker prefixes every binary replay chunk frame.
const ChunkMarker = "REPLAY"

// ChunkDurationMS is the nominal duration one chunk covers when the
// source omitted per-packet timestamps; synthetic timestamps are spread
// evenly across it.
const ChunkDurationMS int64 = 30000

var (
	ErrBadFrame       = errors.New("malformed frame")
	ErrNotReplayChunk = errors.New("missing replay marker")
	ErrEmptyChunk     = errors.New("empty chunk")
)

// DecodeText decodes a text frame into a control or rpc message.
func DecodeText(data []byte) (types.ServerMessage, error) {
	var msg types.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return types.ServerMessage{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if msg.Type == "" {
		return types.ServerMessage{}, fmt.Errorf("%w: missing type", ErrBadFrame)
	}
	return msg, nil
}

// DecodeRPC turns an rpc message into a packet. A missing timestamp
// resolves to -1; live dispatch ignores it and the replay path never
// sees single rpc messages.
func DecodeRPC(msg types.ServerMessage) (types.Packet, error) {
	if msg.HandlerID == "" || msg.Method == "" {
		return types.Packet{}, fmt.Errorf("%w: rpc without handler or method", ErrBadFrame)
	}
	ts := int64(-1)
	if msg.Timestamp != nil {
		ts = *msg.Timestamp
	}
	return types.Packet{
		HandlerID: msg.HandlerID,
		Method:    msg.Method,
		Args:      msg.Args,
		Timestamp: ts,
		Scope:     types.ParseScope(msg.Scope),
	}, nil
}

// IsChunk reports whether a binary frame carries a replay chunk rather
// than a live rpc message.
func IsChunk(data []byte) bool {
	return len(data) >= len(ChunkMarker) && string(data[:len(ChunkMarker)]) == ChunkMarker
}

// DecodeChunk decompresses one replay chunk and returns its packets,
// fully timestamped. chunkIndex is the chunk's sequence number among
// chunks received so far; it anchors synthetic timestamps when the
// batch carries none of its own.
func DecodeChunk(data []byte, chunkIndex int) ([]types.Packet, error) {
	if !IsChunk(data) {
		return nil, ErrNotReplayChunk
	}
	zr, err := zlib.NewReader(bytes.NewReader(data[len(ChunkMarker):]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated chunk: %v", ErrBadFrame, err)
	}

	var batch []types.RawPacket
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if len(batch) == 0 {
		return nil, ErrEmptyChunk
	}

	packets := make([]types.Packet, 0, len(batch))
	synthesize := batch[0].Timestamp == nil
	step := ChunkDurationMS / int64(len(batch))
	base := int64(chunkIndex) * ChunkDurationMS

	for i, rp := range batch {
		if rp.HandlerID == "" || rp.Method == "" {
			return nil, fmt.Errorf("%w: packet %d without handler or method", ErrBadFrame, i)
		}
		var ts int64
		switch {
		case synthesize || rp.Timestamp == nil:
			ts = base + int64(i)*step
		default:
			ts = *rp.Timestamp
		}
		packets = append(packets, types.Packet{
			HandlerID: rp.HandlerID,
			Method:    rp.Method,
			Args:      rp.Args,
			Timestamp: ts,
			Scope:     types.ParseScope(rp.Scope),
		})
	}
	return packets, nil
}

// EncodeChunk builds a chunk frame from raw packets. Used by tests and
// by the archive when re-feeding a stored session.
func EncodeChunk(batch []types.RawPacket) ([]byte, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(ChunkMarker)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
