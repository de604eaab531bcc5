package playback

import (
	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

// UndoAction is what an inverse decided to do with a packet during
// reverse playback.
type UndoAction int

const (
	// UndoPass dispatches the original packet unchanged. State-overwrite
	// rpcs (position, rotation) are naturally reverse-safe.
	UndoPass UndoAction = iota
	// UndoSuppress dispatches nothing; the inverse already applied its
	// effect directly to live state.
	UndoSuppress
	// UndoReplace dispatches Replacement instead of the original.
	UndoReplace
)

type Undo struct {
	Action      UndoAction
	Replacement types.Packet
}

// InverseFunc maps a packet to its reverse-playback treatment.
type InverseFunc func(p types.Packet) Undo

type undoKey struct {
	handlerID string
	method    string
}

// UndoRegistry is the static (handler, method) → inverse table. Only
// operations with irreversible side effects (entity lifecycle) need an
// entry; everything else passes through.
type UndoRegistry struct {
	inverses map[undoKey]InverseFunc
}

func NewUndoRegistry() *UndoRegistry {
	return &UndoRegistry{inverses: make(map[undoKey]InverseFunc)}
}

func (r *UndoRegistry) RegisterInverse(handlerID, method string, fn InverseFunc) {
	r.inverses[undoKey{handlerID, method}] = fn
}

func (r *UndoRegistry) DeregisterHandler(handlerID string) {
	for k := range r.inverses {
		if k.handlerID == handlerID {
			delete(r.inverses, k)
		}
	}
}

// Invert resolves the packet's treatment; packets without an entry pass
// through unchanged.
func (r *UndoRegistry) Invert(p types.Packet) Undo {
	if fn, ok := r.inverses[undoKey{p.HandlerID, p.Method}]; ok {
		return fn(p)
	}
	return Undo{Action: UndoPass}
}
