package types

type Scope string

const (
	ScopeSingleton   Scope = "singleton"
	ScopePerInstance Scope = "per-instance"
)

// Packet is one decoded remote call. Immutable once created; Timestamp
// is milliseconds since recording start and is always resolved (real or
// synthesized) before a packet enters the store.
type Packet struct {
	HandlerID string
	Method    string
	Args      []any
	Timestamp int64
	Scope     Scope
}

// ParseScope defaults to per-instance, which is what every avatar rpc
// on the wire carries when the field is omitted.
func ParseScope(s string) Scope {
	if s == string(ScopeSingleton) {
		return ScopeSingleton
	}
	return ScopePerInstance
}

// ArgInt reads args[i] as an integer. JSON numbers decode as float64,
// so both forms are accepted.
func ArgInt(args []any, i int) (int64, bool) {
	if i < 0 || i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// ArgFloat reads args[i] as a float.
func ArgFloat(args []any, i int) (float64, bool) {
	if i < 0 || i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// ArgString reads args[i] as a string.
func ArgString(args []any, i int) (string, bool) {
	if i < 0 || i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}

// ArgBool reads args[i] as a bool.
func ArgBool(args []any, i int) (bool, bool) {
	if i < 0 || i >= len(args) {
		return false, false
	}
	b, ok := args[i].(bool)
	return b, ok
}
