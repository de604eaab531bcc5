package dispatch

import (
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

var (
	ErrUnknownHandler = errors.New("no handler registered")
	ErrUnknownMethod  = errors.New("no such method")
)

// Method executes one remote call against live state.
type Method func(args []any) error

// MethodTable maps method names to functions. Tables are built once at
// registration, so every dispatchable method is known up front; there
// is no name-based reflection.
type MethodTable map[string]Method

// Dispatcher routes packets to registered handlers. Singleton handlers
// are registered at startup; per-instance handlers come and go with
// sessions. Not safe for concurrent use: registration and dispatch both
// happen on the session goroutine.
type Dispatcher struct {
	log      *zap.Logger
	handlers map[string]MethodTable
}

func New(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		log:      log,
		handlers: make(map[string]MethodTable),
	}
}

func (d *Dispatcher) Register(handlerID string, methods MethodTable) {
	d.handlers[handlerID] = methods
}

func (d *Dispatcher) Deregister(handlerID string) {
	delete(d.handlers, handlerID)
}

func (d *Dispatcher) Registered(handlerID string) bool {
	_, ok := d.handlers[handlerID]
	return ok
}

// Dispatch invokes the packet's method on its handler. All failures are
// local: the packet is dropped, logged, and the simulation continues.
func (d *Dispatcher) Dispatch(p types.Packet) error {
	methods, ok := d.handlers[p.HandlerID]
	if !ok {
		d.log.Warn("dropping packet for unregistered handler",
			zap.String("handler", p.HandlerID),
			zap.String("method", p.Method))
		return ErrUnknownHandler
	}
	fn, ok := methods[p.Method]
	if !ok {
		d.log.Warn("dropping packet for unknown method",
			zap.String("handler", p.HandlerID),
			zap.String("method", p.Method))
		return ErrUnknownMethod
	}
	if err := fn(p.Args); err != nil {
		d.log.Warn("handler method failed",
			zap.String("handler", p.HandlerID),
			zap.String("method", p.Method),
			zap.Error(err))
		return err
	}
	return nil
}
