package session

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/sim-replay-client/internal/dispatch"
	"github.com/DoyleJ11/sim-replay-client/internal/entity"
	"github.com/DoyleJ11/sim-replay-client/internal/playback"
	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

// avatarMethods is the per-instance handler's method table. Arguments
// are flat scalar lists, in the order the recorder emits them.
//
//	createEntity:   id, ownerId, path, px, py, pz, rx, ry, rz, active
//	destroyEntity:  id
//	updatePosition: id, px, py, pz, vx, vy, vz
//	updateRotation: id, rx, ry, rz
//	updateEntity:   id, active
//	bindUnit:       id, unitId
func (s *Session) avatarMethods() dispatch.MethodTable {
	return dispatch.MethodTable{
		"createEntity":   s.rpcCreateEntity,
		"destroyEntity":  s.rpcDestroyEntity,
		"updatePosition": s.rpcUpdatePosition,
		"updateRotation": s.rpcUpdateRotation,
		"updateEntity":   s.rpcUpdateEntity,
		"bindUnit":       s.rpcBindUnit,
	}
}

func (s *Session) worldMethods() dispatch.MethodTable {
	return dispatch.MethodTable{
		"setArenaTime": func(args []any) error {
			t, ok := types.ArgFloat(args, 0)
			if !ok {
				return errBadArgs
			}
			s.arenaTime = t
			return nil
		},
		"onSessionEnd": func(args []any) error {
			s.log.Info("session ended by server")
			s.clock.Pause()
			return nil
		},
	}
}

func (s *Session) rpcCreateEntity(args []any) error {
	id, ok := types.ArgInt(args, 0)
	if !ok {
		return errBadArgs
	}
	owner, _ := types.ArgString(args, 1)
	path, ok := types.ArgString(args, 2)
	if !ok {
		return errBadArgs
	}
	pos, ok := argVec3(args, 3)
	if !ok {
		return errBadArgs
	}
	rot, _ := argVec3(args, 6)
	active, ok := types.ArgBool(args, 9)
	if !ok {
		active = true
	}

	s.entities.Spawn(id, owner, path, pos, rot, active)
	return nil
}

func (s *Session) rpcDestroyEntity(args []any) error {
	id, ok := types.ArgInt(args, 0)
	if !ok {
		return errBadArgs
	}
	if !s.entities.Despawn(id) {
		s.log.Debug("destroy for unknown entity", zap.Int64("id", id))
	}
	return nil
}

func (s *Session) rpcUpdatePosition(args []any) error {
	id, ok := types.ArgInt(args, 0)
	if !ok {
		return errBadArgs
	}
	pos, ok := argVec3(args, 1)
	if !ok {
		return errBadArgs
	}
	vel, _ := argVec3(args, 4)
	s.entities.Move(id, pos, vel)
	return nil
}

func (s *Session) rpcUpdateRotation(args []any) error {
	id, ok := types.ArgInt(args, 0)
	if !ok {
		return errBadArgs
	}
	rot, ok := argVec3(args, 1)
	if !ok {
		return errBadArgs
	}
	s.entities.Rotate(id, rot)
	return nil
}

func (s *Session) rpcBindUnit(args []any) error {
	id, ok := types.ArgInt(args, 0)
	if !ok {
		return errBadArgs
	}
	unit, ok := types.ArgInt(args, 1)
	if !ok {
		return errBadArgs
	}
	if e := s.entities.Get(id); e != nil {
		e.UnitID = unit
	}
	return nil
}

func (s *Session) rpcUpdateEntity(args []any) error {
	id, ok := types.ArgInt(args, 0)
	if !ok {
		return errBadArgs
	}
	active, ok := types.ArgBool(args, 1)
	if !ok {
		return errBadArgs
	}
	if e := s.entities.Get(id); e != nil {
		e.Active = active
	}
	return nil
}

// invertCreate undoes createEntity during reverse playback by applying
// the destroy effect directly to live state. Nothing is dispatched.
func (s *Session) invertCreate(p types.Packet) playback.Undo {
	id, ok := types.ArgInt(p.Args, 0)
	if !ok {
		return playback.Undo{Action: playback.UndoSuppress}
	}
	if !s.entities.Despawn(id) {
		s.log.Debug("reverse create for entity not live", zap.Int64("id", id))
	}
	return playback.Undo{Action: playback.UndoSuppress}
}

// invertDestroy undoes destroyEntity by finding the matching
// createEntity earlier in the store and dispatching that instead,
// recreating the entity. A missing instantiate is a consistency error:
// logged, reconstruction suppressed, playback continues.
func (s *Session) invertDestroy(p types.Packet) playback.Undo {
	id, ok := types.ArgInt(p.Args, 0)
	if !ok {
		return playback.Undo{Action: playback.UndoSuppress}
	}
	created, found := s.store.FindBefore(p.Timestamp, func(q types.Packet) bool {
		if q.HandlerID != p.HandlerID || q.Method != "createEntity" {
			return false
		}
		qid, ok := types.ArgInt(q.Args, 0)
		return ok && qid == id
	})
	if !found {
		s.log.Error("no instantiate packet for reversed destroy", zap.Int64("id", id))
		return playback.Undo{Action: playback.UndoSuppress}
	}
	return playback.Undo{Action: playback.UndoReplace, Replacement: created}
}

func argVec3(args []any, i int) (entity.Vec3, bool) {
	x, okX := types.ArgFloat(args, i)
	y, okY := types.ArgFloat(args, i+1)
	z, okZ := types.ArgFloat(args, i+2)
	return entity.Vec3{X: x, Y: y, Z: z}, okX && okY && okZ
}
