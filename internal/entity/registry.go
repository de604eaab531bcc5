package entity

import (
	"strings"

	"go.uber.org/zap"
)

// Lifecycle receives entity events. The rendering side hangs its own
// per-entity state (trail history etc) off these instead of a global
// id-keyed cache, so eviction follows entity lifetime exactly.
type Lifecycle interface {
	EntitySpawned(e *Entity)
	EntityMoved(e *Entity)
	EntityDespawned(id int64)
}

// NopLifecycle is for sessions with no render collaborator attached.
type NopLifecycle struct{}

func (NopLifecycle) EntitySpawned(*Entity) {}
func (NopLifecycle) EntityMoved(*Entity)   {}
func (NopLifecycle) EntityDespawned(int64) {}

// Registry owns the authoritative live entity set and resolves spawn
// descriptor paths to models. Single-goroutine, like everything else on
// the tick path.
type Registry struct {
	log       *zap.Logger
	rules     []SpawnRule
	lifecycle Lifecycle
	live      []*Entity
}

func NewRegistry(log *zap.Logger, rules []SpawnRule, lc Lifecycle) *Registry {
	if lc == nil {
		lc = NopLifecycle{}
	}
	return &Registry{log: log, rules: rules, lifecycle: lc}
}

// Resolve returns the factory of the first rule accepting path.
// Matching is case-insensitive on the trimmed path. A false second
// return with no warning means the path belongs to an ignored category;
// any other miss is logged as an unresolved spawn.
func (r *Registry) Resolve(path string) (Factory, bool) {
	normalized := strings.ToLower(strings.TrimSpace(path))
	for _, rule := range r.rules {
		if rule.Matcher.Match(normalized) {
			return rule.New, true
		}
	}
	if !ignoredPath(normalized) {
		r.log.Warn("unresolved spawn path", zap.String("path", path))
	}
	return nil, false
}

// Spawn resolves path, constructs the entity and registers it. A nil
// return means the path resolved to nothing. A duplicate id tears down
// the previous entity and installs the new one.
func (r *Registry) Spawn(id int64, ownerID, path string, pos, rot Vec3, active bool) *Entity {
	factory, ok := r.Resolve(path)
	if !ok {
		return nil
	}

	if prev := r.Get(id); prev != nil {
		r.log.Warn("duplicate entity id, replacing", zap.Int64("id", id), zap.String("path", path))
		r.Despawn(id)
	}

	e := &Entity{
		ID:       id,
		OwnerID:  ownerID,
		Path:     path,
		Position: pos,
		Rotation: rot,
		Active:   active,
		model:    factory(),
	}
	r.live = append(r.live, e)
	e.model.Init(e)
	r.lifecycle.EntitySpawned(e)
	return e
}

// Despawn tears the entity down and removes it from the live set.
func (r *Registry) Despawn(id int64) bool {
	for i, e := range r.live {
		if e.ID == id {
			e.model.Teardown(e)
			r.live = append(r.live[:i], r.live[i+1:]...)
			r.lifecycle.EntityDespawned(id)
			return true
		}
	}
	return false
}

// Get is a linear lookup by id; nil when not live.
func (r *Registry) Get(id int64) *Entity {
	for _, e := range r.live {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Move updates position and velocity and notifies the lifecycle
// listener. No-op for unknown ids.
func (r *Registry) Move(id int64, pos, vel Vec3) {
	if e := r.Get(id); e != nil {
		e.Position = pos
		e.Velocity = vel
		r.lifecycle.EntityMoved(e)
	}
}

// Rotate updates rotation. No lifecycle event: trails track position.
func (r *Registry) Rotate(id int64, rot Vec3) {
	if e := r.Get(id); e != nil {
		e.Rotation = rot
	}
}

func (r *Registry) Count() int { return len(r.live) }

// Live returns the live set in spawn order.
func (r *Registry) Live() []*Entity { return r.live }

// Reset tears down every live entity synchronously. Run on session
// switch before any new spawn is processed.
func (r *Registry) Reset() {
	for _, e := range r.live {
		e.model.Teardown(e)
		r.lifecycle.EntityDespawned(e.ID)
	}
	r.live = nil
}
