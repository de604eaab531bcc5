package render

import (
	"github.com/DoyleJ11/sim-replay-client/internal/entity"
)

// TrailBook keeps a bounded position history per live entity for the
// trail renderer. It implements entity.Lifecycle so histories appear on
// spawn and are evicted on despawn; nothing outlives its entity.
type TrailBook struct {
	limit  int
	trails map[int64][]entity.Vec3
}

func NewTrailBook(limit int) *TrailBook {
	return &TrailBook{
		limit:  limit,
		trails: make(map[int64][]entity.Vec3),
	}
}

func (b *TrailBook) EntitySpawned(e *entity.Entity) {
	b.trails[e.ID] = []entity.Vec3{e.Position}
}

func (b *TrailBook) EntityMoved(e *entity.Entity) {
	trail, ok := b.trails[e.ID]
	if !ok {
		return
	}
	trail = append(trail, e.Position)
	if len(trail) > b.limit {
		trail = trail[len(trail)-b.limit:]
	}
	b.trails[e.ID] = trail
}

func (b *TrailBook) EntityDespawned(id int64) {
	delete(b.trails, id)
}

// Trail returns the recorded positions for an entity, oldest first.
func (b *TrailBook) Trail(id int64) []entity.Vec3 {
	return b.trails[id]
}

func (b *TrailBook) Len() int { return len(b.trails) }
