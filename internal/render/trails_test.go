package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/sim-replay-client/internal/entity"
)

func TestTrailBook_FollowsLifecycle(t *testing.T) {
	b := NewTrailBook(8)
	e := &entity.Entity{ID: 7, Position: entity.Vec3{X: 1}}

	b.EntitySpawned(e)
	require.Len(t, b.Trail(7), 1)

	e.Position = entity.Vec3{X: 2}
	b.EntityMoved(e)
	assert.Equal(t, []entity.Vec3{{X: 1}, {X: 2}}, b.Trail(7))

	b.EntityDespawned(7)
	assert.Nil(t, b.Trail(7), "history evicted with the entity")
	assert.Equal(t, 0, b.Len())
}

func TestTrailBook_BoundedHistory(t *testing.T) {
	b := NewTrailBook(3)
	e := &entity.Entity{ID: 1}
	b.EntitySpawned(e)

	for i := 1; i <= 10; i++ {
		e.Position = entity.Vec3{X: float64(i)}
		b.EntityMoved(e)
	}

	trail := b.Trail(1)
	require.Len(t, trail, 3)
	assert.Equal(t, entity.Vec3{X: 8}, trail[0], "oldest surviving point")
	assert.Equal(t, entity.Vec3{X: 10}, trail[2])
}

func TestTrailBook_IgnoresUnknownEntity(t *testing.T) {
	b := NewTrailBook(3)
	b.EntityMoved(&entity.Entity{ID: 42})
	assert.Nil(t, b.Trail(42))
}
