package entity

// Vec3 is a position, velocity or euler-rotation triple.
type Vec3 struct {
	X, Y, Z float64
}

// Entity is one live simulated object. Owned exclusively by the
// registry: created only through spawn resolution, destroyed only by
// Despawn or Reset.
type Entity struct {
	ID       int64
	OwnerID  string
	UnitID   int64 // 0 when the spawn carried no unit binding
	Path     string
	Position Vec3
	Velocity Vec3
	Rotation Vec3
	Active   bool

	model Model
}

// Model is the behavior bound to an entity by spawn resolution. The
// registry calls Init once after the entity is registered and Teardown
// exactly once before it is removed.
type Model interface {
	Init(e *Entity)
	Teardown(e *Entity)
}

// Factory constructs a model for a freshly spawned entity.
type Factory func() Model

// Vehicle is the model for drivable units.
type Vehicle struct {
	destroyed bool
}

func (v *Vehicle) Init(e *Entity)     {}
func (v *Vehicle) Teardown(e *Entity) { v.destroyed = true }

// Projectile is the model for fired ordnance; short-lived, no teardown
// work beyond deactivation.
type Projectile struct{}

func (Projectile) Init(e *Entity)     {}
func (Projectile) Teardown(e *Entity) { e.Active = false }

// Emplacement covers static defensive structures.
type Emplacement struct{}

func (Emplacement) Init(e *Entity)     {}
func (Emplacement) Teardown(e *Entity) {}
