package entity

import "strings"

// Matcher decides whether a spawn rule accepts a descriptor path. The
// registry normalizes the path (trim + lowercase) before matching.
type Matcher interface {
	Match(path string) bool
}

// ExactSet matches any one of a fixed set of paths.
type ExactSet []string

func (s ExactSet) Match(path string) bool {
	for _, want := range s {
		if path == want {
			return true
		}
	}
	return false
}

// Prefix matches any path starting with the given fragment.
type Prefix string

func (p Prefix) Match(path string) bool {
	return strings.HasPrefix(path, string(p))
}

// SpawnRule binds a matcher to the model factory for the entities it
// accepts. Rules are tried in slice order; first match wins.
type SpawnRule struct {
	Name    string
	Matcher Matcher
	New     Factory
}

// DefaultRules is the static rule table, defined once at startup.
func DefaultRules() []SpawnRule {
	return []SpawnRule{
		{Name: "vehicle", Matcher: Prefix("vehicles/"), New: func() Model { return &Vehicle{} }},
		{Name: "emplacement", Matcher: Prefix("emplacements/"), New: func() Model { return Emplacement{} }},
		{Name: "projectile", Matcher: ExactSet{"ordnance/shell", "ordnance/rocket", "ordnance/bomb"}, New: func() Model { return Projectile{} }},
	}
}

// ignoredPath reports descriptor categories that are known not to be
// renderable entities: equipment hardpoints and rearm points. These are
// skipped without a warning.
func ignoredPath(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "hp_") {
			return true
		}
	}
	return strings.Contains(path, "rearm")
}
