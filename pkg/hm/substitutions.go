package hm

import "maps"

// Subs maps type variables to the types they were unified with.
type Subs map[TypeVariable]Type

func NewSubs() Subs {
	return make(Subs)
}

// Apply substitutes once; see Resolve for chains of bindings.
func (s Subs) Apply(t Type) Type {
	return t.Apply(s).(Type)
}

func (s Subs) Clone() Subs {
	return maps.Clone(s)
}

// Add binds tv to t and returns s.
func (s Subs) Add(tv TypeVariable, t Type) Subs {
	s[tv] = t
	return s
}

// Resolve applies the substitution until no bound variable remains in t.
func (s Subs) Resolve(t Type) Type {
	for range len(s) + 1 {
		next := s.Apply(t)
		if next.Eq(t) {
			return next
		}
		t = next
	}
	return t
}
