package hm

// Env represents a type environment
type Env interface {
	TypeOf(name string) (Type, bool)
	Add(name string, t Type) Env
	Extend() Env
	FreeTypeVar() TypeVarSet
}

// SimpleEnv is a simple implementation of Env. Lookups fall back to the
// enclosing environment.
type SimpleEnv struct {
	parent *SimpleEnv
	types  map[string]Type
}

// NewSimpleEnv creates a new SimpleEnv
func NewSimpleEnv() *SimpleEnv {
	return &SimpleEnv{
		types: make(map[string]Type),
	}
}

// TypeOf returns the type bound to a name
func (env *SimpleEnv) TypeOf(name string) (Type, bool) {
	for e := env; e != nil; e = e.parent {
		if t, exists := e.types[name]; exists {
			return t, true
		}
	}
	return nil, false
}

// Add adds a binding to the environment
func (env *SimpleEnv) Add(name string, t Type) Env {
	env.types[name] = t
	return env
}

// Extend returns a child environment; bindings added to it shadow this one
func (env *SimpleEnv) Extend() Env {
	child := NewSimpleEnv()
	child.parent = env
	return child
}

// FreeTypeVar returns the free type variables in the environment
func (env *SimpleEnv) FreeTypeVar() TypeVarSet {
	ftvs := NewTypeVarSet()
	for e := env; e != nil; e = e.parent {
		for _, t := range e.types {
			ftvs = ftvs.Union(t.FreeTypeVar())
		}
	}
	return ftvs
}
