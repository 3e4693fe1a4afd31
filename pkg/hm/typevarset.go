package hm

import (
	"maps"
	"slices"
)

// TypeVarSet is a set of type variables, typically the free variables of a
// type or environment.
type TypeVarSet map[TypeVariable]bool

func NewTypeVarSet(tvs ...TypeVariable) TypeVarSet {
	set := make(TypeVarSet, len(tvs))
	for _, tv := range tvs {
		set[tv] = true
	}
	return set
}

// Union returns a new set holding the members of tvs and every other set.
func (tvs TypeVarSet) Union(others ...TypeVarSet) TypeVarSet {
	result := maps.Clone(tvs)
	if result == nil {
		result = TypeVarSet{}
	}
	for _, other := range others {
		maps.Copy(result, other)
	}
	return result
}

// Without returns a new set holding the members of tvs except the given
// variables.
func (tvs TypeVarSet) Without(bound ...TypeVariable) TypeVarSet {
	result := maps.Clone(tvs)
	for _, tv := range bound {
		delete(result, tv)
	}
	return result
}

func (tvs TypeVarSet) Contains(tv TypeVariable) bool {
	return tvs[tv]
}

// Sorted returns the members in ascending order.
func (tvs TypeVarSet) Sorted() []TypeVariable {
	return slices.Sorted(maps.Keys(tvs))
}
