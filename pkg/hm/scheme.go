package hm

import (
	"fmt"
	"slices"
	"strings"
)

// ForallType is a first-class polymorphic type: the body with its bound
// type variables. The names are kept for printing.
type ForallType struct {
	names []string
	tvs   []TypeVariable
	t     Type
}

// NewForallType creates a polymorphic type binding tvs in t.
func NewForallType(names []string, tvs []TypeVariable, t Type) *ForallType {
	return &ForallType{names: names, tvs: tvs, t: t}
}

// TypeVars returns the bound type variables
func (s *ForallType) TypeVars() []TypeVariable {
	return s.tvs
}

// Body returns the quantified type
func (s *ForallType) Body() Type {
	return s.t
}

func (s *ForallType) Name() string {
	return s.String()
}

// Apply applies a substitution to the free variables of the type
func (s *ForallType) Apply(subs Subs) Substitutable {
	filteredSubs := make(Subs)
	for tv, t := range subs {
		if !slices.Contains(s.tvs, tv) {
			filteredSubs[tv] = t
		}
	}

	return &ForallType{
		names: s.names,
		tvs:   s.tvs,
		t:     s.t.Apply(filteredSubs).(Type),
	}
}

// FreeTypeVar returns the free type variables in the type
func (s *ForallType) FreeTypeVar() TypeVarSet {
	return s.t.FreeTypeVar().Without(s.tvs...)
}

// Eq compares up to renaming of the bound variables.
func (s *ForallType) Eq(other Type) bool {
	ot, ok := other.(*ForallType)
	if !ok || len(ot.tvs) != len(s.tvs) {
		return false
	}
	rename := NewSubs()
	for i, tv := range ot.tvs {
		rename[tv] = s.tvs[i]
	}
	return s.t.Eq(rename.Apply(ot.t))
}

func (s *ForallType) String() string {
	named := NewSubs()
	for i, tv := range s.tvs {
		named[tv] = NewTypeConst(s.names[i], -1)
	}
	return fmt.Sprintf("<%s>%s", strings.Join(s.names, ", "), named.Apply(s.t))
}
