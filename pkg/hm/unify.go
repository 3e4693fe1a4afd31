package hm

import (
	"fmt"
)

// UnificationError represents errors during unification
type UnificationError struct {
	Src, Dst Type
	msg      string
}

func (e UnificationError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("Type '%s' is not assignable to type '%s'.", e.Src, e.Dst)
}

// Unifier accumulates a substitution while checking assignability.
type Unifier struct {
	subs    Subs
	fresher Fresher
}

// NewUnifier creates a unifier drawing fresh variables from fresher.
func NewUnifier(fresher Fresher) *Unifier {
	return &Unifier{subs: NewSubs(), fresher: fresher}
}

// Subs returns the substitution accumulated so far.
func (u *Unifier) Subs() Subs {
	return u.subs
}

// Resolve applies the accumulated substitution to t.
func (u *Unifier) Resolve(t Type) Type {
	return u.subs.Resolve(t)
}

// Assign checks that a value of type src may be used where dst is expected,
// binding unification variables on either side as needed. On failure the
// substitution is left as it was.
func (u *Unifier) Assign(src, dst Type) error {
	saved := u.subs.Clone()
	if err := u.assign(src, dst); err != nil {
		u.subs = saved
		if ue, ok := err.(UnificationError); ok && ue.msg != "" {
			return ue
		}
		return UnificationError{Src: u.Resolve(src), Dst: u.Resolve(dst)}
	}
	return nil
}

func (u *Unifier) shallow(t Type) Type {
	for {
		tv, ok := t.(TypeVariable)
		if !ok {
			return t
		}
		bound, ok := u.subs[tv]
		if !ok {
			return t
		}
		t = bound
	}
}

func (u *Unifier) assign(src, dst Type) error {
	src = u.shallow(src)
	dst = u.shallow(dst)

	if src.Eq(dst) {
		return nil
	}

	switch {
	case src.Eq(Any), dst.Eq(Any):
		return nil
	}

	// Handle type variables
	if tv, ok := src.(TypeVariable); ok {
		return u.bindVar(tv, dst)
	}
	if tv, ok := dst.(TypeVariable); ok {
		return u.bindVar(tv, src)
	}

	if src.Eq(Bottom) {
		return nil
	}

	// Polymorphic targets must accept every instantiation
	if df, ok := dst.(*ForallType); ok {
		ftvs := src.FreeTypeVar().Union(df.FreeTypeVar())
		skolems, body := Skolemize(u.fresher, df)
		if err := u.assign(src, body); err != nil {
			return err
		}
		for tv := range ftvs {
			resolved := u.Resolve(tv)
			for _, sk := range skolems {
				if Mentions(resolved, sk) {
					return UnificationError{msg: fmt.Sprintf("Type parameter '%s' escapes its scope.", sk)}
				}
			}
		}
		return nil
	}
	if sf, ok := src.(*ForallType); ok {
		return u.assign(Instantiate(u.fresher, sf), dst)
	}

	mismatch := UnificationError{Src: src, Dst: dst}

	switch s := src.(type) {
	case *FunctionType:
		d, ok := dst.(*FunctionType)
		if !ok {
			return mismatch
		}
		if s.arg != nil {
			if d.arg == nil {
				return mismatch
			}
			if err := u.assign(d.arg, s.arg); err != nil {
				return err
			}
		}
		return u.assign(s.ret, d.ret)
	case *ConstructorType:
		d, ok := dst.(*ConstructorType)
		if !ok || d.name != s.name || len(d.args) != len(s.args) {
			return mismatch
		}
		for i := range s.args {
			if err := u.assign(s.args[i], d.args[i]); err != nil {
				return err
			}
		}
		return nil
	}

	return mismatch
}

// bindVar binds a type variable to a type
func (u *Unifier) bindVar(tv TypeVariable, t Type) error {
	if tv2, ok := t.(TypeVariable); ok && tv == tv2 {
		return nil
	}

	if occursCheck(tv, u.Resolve(t)) {
		return UnificationError{msg: fmt.Sprintf("Type '%s' references itself.", u.Resolve(t))}
	}

	u.subs.Add(tv, t)
	return nil
}

// occursCheck checks if a type variable occurs in a type
func occursCheck(tv TypeVariable, t Type) bool {
	return t.FreeTypeVar().Contains(tv)
}
