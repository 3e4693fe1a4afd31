package hm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tP = NewTypeConst("P", 0)
	tQ = NewTypeConst("Q", 0)
)

func identity(f Fresher) *ForallType {
	v := f.Fresh()
	return NewForallType([]string{"X"}, []TypeVariable{v}, NewFnType(v, v))
}

func TestAssignConstants(t *testing.T) {
	u := NewUnifier(NewSimpleFresher())
	require.NoError(t, u.Assign(tP, tP))

	err := u.Assign(tP, tQ)
	require.EqualError(t, err, "Type 'P' is not assignable to type 'Q'.")

	var ue UnificationError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, Type(tP), ue.Src)
	assert.Equal(t, Type(tQ), ue.Dst)
}

func TestAssignSpecialTypes(t *testing.T) {
	u := NewUnifier(NewSimpleFresher())
	assert.NoError(t, u.Assign(Bottom, tP))
	assert.Error(t, u.Assign(tP, Bottom))
	assert.NoError(t, u.Assign(Any, tP))
	assert.NoError(t, u.Assign(tP, Any))
	assert.NoError(t, u.Assign(NewFnType(tP, Bottom), NewFnType(tP, tQ)))
}

func TestAssignFunctions(t *testing.T) {
	f := NewSimpleFresher()
	u := NewUnifier(f)

	v := f.Fresh()
	require.NoError(t, u.Assign(NewFnType(v, v), NewFnType(tP, tP)))
	assert.Equal(t, Type(tP), u.Resolve(v))

	err := u.Assign(NewFnType(tP, tP), NewFnType(tP, tQ))
	require.EqualError(t, err, "Type '(_: P) => P' is not assignable to type '(_: P) => Q'.")

	assert.NoError(t, u.Assign(NewFnType(nil, tP), NewFnType(tQ, tP)), "fewer parameters are fine")
	assert.Error(t, u.Assign(NewFnType(tQ, tP), NewFnType(nil, tP)))
}

func TestAssignConstructors(t *testing.T) {
	f := NewSimpleFresher()
	u := NewUnifier(f)

	assert.NoError(t, u.Assign(NewConstructorType("And", tP, tQ), NewConstructorType("And", tP, tQ)))
	assert.Error(t, u.Assign(NewConstructorType("And", tP, tQ), NewConstructorType("Or", tP, tQ)))
	assert.Error(t, u.Assign(NewConstructorType("And", tP, tQ), NewConstructorType("And", tQ, tP)))
	assert.Equal(t, "And<P, Q>", NewConstructorType("And", tP, tQ).String())
}

func TestAssignRestoresOnFailure(t *testing.T) {
	f := NewSimpleFresher()
	u := NewUnifier(f)

	v := f.Fresh()
	err := u.Assign(NewConstructorType("And", v, tP), NewConstructorType("And", tQ, tQ))
	require.EqualError(t, err, "Type 'And<unknown, P>' is not assignable to type 'And<Q, Q>'.")
	assert.Equal(t, Type(v), u.Resolve(v))
	assert.Empty(t, u.Subs())
}

func TestAssignOccursCheck(t *testing.T) {
	f := NewSimpleFresher()
	u := NewUnifier(f)

	v := f.Fresh()
	err := u.Assign(v, NewFnType(v, tP))
	require.ErrorContains(t, err, "references itself")
}

func TestAssignPolymorphic(t *testing.T) {
	f := NewSimpleFresher()
	u := NewUnifier(f)

	assert.NoError(t, u.Assign(identity(f), identity(f)))
	assert.NoError(t, u.Assign(identity(f), NewFnType(tP, tP)))
	assert.Error(t, u.Assign(NewFnType(tP, tP), identity(f)))
	assert.Error(t, u.Assign(identity(f), NewFnType(tP, tQ)))
}

func TestAssignSkolemEscape(t *testing.T) {
	f := NewSimpleFresher()
	u := NewUnifier(f)

	v := f.Fresh()
	err := u.Assign(NewFnType(v, v), identity(f))
	require.EqualError(t, err, "Type parameter 'X' escapes its scope.")
	assert.Equal(t, Type(v), u.Resolve(v))
}

func TestForallType(t *testing.T) {
	f := NewSimpleFresher()
	id := identity(f)
	assert.Equal(t, "<X>(_: X) => X", id.String())
	assert.True(t, id.Eq(identity(f)), "equal up to renaming")
	assert.Empty(t, id.FreeTypeVar())

	assert.Equal(t, NewFnType(tP, tP), InstantiateWith(id, tP))

	inst := Instantiate(f, id).(*FunctionType)
	assert.Equal(t, inst.Arg(), inst.Ret())
	assert.NotContains(t, inst.FreeTypeVar(), id.TypeVars()[0])

	skolems, body := Skolemize(f, id)
	require.Len(t, skolems, 1)
	assert.Equal(t, "X", skolems[0].Name())
	assert.True(t, Mentions(body, skolems[0]))
	assert.False(t, skolems[0].Eq(NewTypeConst("X", 0)), "skolems are distinct from globals")

	back := Abstract(body, map[TypeConst]TypeVariable{skolems[0]: id.TypeVars()[0]})
	assert.True(t, back.Eq(id.Body()))
}

func TestSubsResolve(t *testing.T) {
	f := NewSimpleFresher()
	a, b := f.Fresh(), f.Fresh()
	subs := NewSubs().Add(a, b).Add(b, tP)
	assert.Equal(t, Type(tP), subs.Resolve(a))
	assert.Equal(t, NewFnType(tP, tP), subs.Resolve(NewFnType(a, b)))
}

func TestEnvShadowing(t *testing.T) {
	env := NewSimpleEnv()
	env.Add("p", tP)
	child := env.Extend()
	child.Add("p", tQ)

	got, ok := child.TypeOf("p")
	require.True(t, ok)
	assert.Equal(t, Type(tQ), got)

	got, ok = env.TypeOf("p")
	require.True(t, ok)
	assert.Equal(t, Type(tP), got)

	_, ok = child.TypeOf("q")
	assert.False(t, ok)
}

func TestTypeVarSet(t *testing.T) {
	a := NewTypeVarSet(3, 1)
	b := NewTypeVarSet(2)
	assert.Equal(t, []TypeVariable{1, 2, 3}, a.Union(b).Sorted())
	assert.Equal(t, []TypeVariable{1, 3}, a.Sorted(), "Union leaves its receiver alone")
	assert.Equal(t, []TypeVariable{3}, a.Without(1, 7).Sorted())
	assert.True(t, a.Contains(1))
	assert.Empty(t, TypeVarSet(nil).Union().Sorted())
}
