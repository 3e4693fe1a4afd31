package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/natded/pkg/natded"
)

func symbols(t *testing.T, src string) *SymbolTable {
	doc, err := natded.Parse(src, natded.ParseOptions{})
	require.NoError(t, err)
	return BuildSymbolTable(doc)
}

func TestSymbolTableShadowing(t *testing.T) {
	st := symbols(t, "theorem t : P => Q => Q assume p : P { assume p : Q { by p } }")

	require.Len(t, st.Bindings, 3)
	outer, inner := st.Bindings[0], st.Bindings[1]
	assert.Equal(t, "P", natded.FormatExpr(outer.Claim))
	assert.Equal(t, "Q", natded.FormatExpr(inner.Claim))

	require.Len(t, st.References, 1)
	assert.Same(t, inner, st.References[0].Binding)
}

func TestSymbolTableScopes(t *testing.T) {
	st := symbols(t, `theorem a : P => P assume h : P { have x : P by h; by x }
theorem b : P by a h`)

	refs := map[string][]*Reference{}
	for _, ref := range st.References {
		refs[ref.Name] = append(refs[ref.Name], ref)
	}

	require.Len(t, refs["h"], 2)
	assert.Equal(t, HypothesisBinding, refs["h"][0].Binding.Kind)
	assert.Nil(t, refs["h"][1].Binding, "hypotheses are not visible in later theorems")
	assert.Nil(t, refs["h"][1].Primitive)

	require.Len(t, refs["x"], 1)
	assert.Equal(t, StepBinding, refs["x"][0].Binding.Kind)
	assert.Equal(t, "a", refs["x"][0].Binding.Theorem)

	require.Len(t, refs["a"], 1)
	assert.Equal(t, TheoremBinding, refs["a"][0].Binding.Kind)
}

func TestSymbolTablePrimitives(t *testing.T) {
	st := symbols(t, "theorem t : P by exFalso f")

	ref, binding := st.At(Position{Line: 0, Character: 18})
	require.NotNil(t, ref)
	assert.Nil(t, binding)
	require.NotNil(t, ref.Primitive)
	assert.Equal(t, natded.Alias, ref.Primitive.Kind)

	ref, _ = st.At(Position{Line: 0, Character: 25})
	require.NotNil(t, ref)
	assert.Nil(t, ref.Binding)
	assert.Nil(t, ref.Primitive)
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 4}, End: Position{Line: 1, Character: 7}}
	assert.True(t, r.Contains(Position{Line: 1, Character: 4}))
	assert.True(t, r.Contains(Position{Line: 1, Character: 6}))
	assert.False(t, r.Contains(Position{Line: 1, Character: 7}))
	assert.False(t, r.Contains(Position{Line: 1, Character: 3}))
	assert.False(t, r.Contains(Position{Line: 0, Character: 5}))
}

func TestURIRoundTrip(t *testing.T) {
	uri := toURI("/tmp/proofs/a b.proof")
	assert.Equal(t, DocumentURI("file:///tmp/proofs/a%20b.proof"), uri)
	path, err := fromURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/proofs/a b.proof", path)

	_, err = fromURI("https://example.com/a.proof")
	require.Error(t, err)
}
