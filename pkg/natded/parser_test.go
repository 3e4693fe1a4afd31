package natded

import (
	"context"
	"os"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type ParserSuite struct{}

func TestParser(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(ParserSuite{})
}

var ignoreLocations = cmpopts.IgnoreTypes(Location{})

func atom(name string, args ...string) *TypeVar {
	return &TypeVar{Name: name, Args: args}
}

func parseClaim(t require.TestingT, src string, systemF bool) Expr {
	doc, err := Parse("theorem x : "+src+"\nby p", ParseOptions{SystemF: systemF})
	require.NoError(t, err)
	return doc.Theorems[0].Claim.Expr
}

func (ParserSuite) TestPrecedence(ctx context.Context, t *testctx.T) {
	tests := []struct {
		src      string
		systemF  bool
		expected Expr
	}{
		{
			src:      "P => Q => R",
			expected: &Implication{Left: atom("P"), Right: &Implication{Left: atom("Q"), Right: atom("R")}},
		},
		{
			src:      "P & Q & R",
			expected: &Conjunction{Left: &Conjunction{Left: atom("P"), Right: atom("Q")}, Right: atom("R")},
		},
		{
			src:      "P | Q | R",
			expected: &Disjunction{Left: &Disjunction{Left: atom("P"), Right: atom("Q")}, Right: atom("R")},
		},
		{
			src:      "P | Q & R",
			expected: &Disjunction{Left: atom("P"), Right: &Conjunction{Left: atom("Q"), Right: atom("R")}},
		},
		{
			src:      "~P & Q",
			expected: &Conjunction{Left: &Negation{Value: atom("P")}, Right: atom("Q")},
		},
		{
			src:      "~~P",
			expected: &Negation{Value: &Negation{Value: atom("P")}},
		},
		{
			src:      "(P => Q) => R",
			expected: &Implication{Left: &Implication{Left: atom("P"), Right: atom("Q")}, Right: atom("R")},
		},
		{
			src:      "~(P | Q)",
			expected: &Negation{Value: &Disjunction{Left: atom("P"), Right: atom("Q")}},
		},
		{
			src: "P | Q => P & Q | R",
			expected: &Implication{
				Left:  &Disjunction{Left: atom("P"), Right: atom("Q")},
				Right: &Disjunction{Left: &Conjunction{Left: atom("P"), Right: atom("Q")}, Right: atom("R")},
			},
		},
		{
			src:     "forall X . P[X] => Q",
			systemF: true,
			expected: &Quantified{
				Vars: []string{"X"},
				Body: &Implication{Left: atom("P", "X"), Right: atom("Q")},
			},
		},
		{
			src:     "forall X, Y . (forall Z . Z) => X",
			systemF: true,
			expected: &Quantified{
				Vars: []string{"X", "Y"},
				Body: &Implication{
					Left:  &Quantified{Vars: []string{"Z"}, Body: atom("Z")},
					Right: atom("X"),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(ctx context.Context, t *testctx.T) {
			got := parseClaim(t, tt.src, tt.systemF)
			if diff := cmp.Diff(tt.expected, got, ignoreLocations); diff != "" {
				t.Errorf("unexpected tree (-want +got):\n%s", diff)
			}
		})
	}
}

func (ParserSuite) TestProofShapes(ctx context.Context, t *testctx.T) {
	t.Run("last statement becomes final", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : P\nhave a : P by p;\nhave b : P by a;", ParseOptions{})
		require.NoError(t, err)
		proof := doc.Theorems[0].Proof
		require.Len(t, proof.Statements, 1)
		require.Equal(t, "a", proof.Statements[0].(*Step).Claim.Name)
		require.Equal(t, "b", proof.Final.(*Step).Claim.Name)
	})

	t.Run("conclusion", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : P\nhave a : P by p\nby a;", ParseOptions{})
		require.NoError(t, err)
		proof := doc.Theorems[0].Proof
		require.Len(t, proof.Statements, 1)
		expected := &Conclusion{Justification: &Application{Rule: "a"}}
		if diff := cmp.Diff(expected, proof.Final, ignoreLocations); diff != "" {
			t.Errorf("unexpected final step (-want +got):\n%s", diff)
		}
	})

	t.Run("holes and unnamed claims", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : P\nhave P by p;\nhave _ by p;", ParseOptions{})
		require.NoError(t, err)
		proof := doc.Theorems[0].Proof
		unnamed := proof.Statements[0].(*Step).Claim
		require.Empty(t, unnamed.Name)
		require.False(t, unnamed.IsHole())
		hole := proof.Final.(*Step).Claim
		require.Empty(t, hole.Name)
		require.True(t, hole.IsHole())
	})

	t.Run("application arguments", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : P\nby andIntro p, Q & R, ~S;", ParseOptions{})
		require.NoError(t, err)
		expected := &Application{
			Rule: "andIntro",
			Args: []Argument{
				&Identifier{Name: "p"},
				&Conjunction{Left: atom("Q"), Right: atom("R")},
				&Negation{Value: atom("S")},
			},
		}
		got := doc.Theorems[0].Proof.Final.(*Conclusion).Justification
		if diff := cmp.Diff(expected, got, ignoreLocations); diff != "" {
			t.Errorf("unexpected application (-want +got):\n%s", diff)
		}
	})

	t.Run("assumption with several hypotheses", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : P => Q => P\nassume p : P, Q {\n    by p\n}", ParseOptions{})
		require.NoError(t, err)
		expected := &Assumption{
			Hypotheses: []*NamedExpr{
				{Name: "p", Expr: atom("P")},
				{Expr: atom("Q")},
			},
			Proof: &Proof{Final: &Conclusion{Justification: &Application{Rule: "p"}}},
		}
		if diff := cmp.Diff(expected, doc.Theorems[0].Proof.Final, ignoreLocations); diff != "" {
			t.Errorf("unexpected assumption (-want +got):\n%s", diff)
		}
	})

	t.Run("generalization", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : forall X . X => X\nforall X {\n    by id\n}", ParseOptions{SystemF: true})
		require.NoError(t, err)
		g := doc.Theorems[0].Proof.Final.(*Generalization)
		require.Equal(t, []string{"X"}, g.Vars)
		require.Equal(t, Location{2, 1}, g.Loc)
	})

	t.Run("generalization after an application without semicolon", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : forall X . X => X\nhave i : P by p\nforall X, Y {\n    by id\n}", ParseOptions{SystemF: true})
		require.NoError(t, err)
		proof := doc.Theorems[0].Proof
		require.Len(t, proof.Statements, 1)
		step := proof.Statements[0].(*Step)
		require.Empty(t, step.Justification.(*Application).Args)
		g := proof.Final.(*Generalization)
		require.Equal(t, []string{"X", "Y"}, g.Vars)
		require.Equal(t, Location{3, 1}, g.Loc)
	})

	t.Run("quantified first argument", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem t : P\nby f forall X, Y . X => Y", ParseOptions{SystemF: true})
		require.NoError(t, err)
		app := doc.Theorems[0].Proof.Final.(*Conclusion).Justification.(*Application)
		require.Len(t, app.Args, 1)
		q := app.Args[0].(*Quantified)
		require.Equal(t, []string{"X", "Y"}, q.Vars)
	})

	t.Run("several theorems", func(ctx context.Context, t *testctx.T) {
		doc, err := Parse("theorem a : P\nby p\ntheorem b : Q\nby q\n", ParseOptions{})
		require.NoError(t, err)
		require.Len(t, doc.Theorems, 2)
		require.Equal(t, "a", doc.Theorems[0].Claim.Name)
		require.Equal(t, "b", doc.Theorems[1].Claim.Name)
		require.Equal(t, Location{3, 1}, doc.Theorems[1].Loc)
	})
}

func (ParserSuite) TestErrors(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name    string
		src     string
		systemF bool
		message string
	}{
		{
			name:    "empty script",
			src:     "",
			message: "expected TheoremKeyword, got EOF at [1, 1]",
		},
		{
			name:    "empty proof",
			src:     "theorem t : P",
			message: "Empty Proof at [1, 14]",
		},
		{
			name:    "empty block",
			src:     "theorem t : P\nassume p : P { }",
			message: "Empty Proof at [2, 16]",
		},
		{
			name:    "statement after conclusion",
			src:     "theorem t : P\nby p\nhave q : Q by p",
			message: "expected TheoremKeyword or EOF, got HaveKeyword at [3, 1]",
		},
		{
			name:    "missing operand",
			src:     "theorem t : P =>\nby p",
			message: "expected TypeVar or LParen, got ByKeyword at [2, 1]",
		},
		{
			name:    "stray identifier",
			src:     "theorem t : P\nq",
			message: "expected AssumeKeyword or HaveKeyword or ByKeyword or TheoremKeyword or EOF, got Identifier at [2, 1]",
		},
		{
			name:    "generalization outside System F",
			src:     "theorem t : P\nforall X { by p }",
			message: "generalization requires System F mode at [2, 1]",
		},
		{
			name:    "quantifier outside System F",
			src:     "theorem t : forall X . X\nby p",
			message: "quantified proposition requires System F mode at [1, 13]",
		},
		{
			name:    "predicate outside System F",
			src:     "theorem t : P[X]\nby p",
			message: "predicate application requires System F mode at [1, 14]",
		},
		{
			name:    "lex error",
			src:     "theorem t : P\nby p!",
			message: "unexpected character '!' at [2, 5]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			_, err := Parse(tt.src, ParseOptions{SystemF: tt.systemF})
			require.EqualError(t, err, tt.message)
		})
	}
}

func (ParserSuite) TestSExp(ctx context.Context, t *testctx.T) {
	doc, err := Parse(`theorem t : P & Q => Q
assume h : P & Q {
    have q : Q by andElimRight h;
}
`, ParseOptions{})
	require.NoError(t, err)

	require.Equal(t, `(Document
    (Theorem t
        (Implication
            (Conjunction
                (Proposition P)
                (Proposition Q))
            (Proposition Q))
        (Proof
            (Assumption
                (Hypothesis h
                    (Conjunction
                        (Proposition P)
                        (Proposition Q)))
                (Proof
                    (Step q
                        (Proposition Q)
                        (Application andElimRight
                            (Identifier h))))))))
`, SExp(doc))
}
