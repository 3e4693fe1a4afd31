package natded

import (
	"context"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type FormatSuite struct{}

func TestFormat(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatSuite{})
}

var roundTripScripts = []struct {
	name    string
	src     string
	systemF bool
}{
	{
		name: "sequent",
		src:  "theorem p : P assume p : P { have _ by p; }",
	},
	{
		name: "conjunction swap",
		src: `theorem swap : P & Q => Q & P
assume h : P & Q {
    have p : P by andElimLeft h
    have q : Q by andElimRight h
    by andIntro q, p
}`,
	},
	{
		name: "nested assumptions and anonymous steps",
		src: `// comments are dropped
theorem curry : (P & Q => R) => P => Q => R
assume f : P & Q => R, p : P, Q {
    have P & Q by andIntro p, Q;
    by modusPonens f, P & Q;
}

theorem ~~(P | ~P)
assume n : ~(P | ~P) {
    have ~P by assume p : P { by n (P | ~P) }
    by falseElim n
}`,
	},
	{
		name: "statement-level assumption",
		src: `theorem t : P => P
assume p : P {
    assume q : Q { by q }
    have r : P by p
}`,
	},
	{
		name:    "generalization",
		systemF: true,
		src: `theorem poly : forall X . X => X
forall X {
    assume x : X { by x }
}

theorem inst : P => P
assume p : P {
    have f : forall X . X => X by poly;
    have g : P => P by forallElim P, f;
    by g p
}`,
	},
	{
		name:    "predicates",
		systemF: true,
		src: `theorem pred : (forall X . P[X]) => P[Y]
assume h : forall X . P[X] {
    by forallElim Y, h
}`,
	},
}

func (FormatSuite) TestRoundTrip(ctx context.Context, t *testctx.T) {
	for _, tt := range roundTripScripts {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			opts := ParseOptions{SystemF: tt.systemF}
			doc, err := Parse(tt.src, opts)
			require.NoError(t, err)

			formatted := Format(doc)
			reparsed, err := Parse(formatted, opts)
			require.NoError(t, err, "formatted:\n%s", formatted)

			if diff := cmp.Diff(doc, reparsed, ignoreLocations); diff != "" {
				t.Errorf("round trip changed the tree (-original +reparsed):\n%s", diff)
			}
			require.Equal(t, formatted, Format(reparsed))
		})
	}
}

func (FormatSuite) TestCanonicalLayout(ctx context.Context, t *testctx.T) {
	formatted, err := FormatSource("theorem t:P&Q=>Q assume h:P&Q{have q:Q by andElimRight h}", ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, `theorem t : P & Q => Q
assume h : P & Q {
    have q : Q by andElimRight h;
}
`, formatted)
}

func (FormatSuite) TestTheoremsSeparated(ctx context.Context, t *testctx.T) {
	formatted, err := FormatSource("theorem a : P by p theorem b : Q by q", ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, "theorem a : P\nby p;\n\ntheorem b : Q\nby q;\n", formatted)
}

func (FormatSuite) TestParentheses(ctx context.Context, t *testctx.T) {
	tests := []struct {
		src      string
		systemF  bool
		expected string
	}{
		{src: "(P & Q) & R", expected: "P & Q & R"},
		{src: "P & (Q & R)", expected: "P & (Q & R)"},
		{src: "P => (Q => R)", expected: "P => Q => R"},
		{src: "(P => Q) => R", expected: "(P => Q) => R"},
		{src: "(P | Q) | R", expected: "P | Q | R"},
		{src: "P | (Q | R)", expected: "P | (Q | R)"},
		{src: "(P | Q) & R", expected: "(P | Q) & R"},
		{src: "~(P | Q) & (P => Q) => R", expected: "~(P | Q) & (P => Q) => R"},
		{src: "~(~P)", expected: "~~P"},
		{src: "((P))", expected: "P"},
		{src: "forall X . (forall Y . Y) => X", systemF: true, expected: "forall X . (forall Y . Y) => X"},
		{src: "(forall X . X) & P[Y, Z]", systemF: true, expected: "(forall X . X) & P[Y, Z]"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(ctx context.Context, t *testctx.T) {
			require.Equal(t, tt.expected, FormatExpr(parseClaim(t, tt.src, tt.systemF)))
		})
	}
}
