package natded

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

// TestCompileGolden compiles every testdata/*.proof file and compares the
// emitted program with testdata/<name>.ts. Scripts whose name starts with
// "systemf" are compiled in System F mode.
func TestCompileGolden(t *testing.T) {
	proofs, err := filepath.Glob(filepath.Join("testdata", "*.proof"))
	require.NoError(t, err)
	require.NotEmpty(t, proofs)

	for _, path := range proofs {
		name := strings.TrimSuffix(filepath.Base(path), ".proof")
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)

			c, err := Compile(string(src), Options{SystemF: strings.HasPrefix(name, "systemf")})
			require.NoError(t, err)
			golden.Assert(t, c.Program.Text, name+".ts")
		})
	}
}

type TransformSuite struct{}

func TestTransform(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(TransformSuite{})
}

func compileSource(t require.TestingT, src string, systemF bool) *Compilation {
	c, err := Compile(src, Options{SystemF: systemF})
	require.NoError(t, err)
	return c
}

func (TransformSuite) TestErrors(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		src      string
		systemF  bool
		message  string
		location Location
	}{
		{
			name:     "duplicate hypothesis",
			src:      "theorem t : P => P assume p : P, p : P { by p }",
			message:  "p is already declared (first at line 1, column 27)",
			location: Location{1, 34},
		},
		{
			name:     "duplicate theorem",
			src:      "theorem a : P by trueIntro\ntheorem a : P by trueIntro",
			message:  "theorem a is already declared (first at line 1, column 9)",
			location: Location{2, 9},
		},
		{
			name:     "forward reference",
			src:      "theorem a : P by b\ntheorem b : P by trueIntro",
			message:  "theorem b is used before it is proved",
			location: Location{1, 18},
		},
		{
			name:     "self reference",
			src:      "theorem a : P by a",
			message:  "theorem a is used before it is proved",
			location: Location{1, 18},
		},
		{
			name:     "primitive name",
			src:      "theorem andIntro : P by trueIntro",
			message:  "theorem andIntro has the same name as a primitive",
			location: Location{1, 9},
		},
		{
			name:     "unnamed hole before the end",
			src:      "theorem t : P => P assume p : P { have _ by p; by p }",
			message:  "a step with no proposition must be named unless it ends the proof",
			location: Location{1, 40},
		},
		{
			name:     "forallElim arity",
			src:      "theorem t : P assume h : forall X . X { by forallElim h }",
			systemF:  true,
			message:  "bad forallElim call: expected 2 arguments, got 1",
			location: Location{1, 44},
		},
		{
			name:     "forallElim argument order",
			src:      "theorem t : P assume h : forall X . X { by forallElim h, P }",
			systemF:  true,
			message:  "bad forallElim call: expected a proposition and an identifier",
			location: Location{1, 44},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			_, err := Compile(tt.src, Options{SystemF: tt.systemF})
			require.Error(t, err)

			var terr *TransformError
			require.True(t, errors.As(err, &terr), "expected a TransformError, got %T: %v", err, err)
			require.Equal(t, tt.message, terr.Message)
			require.Equal(t, tt.location, terr.Location)
		})
	}
}

func (TransformSuite) TestDuplicateErrorText(ctx context.Context, t *testctx.T) {
	_, err := Compile("theorem t : P => P assume p : P { have q : P by p; have q : P by p; by q }", Options{})
	require.EqualError(t, err, "q is already declared (first at line 1, column 40) at [1, 57]")
}

func (TransformSuite) TestShadowing(ctx context.Context, t *testctx.T) {
	c := compileSource(t, "theorem t : P => P => P assume p : P { assume p : P { by p } }", false)
	require.Contains(t, c.Program.Text,
		"const t = <P>(): Impl<P, Impl<P, P>> => (p: P) => (p: P) => p;\n")
}

func (TransformSuite) TestReservedWords(ctx context.Context, t *testctx.T) {
	c := compileSource(t, "theorem new : P => P assume class : P { by class }", false)
	require.Contains(t, c.Program.Text,
		"const new_ = <P>(): Impl<P, P> => (class_: P) => class_;\n")
}

func (TransformSuite) TestPrimitiveTypeNames(ctx context.Context, t *testctx.T) {
	c := compileSource(t, "theorem t : And => And assume a : And { by a }", false)
	require.Contains(t, c.Program.Text,
		"const t = <And$>(): Impl<And$, And$> => (a: And$) => a;\n")
}

func (TransformSuite) TestAnonymousArguments(ctx context.Context, t *testctx.T) {
	c := compileSource(t, `theorem t : P & Q => Q
assume P & Q {
    by andElimRight P & Q
}`, false)
	require.Contains(t, c.Program.Text,
		"const t = <P, Q>(): Impl<And<P, Q>, Q> => (and_p__q__: And<P, Q>) => andElimRight(and_p__q__);\n")
}

func (TransformSuite) TestFinalStepReturnType(ctx context.Context, t *testctx.T) {
	c := compileSource(t, `theorem t : P => P
assume p : P {
    have q : P by p
}`, false)
	require.Contains(t, c.Program.Text,
		"const t = <P>(): Impl<P, P> => (p: P): P => p;\n")
}

func (TransformSuite) TestFinalStepUnderDeclaredType(ctx context.Context, t *testctx.T) {
	c := compileSource(t, "theorem p : P assume p : P { have q : P by p; }", false)
	require.Contains(t, c.Program.Text, `const p = <P>(p: P): P => {
    const q: P = p;
    return q;
};
`)
}

func (TransformSuite) TestNestedCapture(ctx context.Context, t *testctx.T) {
	// Q first appears inside the nested assumption, so the nested arrow
	// declares it; P is captured from the theorem.
	c := compileSource(t, `theorem t : P => P
assume p : P {
    assume q : Q { by q }
    by p
}`, false)
	require.Contains(t, c.Program.Text, `const t = <P>(): Impl<P, P> => (p: P) => {
    (<Q>(q: Q) => q);
    return p;
};
`)
}

func (TransformSuite) TestWarnings(ctx context.Context, t *testctx.T) {
	t.Run("sorry", func(ctx context.Context, t *testctx.T) {
		c := compileSource(t, "theorem t : P by sorry\ntheorem u : Q by sorry", false)
		require.Equal(t, []Warning{
			{Location: Location{1, 18}, Message: "proof uses sorry"},
			{Location: Location{2, 18}, Message: "proof uses sorry"},
		}, c.Warnings())
		require.Contains(t, c.Program.Text, "declare const sorry: any;\n")
	})

	t.Run("predicate arity", func(ctx context.Context, t *testctx.T) {
		c := compileSource(t, "theorem t : P[X, Y] by sorry", true)
		require.Equal(t, []Warning{
			{Location: Location{1, 13}, Message: "predicate P has 2 arguments; only the first is used"},
			{Location: Location{1, 24}, Message: "proof uses sorry"},
		}, c.Warnings())
		require.Contains(t, c.Program.Text, "const t = <P, X>(): Apply<P, X> => sorry;\n")
	})

	t.Run("none", func(ctx context.Context, t *testctx.T) {
		c := compileSource(t, "theorem t : P => P assume p : P { by p }", false)
		require.Empty(t, c.Warnings())
	})
}

func (TransformSuite) TestDeterministic(ctx context.Context, t *testctx.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "mixed.proof"))
	require.NoError(t, err)
	first := compileSource(t, string(src), false)
	for range 5 {
		require.Equal(t, first.Program.Text, compileSource(t, string(src), false).Program.Text)
	}
}

func (TransformSuite) TestTheoremReferences(ctx context.Context, t *testctx.T) {
	c := compileSource(t, `theorem a : P => P
assume p : P { by p }

theorem s : P
assume p : P { by p }

theorem b : Q => Q
by a

theorem u : Q => Q
by s`, false)
	require.Contains(t, c.Program.Text, "const b = <Q>(): Impl<Q, Q> => a();\n")
	require.Contains(t, c.Program.Text, "const u = <Q>(): Impl<Q, Q> => s;\n")
}
