package natded

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
	"github.com/vito/natded/pkg/oracle"
	"github.com/vito/natded/pkg/tsast"
)

type CheckSuite struct{}

func TestCheck(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(CheckSuite{})
}

func checkSource(ctx context.Context, t require.TestingT, src string, systemF bool) *oracle.Report {
	c, err := Compile(src, Options{SystemF: systemF})
	require.NoError(t, err)
	report, err := Check(ctx, c, &oracle.Builtin{})
	require.NoError(t, err)
	return report
}

func (CheckSuite) TestValidProofs(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name    string
		src     string
		systemF bool
	}{
		{name: "identity", src: "theorem id2 : P => P assume p : P { by p }"},
		{name: "sequent", src: "theorem p : P assume p : P { have _ by p; }"},
		{name: "concrete", src: "theorem t : True by trueIntro"},
		{name: "sorry", src: "theorem t : P => Q by sorry"},
		{name: "ex falso", src: "theorem t : False => P assume f : False { by absurd f }"},
		{name: "derived rules", src: `theorem contra : (P => Q) => ~Q => ~P
assume f : P => Q, nq : ~Q {
    by modusTollens f, nq
}

theorem u : P => ~P => False
assume p : P, np : ~P {
    by notElim p, np
}`},
		{name: "lemma", src: `theorem a : P => P
assume p : P { by p }

theorem b : Q => Q
by a`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			report := checkSource(ctx, t, tt.src, tt.systemF)
			require.Empty(t, report.Diagnostics)
			require.True(t, report.OK())
		})
	}
}

func (CheckSuite) TestGoldenProgramsCheck(ctx context.Context, t *testctx.T) {
	for _, name := range []string{"swap", "mixed", "systemf"} {
		t.Run(name, func(ctx context.Context, t *testctx.T) {
			src, err := os.ReadFile(filepath.Join("testdata", name+".proof"))
			require.NoError(t, err)
			report := checkSource(ctx, t, string(src), name == "systemf")
			require.Empty(t, report.Diagnostics)
		})
	}
}

func (CheckSuite) TestInvalidStep(ctx context.Context, t *testctx.T) {
	report := checkSource(ctx, t, "theorem t : P => Q assume p : P { have q : Q by p; }", false)
	require.False(t, report.OK())
	require.Len(t, report.Diagnostics, 1)

	d := report.Diagnostics[0]
	require.Equal(t, "TS2322", d.Code)
	require.Equal(t, "Type 'P' is not assignable to type 'Q'.", d.Message)
	require.Equal(t, &tsast.Origin{Line: 1, Column: 49}, d.Origin)
}

func (CheckSuite) TestInvalidConclusion(ctx context.Context, t *testctx.T) {
	report := checkSource(ctx, t, "theorem t : P & Q => Q assume h : P & Q { by andElimLeft h }", false)
	require.Len(t, report.Diagnostics, 1)
	require.Equal(t, "TS2322", report.Diagnostics[0].Code)
	require.Contains(t, report.Diagnostics[0].Message, "is not assignable to type")
}

func (CheckSuite) TestInvalidArgument(ctx context.Context, t *testctx.T) {
	report := checkSource(ctx, t, "theorem t : P => Q => P assume p : P, q : Q { by andElimLeft q }", false)
	require.Len(t, report.Diagnostics, 1)

	d := report.Diagnostics[0]
	require.Equal(t, "TS2345", d.Code)
	require.Equal(t, "Argument of type 'Q' is not assignable to parameter of type 'And<unknown, unknown>'.", d.Message)
	require.Equal(t, &tsast.Origin{Line: 1, Column: 62}, d.Origin)
}

type failingOracle struct{}

func (failingOracle) Name() string { return "broken" }

func (failingOracle) Check(context.Context, *tsast.Program) (*oracle.Report, error) {
	return nil, errors.New("exit status 127")
}

func (CheckSuite) TestOracleFailure(ctx context.Context, t *testctx.T) {
	c, err := Compile("theorem t : True by trueIntro", Options{})
	require.NoError(t, err)
	_, err = Check(ctx, c, failingOracle{})
	require.EqualError(t, err, "broken oracle: exit status 127")
}

func (CheckSuite) TestCompileErrorsEmitNothing(ctx context.Context, t *testctx.T) {
	c, err := Compile("theorem t : P by b\ntheorem b : P by trueIntro", Options{})
	require.Error(t, err)
	require.Nil(t, c)

	var located Located
	require.True(t, errors.As(err, &located))
	require.Equal(t, Location{1, 18}, located.SourceLocation())
}

func (CheckSuite) TestSourceError(ctx context.Context, t *testctx.T) {
	src := "theorem t : P\nby !"
	_, err := Compile(src, Options{})
	require.Error(t, err)

	wrapped := NewSourceError(err, "bad.proof", src)
	var serr *SourceError
	require.True(t, errors.As(wrapped, &serr))
	require.Equal(t, Location{2, 4}, serr.Location)
	require.Contains(t, serr.Error(), "bad.proof:2:4")
	require.Contains(t, serr.Error(), "by !")
	require.Same(t, wrapped, NewSourceError(wrapped, "other.proof", src))

	plain := errors.New("plain")
	require.Equal(t, plain, NewSourceError(plain, "bad.proof", src))
}
