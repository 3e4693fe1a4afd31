package natded

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/natded/pkg/tsast"
)

func TestFramesExit(t *testing.T) {
	var f Frames
	f.Enter()
	f.Add("P")
	f.Add("Q")
	f.Add("P")
	require.Equal(t, 1, f.Depth())
	assert.Equal(t, []string{"P", "Q"}, f.Exit())
	assert.Equal(t, 0, f.Depth())
}

func TestFramesCaptureFromEnclosing(t *testing.T) {
	var f Frames
	f.Enter()
	f.Add("P")

	f.Enter()
	f.Add("Q")
	f.Add("P")
	f.Add("R")
	assert.Equal(t, []string{"Q", "R"}, f.Exit())

	assert.Equal(t, []string{"P"}, f.Exit())
}

func TestFramesConstants(t *testing.T) {
	var f Frames
	f.Enter()
	f.Add("True")
	f.Add("P")
	f.Add("False")
	assert.Equal(t, []string{"P"}, f.Exit())
}

func TestFramesBound(t *testing.T) {
	var f Frames
	f.Enter()
	f.Bind("X", "Y")
	assert.True(t, f.IsBound("X"))
	f.Add("X")
	f.Add("P")

	f.Bind("Z")
	f.Add("Z")
	f.Unbind(1)
	assert.False(t, f.IsBound("Z"))

	f.Unbind(2)
	assert.False(t, f.IsBound("X"))
	f.Add("Y")
	assert.Equal(t, []string{"P", "Y"}, f.Exit())
}

func TestFramesEmpty(t *testing.T) {
	var f Frames
	f.Enter()
	assert.Empty(t, f.Exit())
}

func TestFramesMisuse(t *testing.T) {
	assert.Panics(t, func() {
		var f Frames
		f.Exit()
	})
	assert.Panics(t, func() {
		var f Frames
		f.Add("P")
	})
	assert.Panics(t, func() {
		var f Frames
		f.Bind("X")
		f.Unbind(2)
	})
}

var scopeAtoms = []string{"P", "Q", "R", "S"}

func randomProp(r *rand.Rand, depth int) string {
	atom := scopeAtoms[r.IntN(len(scopeAtoms))]
	if depth == 0 {
		return atom
	}
	switch r.IntN(5) {
	case 0:
		return atom
	case 1:
		return "~" + randomProp(r, depth-1)
	case 2:
		return "(" + randomProp(r, depth-1) + " & " + randomProp(r, depth-1) + ")"
	case 3:
		return "(" + randomProp(r, depth-1) + " | " + randomProp(r, depth-1) + ")"
	default:
		return "(" + randomProp(r, depth-1) + " => " + randomProp(r, depth-1) + ")"
	}
}

// proofGen writes random proofs of nested assumptions and steps. Every
// name is fresh and every leaf is sorry, so any script it writes compiles.
type proofGen struct {
	r *rand.Rand
	b strings.Builder
	n int
}

func (g *proofGen) fresh(prefix string) string {
	g.n++
	return fmt.Sprintf("%s%d", prefix, g.n)
}

func (g *proofGen) proof(depth int) {
	for range g.r.IntN(3) {
		if depth > 0 && g.r.IntN(2) == 0 {
			g.assume(depth - 1)
			continue
		}
		fmt.Fprintf(&g.b, "have %s : %s by sorry;\n", g.fresh("s"), randomProp(g.r, 2))
	}
	switch {
	case depth > 0 && g.r.IntN(2) == 0:
		g.assume(depth - 1)
	case g.r.IntN(2) == 0:
		fmt.Fprintf(&g.b, "have %s : %s by sorry\n", g.fresh("s"), randomProp(g.r, 2))
	default:
		g.b.WriteString("by sorry\n")
	}
}

func (g *proofGen) assume(depth int) {
	g.b.WriteString("assume ")
	for i := range 1 + g.r.IntN(2) {
		if i > 0 {
			g.b.WriteString(", ")
		}
		fmt.Fprintf(&g.b, "%s : %s", g.fresh("h"), randomProp(g.r, 2))
	}
	g.b.WriteString(" {\n")
	g.proof(depth)
	g.b.WriteString("}\n")
}

// checkTypeParams asserts that every arrow under n declares only type
// variables its enclosing arrows have not, and that every atom mentioned
// is declared by the arrow or one enclosing it.
func checkTypeParams(t *testing.T, src string, n tsast.Node, scope []string) {
	t.Helper()
	switch n := n.(type) {
	case *tsast.Const:
		checkTypeParams(t, src, n.Type, scope)
		checkTypeParams(t, src, n.Value, scope)
	case *tsast.ExprStmt:
		checkTypeParams(t, src, n.Expr, scope)
	case *tsast.Return:
		checkTypeParams(t, src, n.Expr, scope)
	case *tsast.Block:
		for _, s := range n.Stmts {
			checkTypeParams(t, src, s, scope)
		}
	case *tsast.Paren:
		checkTypeParams(t, src, n.Expr, scope)
	case *tsast.Call:
		checkTypeParams(t, src, n.Fn, scope)
		for _, a := range n.Args {
			checkTypeParams(t, src, a, scope)
		}
		for _, a := range n.TypeArgs {
			checkTypeParams(t, src, a, scope)
		}
	case *tsast.Arrow:
		for _, tp := range n.TypeParams {
			assert.NotContains(t, scope, tp, "type parameter redeclared in\n%s", src)
		}
		inner := append(slices.Clone(scope), n.TypeParams...)
		for _, p := range n.Params {
			checkTypeParams(t, src, p.Type, inner)
		}
		checkTypeParams(t, src, n.Ret, inner)
		checkTypeParams(t, src, n.Body, inner)
	case *tsast.TypeRef:
		if slices.Contains(scopeAtoms, n.Name) {
			assert.Contains(t, scope, n.Name, "undeclared type variable in\n%s", src)
		}
		for _, a := range n.Args {
			checkTypeParams(t, src, a, scope)
		}
	}
}

func TestFramesScopeSoundness(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 300 {
		g := &proofGen{r: r}
		var theorems []string
		for range 1 + r.IntN(2) {
			name := g.fresh("t")
			theorems = append(theorems, name)
			fmt.Fprintf(&g.b, "theorem %s : %s\n", name, randomProp(r, 2))
			g.proof(3)
		}
		src := g.b.String()

		c, err := Compile(src, Options{})
		require.NoError(t, err, src)

		var checked int
		for _, stmt := range c.Program.File.Stmts {
			if k, ok := stmt.(*tsast.Const); ok && slices.Contains(theorems, k.Name) {
				checkTypeParams(t, src, k, nil)
				checked++
			}
		}
		require.Equal(t, len(theorems), checked, src)
	}
}
