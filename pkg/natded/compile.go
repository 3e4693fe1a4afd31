package natded

import (
	"context"
	"fmt"

	"github.com/vito/natded/pkg/oracle"
	"github.com/vito/natded/pkg/tsast"
)

// Compilation holds every stage's output for one proof script.
type Compilation struct {
	Source     string
	Document   *Document
	Result     *Result
	Primitives []*Primitive
	Program    *tsast.Program
}

// Warnings returns the warnings raised while generating code.
func (c *Compilation) Warnings() []Warning {
	return c.Result.Warnings
}

// Compile parses, transforms and emits src. Errors are *LexError,
// *ParseError or *TransformError; nothing is emitted when one occurs.
func Compile(src string, opts Options) (*Compilation, error) {
	log := opts.logger()

	doc, err := Parse(src, ParseOptions{SystemF: opts.SystemF})
	if err != nil {
		return nil, err
	}
	log.Debug("parsed", "theorems", len(doc.Theorems))

	res, err := Transform(doc, opts)
	if err != nil {
		return nil, err
	}

	prims := SelectPrimitives(res.Used, opts.SystemF)
	log.Debug("selected primitives", "count", len(prims))

	return &Compilation{
		Source:     src,
		Document:   doc,
		Result:     res,
		Primitives: prims,
		Program:    Emit(prims, res.Decls),
	}, nil
}

// Emit prints the primitive declarations followed by the theorem
// declarations.
func Emit(prims []*Primitive, decls []tsast.Stmt) *tsast.Program {
	file := &tsast.File{}
	for _, p := range prims {
		file.Stmts = append(file.Stmts, p.Decl())
	}
	file.Stmts = append(file.Stmts, decls...)
	return tsast.Print(file)
}

// Check hands the compiled program to an oracle.
func Check(ctx context.Context, c *Compilation, o oracle.Oracle) (*oracle.Report, error) {
	report, err := o.Check(ctx, c.Program)
	if err != nil {
		return nil, fmt.Errorf("%s oracle: %w", o.Name(), err)
	}
	return report, nil
}
