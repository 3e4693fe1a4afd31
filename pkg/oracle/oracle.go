// Package oracle type-checks emitted programs. A program that checks is a
// valid proof of every theorem it declares.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/vito/natded/pkg/tsast"
)

// Oracle checks a printed program.
type Oracle interface {
	// Name identifies the oracle in messages.
	Name() string

	// Check type-checks prog. A non-nil error means the oracle itself could
	// not run; type errors are reported as diagnostics.
	Check(ctx context.Context, prog *tsast.Program) (*Report, error)
}

// Diagnostic is one type error.
type Diagnostic struct {
	Code    string
	Message string

	// Offset is the byte offset into the program text, or -1 when the
	// diagnostic has no position.
	Offset int
	Line   int
	Column int

	// Origin is the proof-script location the offending code came from, if
	// known.
	Origin *tsast.Origin
}

func (d Diagnostic) String() string {
	if d.Offset < 0 {
		return fmt.Sprintf("error %s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("(%d,%d): error %s: %s", d.Line, d.Column, d.Code, d.Message)
}

// Report is the outcome of a check.
type Report struct {
	Diagnostics []Diagnostic
}

// OK reports whether the program checked without errors.
func (r *Report) OK() bool {
	return len(r.Diagnostics) == 0
}

// diagnosticAt fills in the position and origin of a diagnostic from an
// offset into prog.
func diagnosticAt(prog *tsast.Program, offset int, code, msg string) Diagnostic {
	d := Diagnostic{Code: code, Message: msg, Offset: -1}
	if offset < 0 {
		return d
	}
	pos := prog.Locate(offset)
	d.Offset = pos.Offset
	d.Line = pos.Line
	d.Column = pos.Column
	d.Origin = prog.OriginAt(offset)
	return d
}

// Kinds of oracle accepted by New.
const (
	KindAuto    = "auto"
	KindTSC     = "tsc"
	KindBuiltin = "builtin"
)

// Config selects and configures an oracle.
type Config struct {
	Kind string

	TSCPath    string
	TSCVersion string
	TSCArgs    []string

	Logger *slog.Logger
}

// New returns the oracle described by cfg. The auto kind picks tsc when it
// can be found and falls back to the builtin checker.
func New(cfg Config) (Oracle, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	tsc := &TSC{
		Path:       cfg.TSCPath,
		Constraint: cfg.TSCVersion,
		Args:       cfg.TSCArgs,
		Logger:     log,
	}
	switch cfg.Kind {
	case KindTSC:
		return tsc, nil
	case KindBuiltin:
		return &Builtin{Logger: log}, nil
	case "", KindAuto:
		if _, err := exec.LookPath(tsc.path()); err == nil {
			log.Debug("using tsc oracle", "path", tsc.path())
			return tsc, nil
		}
		log.Debug("tsc not found, using builtin oracle")
		return &Builtin{Logger: log}, nil
	}
	return nil, fmt.Errorf("unknown oracle %q", cfg.Kind)
}
