package oracle

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/vito/natded/pkg/tsast"
)

// DefaultTSCConstraint is the tsc version range known to check emitted
// programs correctly.
const DefaultTSCConstraint = ">= 4.5.0"

// TSCFlags are always passed to tsc.
var TSCFlags = []string{
	"--noEmit",
	"--strict",
	"--pretty", "false",
	"--target", "es2017",
}

// TSC checks programs by running the TypeScript compiler.
type TSC struct {
	// Path to the executable; "tsc" when empty.
	Path string

	// Constraint on the tsc version; DefaultTSCConstraint when empty.
	Constraint string

	// Args are extra compiler flags.
	Args []string

	Logger *slog.Logger

	versionOnce sync.Once
	version     *semver.Version
	versionErr  error
}

var _ Oracle = (*TSC)(nil)

func (o *TSC) Name() string {
	return "tsc"
}

func (o *TSC) path() string {
	if o.Path == "" {
		return "tsc"
	}
	return o.Path
}

func (o *TSC) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Version runs tsc --version once and checks the result against the
// configured constraint.
func (o *TSC) Version(ctx context.Context) (*semver.Version, error) {
	o.versionOnce.Do(func() {
		o.version, o.versionErr = o.detectVersion(ctx)
	})
	return o.version, o.versionErr
}

func (o *TSC) detectVersion(ctx context.Context) (*semver.Version, error) {
	out, err := exec.CommandContext(ctx, o.path(), "--version").Output()
	if err != nil {
		return nil, errors.Wrapf(err, "running %s --version", o.path())
	}
	v, err := ParseTSCVersion(string(out))
	if err != nil {
		return nil, err
	}

	constraint := o.Constraint
	if constraint == "" {
		constraint = DefaultTSCConstraint
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, errors.Wrapf(err, "tsc version constraint %q", constraint)
	}
	if ok, errs := c.Validate(v); !ok {
		return nil, errors.Errorf("tsc %s does not satisfy %s: %v", v, constraint, errs)
	}
	o.logger().Debug("found tsc", "version", v.String())
	return v, nil
}

// ParseTSCVersion extracts the version from tsc --version output, which
// looks like "Version 5.4.5".
func ParseTSCVersion(out string) (*semver.Version, error) {
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "Version ")
	v, err := semver.NewVersion(out)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing tsc version %q", out)
	}
	return v, nil
}

// Check writes the program to a temporary directory and runs tsc on it.
func (o *TSC) Check(ctx context.Context, prog *tsast.Program) (*Report, error) {
	if _, err := o.Version(ctx); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "natded-")
	if err != nil {
		return nil, errors.Wrap(err, "creating work dir")
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "proof.ts")
	if err := os.WriteFile(file, []byte(prog.Text), 0o644); err != nil {
		return nil, errors.Wrap(err, "writing program")
	}

	args := append(append(append([]string{}, TSCFlags...), o.Args...), file)
	cmd := exec.CommandContext(ctx, o.path(), args...)
	cmd.Dir = dir

	o.logger().Debug("running tsc", "args", args)
	out, err := cmd.CombinedOutput()
	diags := ParseTSCOutput(out, prog)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || len(diags) == 0 {
			return nil, errors.Wrapf(err, "running %s: %s", o.path(), bytes.TrimSpace(out))
		}
	}
	return &Report{Diagnostics: diags}, nil
}

var (
	tscErrorRe       = regexp.MustCompile(`^(.*)\((\d+),(\d+)\): error (TS\d+): (.*)$`)
	tscGlobalErrorRe = regexp.MustCompile(`^error (TS\d+): (.*)$`)
)

// ParseTSCOutput turns tsc's non-pretty output into diagnostics. Indented
// lines continue the previous message.
func ParseTSCOutput(out []byte, prog *tsast.Program) []Diagnostic {
	var diags []Diagnostic
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if m := tscErrorRe.FindStringSubmatch(line); m != nil {
			l, _ := strconv.Atoi(m[2])
			c, _ := strconv.Atoi(m[3])
			diags = append(diags, diagnosticAt(prog, prog.OffsetOf(l, c), m[4], m[5]))
			continue
		}
		if m := tscGlobalErrorRe.FindStringSubmatch(line); m != nil {
			diags = append(diags, diagnosticAt(prog, -1, m[1], m[2]))
			continue
		}
		if len(diags) > 0 && strings.TrimSpace(line) != "" && (line[0] == ' ' || line[0] == '\t') {
			last := &diags[len(diags)-1]
			last.Message += "\n" + strings.TrimSpace(line)
		}
	}
	return diags
}
