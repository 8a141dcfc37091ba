// Package piplist queries a Python environment's package manager for the
// installed distributions. The pip subprocess is the single source of truth
// per run; any invocation or parse failure is fatal to the caller.
package piplist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Package is one installed distribution as reported by pip.
type Package struct {
	Name    string `json:"name"    yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// Supported pip list output formats.
const (
	FormatJSON   = "json"
	FormatFreeze = "freeze"
)

// DefaultPython is the interpreter binary used when none is configured.
const DefaultPython = "python3"

// Sentinel errors for lister operations.
var (
	ErrUnknownFormat = errors.New("unknown pip list format")
	errPipList       = errors.New("pip list failed")
	errPipOutput     = errors.New("unparsable pip list output")
)

// specifierDelimiters are the version/URL qualifiers recognized in a raw
// dependency specifier. The leftmost occurrence wins.
var specifierDelimiters = []string{"==", ">=", "<=", "@"}

// Runner executes a command and returns its stdout. Injectable so tests
// never spawn a real interpreter.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Lister shells out to pip for the installed-package manifest.
type Lister struct {
	// Python is the interpreter binary used to invoke pip as a module.
	Python string
	// Format selects the pip list output format (json or freeze).
	Format string

	run Runner
}

// NewLister creates a Lister for the given interpreter and output format.
// Empty arguments fall back to python3 and JSON.
func NewLister(pythonBin, format string) *Lister {
	if pythonBin == "" {
		pythonBin = DefaultPython
	}

	if format == "" {
		format = FormatJSON
	}

	return &Lister{
		Python: pythonBin,
		Format: format,
		run:    runCommand,
	}
}

// WithRunner replaces the command runner. Used by tests.
func (l *Lister) WithRunner(run Runner) *Lister {
	l.run = run

	return l
}

// Installed returns the installed distributions in the order pip reports
// them. Non-zero exit or malformed output aborts the run.
func (l *Lister) Installed(ctx context.Context) ([]Package, error) {
	switch l.Format {
	case FormatJSON, FormatFreeze:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, l.Format)
	}

	output, err := l.run(ctx, l.Python, "-m", "pip", "list", "--format="+l.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPipList, err)
	}

	if l.Format == FormatFreeze {
		return ParseFreeze(string(output))
	}

	return parseJSON(output)
}

// InterpreterVersion returns the interpreter's sys.version string.
// Best-effort; callers may omit the output header when it fails.
func (l *Lister) InterpreterVersion(ctx context.Context) (string, error) {
	output, err := l.run(ctx, l.Python, "-c", "import sys; print(sys.version)")
	if err != nil {
		return "", fmt.Errorf("interpreter version: %w", err)
	}

	return strings.TrimSpace(strings.ReplaceAll(string(output), "\n", " ")), nil
}

// parseJSON decodes pip's --format=json output, an array of name/version
// objects.
func parseJSON(output []byte) ([]Package, error) {
	var packages []Package

	decodeErr := json.Unmarshal(output, &packages)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", errPipOutput, decodeErr)
	}

	return packages, nil
}

// ParseFreeze parses newline-delimited freeze output (name==version lines).
// Blank lines are skipped; a line with no recognized delimiter is kept as a
// versionless package so the manifest stays order-complete.
func ParseFreeze(output string) ([]Package, error) {
	var packages []Package

	for line := range strings.Lines(output) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, version := splitSpecifier(line)
		if name == "" {
			return nil, fmt.Errorf("%w: line %q", errPipOutput, line)
		}

		packages = append(packages, Package{Name: name, Version: version})
	}

	return packages, nil
}

// PackageName extracts the distribution name from a raw dependency
// specifier, stripping version and URL qualifiers at the leftmost delimiter.
func PackageName(spec string) string {
	name, _ := splitSpecifier(spec)

	return name
}

// splitSpecifier cuts a raw specifier at the leftmost delimiter among
// ==, >=, <= and @, returning the trimmed name and remainder.
func splitSpecifier(spec string) (name, rest string) {
	cut := len(spec)
	width := 0

	for _, delim := range specifierDelimiters {
		if idx := strings.Index(spec, delim); idx >= 0 && idx < cut {
			cut = idx
			width = len(delim)
		}
	}

	name = strings.TrimSpace(spec[:cut])
	if cut+width <= len(spec) {
		rest = strings.TrimSpace(spec[cut+width:])
	}

	return name, rest
}

// runCommand is the default Runner, capturing stdout and folding stderr into
// the returned error.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", runErr, msg)
		}

		return nil, runErr
	}

	return stdout.Bytes(), nil
}
