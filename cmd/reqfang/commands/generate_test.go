package commands //nolint:testpackage // testing internal implementation.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/reqfang/pkg/piplist"
)

const pipJSON = `[{"name":"numpy","version":"1.2.3"},{"name":"Flask","version":"2.0.0"}]`

// fakePip answers pip list invocations with the given JSON and interpreter
// probes with a fixed version string.
func fakePip(listOutput string) piplist.Runner {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		for _, arg := range args {
			if arg == "-c" {
				return []byte("3.11.9\n"), nil
			}
		}

		return []byte(listOutput), nil
	}
}

type generateFixture struct {
	cmd    *GenerateCommand
	stdout *bytes.Buffer
	output string
	args   []string
}

func newFixture(t *testing.T, listOutput string) *generateFixture {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "reqfang.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o600))

	scanDir := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(scanDir, 0o750))

	stdout := &bytes.Buffer{}

	cmd, _ := newGenerateCommand()
	cmd.Stdout = stdout
	cmd.Stderr = stdout
	cmd.Runner = fakePip(listOutput)

	return &generateFixture{
		cmd:    cmd,
		stdout: stdout,
		output: filepath.Join(dir, "requirements.txt"),
		args: []string{
			"--config", configPath,
			"--output", filepath.Join(dir, "requirements.txt"),
			"--directory", scanDir,
			"--no-color",
		},
	}
}

func (f *generateFixture) run(t *testing.T, extra ...string) error {
	t.Helper()

	cmd, cobraCmd := newGenerateCommand()
	cmd.Stdout = f.cmd.Stdout
	cmd.Stderr = f.cmd.Stderr
	cmd.Runner = f.cmd.Runner
	cmd.Confirm = f.cmd.Confirm

	cobraCmd.SetArgs(append(append([]string{}, f.args...), extra...))

	return cobraCmd.Execute()
}

func (f *generateFixture) writeSource(t *testing.T, name, content string) {
	t.Helper()

	dir := f.args[5] // --directory value
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestGenerate_WritesUsedDependencies(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.writeSource(t, "app.py", "import numpy\n")

	require.NoError(t, fixture.run(t))

	content, err := os.ReadFile(fixture.output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "numpy==1.2.3")
	assert.NotContains(t, string(content), "Flask")
	assert.Contains(t, string(content), "# Python Version 3.11.9 is recommended")
}

func TestGenerate_DryRunNeverWrites(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.writeSource(t, "app.py", "import numpy\n")

	require.NoError(t, fixture.run(t, "--dry-run"))

	_, statErr := os.Stat(fixture.output)
	require.ErrorIs(t, statErr, os.ErrNotExist)
	assert.Contains(t, fixture.stdout.String(), "Dry Run")
	assert.Contains(t, fixture.stdout.String(), "numpy")
}

func TestGenerate_DryRunJSONReport(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.writeSource(t, "app.py", "import numpy\n")

	require.NoError(t, fixture.run(t, "--dry-run", "--format", "json"))

	assert.Contains(t, fixture.stdout.String(), `"kept": 1`)
}

func TestGenerate_ScanDisabledIsPassThrough(t *testing.T) {
	fixture := newFixture(t, pipJSON)

	require.NoError(t, fixture.run(t, "--scan-imports=false", "--exclude", "flask"))

	content, err := os.ReadFile(fixture.output)
	require.NoError(t, err)

	// Case-insensitive exclusion: installed "Flask" matches exclude "flask".
	assert.Contains(t, string(content), "numpy==1.2.3")
	assert.NotContains(t, string(content), "Flask")
}

func TestGenerate_UnknownImportsReported(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.writeSource(t, "app.py", "import numpy\nimport nothingishere\n")

	require.NoError(t, fixture.run(t))

	out := fixture.stdout.String()
	assert.Contains(t, out, "not installed")
	assert.Contains(t, out, "nothingishere")

	content, err := os.ReadFile(fixture.output)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "nothingishere")
}

func TestGenerate_ConfirmDeclinedLeavesFileAlone(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.writeSource(t, "app.py", "import numpy\n")

	previous := "stale==0.0.1\n"
	require.NoError(t, os.WriteFile(fixture.output, []byte(previous), 0o600))

	fixture.cmd.Confirm = func(string) bool { return false }

	require.NoError(t, fixture.run(t))

	content, err := os.ReadFile(fixture.output)
	require.NoError(t, err)
	assert.Equal(t, previous, string(content))
	assert.Contains(t, fixture.stdout.String(), "cancelled")
}

func TestGenerate_YesSkipsConfirmation(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.writeSource(t, "app.py", "import numpy\n")

	require.NoError(t, os.WriteFile(fixture.output, []byte("stale==0.0.1\n"), 0o600))

	fixture.cmd.Confirm = func(string) bool {
		t.Fatal("confirm should not be called with --yes")

		return false
	}

	require.NoError(t, fixture.run(t, "--yes"))

	content, err := os.ReadFile(fixture.output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "numpy==1.2.3")
}

func TestGenerate_PipFailureAbortsBeforeWrite(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.cmd.Runner = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, os.ErrPermission
	}

	require.Error(t, fixture.run(t))

	_, statErr := os.Stat(fixture.output)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestGenerate_EmptyManifestIsNotAnError(t *testing.T) {
	fixture := newFixture(t, "[]")

	require.NoError(t, fixture.run(t))

	_, statErr := os.Stat(fixture.output)
	require.ErrorIs(t, statErr, os.ErrNotExist)
	assert.Contains(t, fixture.stdout.String(), "No dependencies found")
}

func TestGenerate_NoImportsYieldsEmptyOutput(t *testing.T) {
	fixture := newFixture(t, pipJSON)
	fixture.writeSource(t, "app.py", "import os\nimport sys\n")

	require.NoError(t, fixture.run(t))

	content, err := os.ReadFile(fixture.output)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "==")
	assert.Contains(t, fixture.stdout.String(), "0 after used")
}

func TestConfirm_StdinAnswers(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	assert.True(t, StdinConfirm(strings.NewReader("y\n"), out)("Overwrite?"))
	assert.False(t, StdinConfirm(strings.NewReader("no\n"), out)("Overwrite?"))
	assert.True(t, StdinConfirm(strings.NewReader("maybe\nyes\n"), out)("Overwrite?"))
	assert.False(t, StdinConfirm(strings.NewReader(""), out)("Overwrite?"))
	assert.Contains(t, out.String(), "Please enter 'y' for yes or 'n' for no.")
}
