package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/reqfang/internal/config"
	"github.com/Sumatoshi-tech/reqfang/pkg/piplist"
	"github.com/Sumatoshi-tech/reqfang/pkg/pyscan"
	"github.com/Sumatoshi-tech/reqfang/pkg/requirements"
)

// Report format constants.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// GenerateCommand holds the flags and injectable collaborators for the
// generate command.
type GenerateCommand struct {
	configPath  string
	output      string
	exclude     []string
	directory   string
	python      string
	pipFormat   string
	format      string
	dryRun      bool
	scanImports bool
	yes         bool
	noColor     bool

	// Injectable for tests.
	Stdout  io.Writer
	Stderr  io.Writer
	Confirm ConfirmFunc
	Runner  piplist.Runner
}

// NewGenerateCommand creates and configures the generate command.
func NewGenerateCommand() *cobra.Command {
	_, cobraCmd := newGenerateCommand()

	return cobraCmd
}

// newGenerateCommand builds the command pair; tests use the struct to inject
// writers, runner, and confirmation.
func newGenerateCommand() (*GenerateCommand, *cobra.Command) {
	cmd := &GenerateCommand{}

	cobraCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a filtered requirements.txt",
		Long: `Generate a requirements.txt from the installed packages, keeping only
those imported by source files under the scan directory.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.configPath, "config", "", "Config file path (default: .reqfang.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", config.DefaultOutput, "Output file name")
	cobraCmd.Flags().StringSliceVarP(&cmd.exclude, "exclude", "e", []string{}, "Packages to exclude (repeatable)")
	cobraCmd.Flags().StringVarP(&cmd.directory, "directory", "d", config.DefaultDirectory, "Directory to scan for imports")
	cobraCmd.Flags().StringVar(&cmd.python, "python", piplist.DefaultPython, "Python interpreter used to invoke pip")
	cobraCmd.Flags().StringVar(&cmd.pipFormat, "pip-format", piplist.FormatJSON, "pip list output format: json or freeze")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", FormatText, "Dry-run report format: text, json, or yaml")
	cobraCmd.Flags().BoolVar(&cmd.dryRun, "dry-run", false, "Show what would be written without writing")
	cobraCmd.Flags().BoolVar(&cmd.scanImports, "scan-imports", config.DefaultScanEnabled, "Scan Python files for imports")
	cobraCmd.Flags().BoolVarP(&cmd.yes, "yes", "y", false, "Overwrite the output file without asking")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")

	return cmd, cobraCmd
}

// Run executes the generate command.
func (c *GenerateCommand) Run(cmd *cobra.Command, _ []string) error {
	stdout, stderr := c.writers()

	if c.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	lister := piplist.NewLister(cfg.Pip.Python, cfg.Pip.Format)
	if c.Runner != nil {
		lister = lister.WithRunner(c.Runner)
	}

	color.New(color.Bold).Fprintln(stdout, "Fetching installed packages via `pip list`...")

	installed, listErr := lister.Installed(cmd.Context())
	if listErr != nil {
		return fmt.Errorf("list installed packages: %w", listErr)
	}

	if len(installed) == 0 {
		color.New(color.FgYellow).Fprintln(stdout, "No dependencies found from `pip list` output.")

		return nil
	}

	var used map[string]struct{}

	report := &requirements.Report{Installed: len(installed), ScanEnabled: cfg.Scan.Enabled}

	if cfg.Scan.Enabled {
		scanResult, scanErr := c.scan(cmd, cfg, stdout, stderr)
		if scanErr != nil {
			return scanErr
		}

		used = scanResult.Packages
		report.FilesScanned = scanResult.FilesScanned
		report.BytesScanned = scanResult.BytesScanned
	}

	kept, unknown := requirements.Filter(installed, cfg.Exclude, used)
	report.Kept = len(kept)
	report.Dependencies = kept
	report.UnknownImports = unknown

	if len(unknown) > 0 {
		color.New(color.FgYellow, color.Bold).Fprintf(stdout, "Warning: found %d package(s) in code but not installed:\n", len(unknown))

		for _, name := range unknown {
			fmt.Fprintf(stdout, "  - %s\n", name)
		}
	}

	action := "filtered"
	if cfg.Scan.Enabled {
		action = "used"
	}

	fmt.Fprintf(stdout, "\nFound %d dependencies. %d after %s.\n", len(installed), len(kept), action)

	if c.dryRun {
		return c.renderDryRun(report, cfg.Output, stdout)
	}

	if !c.confirmOverwrite(cfg.Output, stdout) {
		fmt.Fprintln(stdout, "Operation cancelled by user.")

		return nil
	}

	// Advisory header only; a failed probe just drops the comment lines.
	interpreterVersion, _ := lister.InterpreterVersion(cmd.Context()) //nolint:errcheck // best-effort

	writeErr := requirements.WriteFile(cfg.Output, kept, interpreterVersion)
	if writeErr != nil {
		return writeErr
	}

	color.New(color.FgGreen).Fprintf(stdout, "Successfully wrote %d dependencies to %s\n", len(kept), cfg.Output)

	return nil
}

// writers returns the configured output writers, defaulting to the process
// streams.
func (c *GenerateCommand) writers() (stdout, stderr io.Writer) {
	stdout, stderr = c.Stdout, c.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	return stdout, stderr
}

// loadConfig loads the viper config and overlays any explicitly set flags.
func (c *GenerateCommand) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = c.output
	}

	if flags.Changed("exclude") {
		cfg.Exclude = c.exclude
	}

	if flags.Changed("directory") {
		cfg.Directory = c.directory
	}

	if flags.Changed("python") {
		cfg.Pip.Python = c.python
	}

	if flags.Changed("pip-format") {
		cfg.Pip.Format = c.pipFormat
	}

	if flags.Changed("scan-imports") {
		cfg.Scan.Enabled = c.scanImports
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// scan runs the import scanner over the configured directory and prints the
// scan summary.
func (c *GenerateCommand) scan(cmd *cobra.Command, cfg *config.Config, stdout, stderr io.Writer) (*pyscan.Result, error) {
	color.New(color.Bold).Fprintf(stdout, "Scanning imports in directory: %s...\n", cfg.Directory)

	scanner := pyscan.New()
	scanner.MaxFileSize = cfg.MaxFileSizeBytes()
	scanner.Warnf = func(format string, args ...any) {
		color.New(color.FgYellow, color.Bold).Fprintf(stderr, "Warning: "+format+"\n", args...)
	}

	result, err := scanner.ScanDir(cmd.Context(), cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("scan imports: %w", err)
	}

	color.New(color.FgGreen).Fprintf(stdout, "Found %d unique imported packages.\n", len(result.Packages))
	fmt.Fprintf(stdout, "Scanned %s files (%s).\n",
		humanize.Comma(int64(result.FilesScanned)),
		humanize.Bytes(uint64(result.BytesScanned))) //nolint:gosec // sizes are non-negative

	return result, nil
}

// renderDryRun prints the computed result without touching the output file.
func (c *GenerateCommand) renderDryRun(report *requirements.Report, output string, stdout io.Writer) error {
	switch c.format {
	case FormatJSON:
		return report.FormatJSON(stdout)
	case FormatYAML:
		return report.FormatYAML(stdout)
	default:
		color.New(color.Bold).Fprintf(stdout, "\nDry Run: the following dependencies would be written to '%s':\n", output)
		fmt.Fprintln(stdout, renderDependencyTable(report.Dependencies))

		return nil
	}
}

// renderDependencyTable renders the kept dependencies as a two-column table.
func renderDependencyTable(deps []piplist.Package) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Package", "Version"})

	for _, dep := range deps {
		tbl.AppendRow(table.Row{dep.Name, dep.Version})
	}

	tbl.AppendFooter(table.Row{"Total", len(deps)})

	return tbl.Render()
}

// confirmOverwrite asks before clobbering an existing non-empty output file.
func (c *GenerateCommand) confirmOverwrite(output string, stdout io.Writer) bool {
	if c.yes {
		return true
	}

	info, statErr := os.Stat(output)
	if statErr != nil || info.Size() == 0 {
		return true
	}

	color.New(color.FgYellow, color.Bold).Fprintf(stdout, "Warning: output file '%s' already exists and is not empty.\n", output)

	confirm := c.Confirm
	if confirm == nil {
		confirm = StdinConfirm(os.Stdin, stdout)
	}

	return confirm("Do you want to overwrite it?")
}
