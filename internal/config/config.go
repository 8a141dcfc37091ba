package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/reqfang/pkg/piplist"
)

// Config is the top-level configuration struct for reqfang.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Output    string     `mapstructure:"output"`
	Exclude   []string   `mapstructure:"exclude"`
	Directory string     `mapstructure:"directory"`
	Pip       PipConfig  `mapstructure:"pip"`
	Scan      ScanConfig `mapstructure:"scan"`
}

// PipConfig holds package-manager invocation settings.
type PipConfig struct {
	Python string `mapstructure:"python"`
	Format string `mapstructure:"format"`
}

// ScanConfig holds import-scanner settings.
type ScanConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MaxFileSize string `mapstructure:"max_file_size"`
}

// Sentinel errors for configuration validation.
var (
	// ErrEmptyOutput indicates the output path is empty.
	ErrEmptyOutput = errors.New("output must not be empty")
	// ErrEmptyDirectory indicates the scan directory is empty.
	ErrEmptyDirectory = errors.New("directory must not be empty")
	// ErrInvalidPipFormat indicates the pip list format is unsupported.
	ErrInvalidPipFormat = errors.New("pip.format must be json or freeze")
	// ErrInvalidMaxFileSize indicates the max file size is unparsable.
	ErrInvalidMaxFileSize = errors.New("scan.max_file_size is not a valid byte size")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Output == "" {
		return ErrEmptyOutput
	}

	if c.Directory == "" {
		return ErrEmptyDirectory
	}

	switch c.Pip.Format {
	case piplist.FormatJSON, piplist.FormatFreeze:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPipFormat, c.Pip.Format)
	}

	if c.Scan.MaxFileSize != "" {
		_, parseErr := humanize.ParseBytes(c.Scan.MaxFileSize)
		if parseErr != nil {
			return fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Scan.MaxFileSize)
		}
	}

	return nil
}

// MaxFileSizeBytes returns the parsed scan.max_file_size, or zero when
// unset (no limit). Validate must have passed first.
func (c *Config) MaxFileSizeBytes() int64 {
	if c.Scan.MaxFileSize == "" {
		return 0
	}

	size, parseErr := humanize.ParseBytes(c.Scan.MaxFileSize)
	if parseErr != nil {
		return 0
	}

	return int64(size)
}
