package requirements

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/reqfang/pkg/piplist"
)

// Report summarizes one generation run for machine-readable output.
type Report struct {
	Installed      int               `json:"installed"       yaml:"installed"`
	Kept           int               `json:"kept"            yaml:"kept"`
	ScanEnabled    bool              `json:"scan_enabled"    yaml:"scan_enabled"`
	FilesScanned   int               `json:"files_scanned"   yaml:"files_scanned"`
	BytesScanned   int64             `json:"bytes_scanned"   yaml:"bytes_scanned"`
	Dependencies   []piplist.Package `json:"dependencies"    yaml:"dependencies"`
	UnknownImports []string          `json:"unknown_imports" yaml:"unknown_imports"`
}

// FormatJSON writes the report as indented JSON.
func (r *Report) FormatJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(r)
	if encodeErr != nil {
		return fmt.Errorf("format report json: %w", encodeErr)
	}

	return nil
}

// FormatYAML writes the report as YAML.
func (r *Report) FormatYAML(w io.Writer) error {
	data, marshalErr := yaml.Marshal(r)
	if marshalErr != nil {
		return fmt.Errorf("format report yaml: %w", marshalErr)
	}

	_, writeErr := w.Write(data)
	if writeErr != nil {
		return fmt.Errorf("format report yaml: %w", writeErr)
	}

	return nil
}
