package requirements

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/reqfang/pkg/piplist"
)

// filePerm is the mode for a freshly written requirements file.
const filePerm = 0o644

// Render produces the requirements file content: one name==version line per
// dependency, optionally preceded by comment lines noting the interpreter
// version.
func Render(deps []piplist.Package, interpreterVersion string) []byte {
	var buf bytes.Buffer

	if interpreterVersion != "" {
		fmt.Fprintf(&buf, "# Python Version %s is recommended\n", interpreterVersion)
		fmt.Fprintf(&buf, "# Several Dependencies:\n")
	}

	for _, dep := range deps {
		fmt.Fprintf(&buf, "%s==%s\n", dep.Name, dep.Version)
	}

	return buf.Bytes()
}

// WriteFile renders the dependency list and writes it to path, overwriting
// any existing file. Write failures are fatal to the run and surfaced with
// the underlying error.
func WriteFile(path string, deps []piplist.Package, interpreterVersion string) error {
	writeErr := os.WriteFile(path, Render(deps, interpreterVersion), filePerm)
	if writeErr != nil {
		return fmt.Errorf("write %s: %w", path, writeErr)
	}

	return nil
}
