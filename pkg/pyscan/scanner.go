// Package pyscan extracts top-level imported package names from Python
// source trees by parsing each file with tree-sitter and walking the
// resulting syntax tree.
package pyscan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"
)

// Sentinel errors for scanner operations.
var (
	errNoRootNode  = errors.New("parser produced no root node")
	errSyntaxError = errors.New("syntax error in source")
	errFileTooBig  = errors.New("file exceeds max scan size")
)

// Tree-sitter node types of interest in the python grammar.
const (
	nodeImport        = "import_statement"
	nodeImportFrom    = "import_from_statement"
	nodeDottedName    = "dotted_name"
	nodeAliasedImport = "aliased_import"
	nodeRelative      = "relative_import"
	nodeError         = "ERROR"
)

// pythonExt is the source file extension selected during directory walks.
const pythonExt = ".py"

// enryLanguagePython is the language name enry reports for Python sources.
const enryLanguagePython = "Python"

var (
	pythonLang     *sitter.Language
	pythonLangOnce sync.Once
)

// pythonLanguage returns the shared tree-sitter python language.
func pythonLanguage() *sitter.Language {
	pythonLangOnce.Do(func() {
		pythonLang = sitter.NewLanguage(python.GetLanguage())
	})

	return pythonLang
}

// Result accumulates the outcome of a directory scan.
type Result struct {
	// Packages holds normalized (lower-cased) top-level package names.
	Packages map[string]struct{}
	// FilesScanned counts source files that parsed successfully.
	FilesScanned int
	// BytesScanned sums the sizes of successfully scanned files.
	BytesScanned int64
}

// Scanner walks a directory tree and reduces Python import statements to a
// set of normalized external package names. Files that fail to read or parse
// are skipped with a warning; the scan itself only fails when the root
// directory is unusable.
type Scanner struct {
	// MaxFileSize skips files larger than this many bytes when positive.
	MaxFileSize int64
	// Warnf receives per-file skip diagnostics. Defaults to a no-op.
	Warnf func(format string, args ...any)

	parser *sitter.Parser
}

// New creates a Scanner with a dedicated tree-sitter parser.
func New() *Scanner {
	parser := sitter.NewParser()
	parser.SetLanguage(pythonLanguage())

	return &Scanner{
		Warnf:  func(string, ...any) {},
		parser: parser,
	}
}

// ScanDir recursively scans every Python source file under dir and returns
// the set of imported top-level package names, excluding the standard
// library. Subdirectories are visited without depth limit; directory
// symlinks are not followed.
func (s *Scanner) ScanDir(ctx context.Context, dir string) (*Result, error) {
	result := &Result{Packages: make(map[string]struct{})}

	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		if !s.shouldScan(path) {
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			s.Warnf("could not stat %s: %v", path, infoErr)

			return nil
		}

		if s.MaxFileSize > 0 && info.Size() > s.MaxFileSize {
			s.Warnf("skipping %s: %v (%d bytes)", path, errFileTooBig, info.Size())

			return nil
		}

		names, scanErr := s.scanFile(ctx, path)
		if scanErr != nil {
			s.Warnf("could not parse %s: %v", path, scanErr)

			return nil
		}

		for _, name := range names {
			result.Packages[name] = struct{}{}
		}

		result.FilesScanned++
		result.BytesScanned += info.Size()

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, walkErr)
	}

	return result, nil
}

// shouldScan reports whether path looks like a Python source file. Files
// with a .py suffix always qualify; extensionless files qualify when enry
// classifies their content as Python (shebang scripts).
func (s *Scanner) shouldScan(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == pythonExt {
		return true
	}

	if ext != "" {
		return false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	return enry.GetLanguage(filepath.Base(path), content) == enryLanguagePython
}

// scanFile parses a single source file and returns its normalized external
// import names.
func (s *Scanner) scanFile(ctx context.Context, path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return s.Extract(ctx, content)
}

// Extract parses Python source and returns the normalized top-level package
// names it imports, excluding relative imports and the standard library.
// A source with syntax errors is rejected as a whole.
func (s *Scanner) Extract(ctx context.Context, content []byte) ([]string, error) {
	tree, err := s.parser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	if hasSyntaxError(root) {
		return nil, errSyntaxError
	}

	seen := make(map[string]struct{})

	var names []string

	collectImports(root, content, func(module string) {
		name := normalizeModule(module)
		if name == "" {
			return
		}

		if _, dup := seen[name]; dup {
			return
		}

		seen[name] = struct{}{}
		names = append(names, name)
	})

	return names, nil
}

// hasSyntaxError reports whether the parse tree contains an ERROR node.
func hasSyntaxError(n sitter.Node) bool {
	if n.Type() == nodeError {
		return true
	}

	for idx := range n.NamedChildCount() {
		if hasSyntaxError(n.NamedChild(idx)) {
			return true
		}
	}

	return false
}

// collectImports walks the tree in preorder and emits the raw dotted module
// path of every import target. Dispatch is by node type: plain imports yield
// every comma-separated target, from-imports yield the source module only
// when it is absolute.
func collectImports(n sitter.Node, src []byte, emit func(module string)) {
	switch n.Type() {
	case nodeImport:
		for idx := range n.NamedChildCount() {
			if module := importTargetName(n.NamedChild(idx), src); module != "" {
				emit(module)
			}
		}

		return
	case nodeImportFrom:
		module := n.ChildByFieldName("module_name")
		if module.IsNull() || module.Type() != nodeDottedName {
			// Relative imports (level > 0) never name an external package.
			return
		}

		emit(nodeText(module, src))

		return
	}

	for idx := range n.NamedChildCount() {
		collectImports(n.NamedChild(idx), src, emit)
	}
}

// importTargetName returns the dotted module path of one plain-import
// target. Aliased targets (import numpy as np) resolve to the real module
// name, never the alias.
func importTargetName(target sitter.Node, src []byte) string {
	switch target.Type() {
	case nodeDottedName:
		return nodeText(target, src)
	case nodeAliasedImport:
		name := target.ChildByFieldName("name")
		if name.IsNull() {
			return ""
		}

		return nodeText(name, src)
	default:
		return ""
	}
}

// normalizeModule reduces a dotted module path to its lower-cased top-level
// segment, or empty when the segment belongs to the standard library.
func normalizeModule(module string) string {
	top, _, _ := strings.Cut(module, ".")

	top = strings.ToLower(strings.TrimSpace(top))
	if top == "" {
		return ""
	}

	if _, stdlib := stdlibModules[top]; stdlib {
		return ""
	}

	return top
}

// nodeText returns the source text covered by a node.
func nodeText(n sitter.Node, src []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(src) || start > end {
		return ""
	}

	return string(src[start:end])
}
