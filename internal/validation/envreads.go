package validation

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
)

// envReadFuncs are the os package functions that expose the process
// environment.
var envReadFuncs = map[string]struct{}{
	"Getenv":    {},
	"LookupEnv": {},
	"Environ":   {},
}

// DefaultEnvReadAllowlist returns the files and directories that may read
// the process environment: the command packages plus the storage and blob
// driver factories.
func DefaultEnvReadAllowlist() []string {
	return []string{
		"cmd",
		"internal/blob/factory.go",
		"internal/core/storage.go",
		"internal/infra/blob/s3/store.go",
	}
}

// CheckEnvReads walks the non-test Go sources under root and reports
// process-environment reads from files outside the allowlist. Allowlist
// entries are slash-separated paths relative to root, matching either a
// single file or a directory subtree.
func CheckEnvReads(root string, allowlist []string) ([]Error, error) {
	var violations []Error
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := entry.Name()
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if envReadAllowed(rel, allowlist) {
			return nil
		}
		reads, err := envReadsInFile(fset, path)
		if err != nil {
			return err
		}
		for _, read := range reads {
			violations = append(violations, Error{
				Package: rel,
				Rule:    "env-reads-at-the-edges",
				Message: read,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return violations, nil
}

func envReadAllowed(rel string, allowlist []string) bool {
	for _, entry := range allowlist {
		if rel == entry || strings.HasPrefix(rel, entry+"/") {
			return true
		}
	}
	return false
}

func envReadsInFile(fset *token.FileSet, path string) ([]string, error) {
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var reads []string
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok || ident.Name != "os" {
			return true
		}
		if _, found := envReadFuncs[sel.Sel.Name]; !found {
			return true
		}
		pos := fset.Position(call.Pos())
		reads = append(reads, fmt.Sprintf("os.%s at line %d outside the configuration surfaces", sel.Sel.Name, pos.Line))
		return true
	})
	return reads, nil
}
