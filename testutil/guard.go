// Package testutil provides helpers for the architecture and API boundary
// tests spread across the repository.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"

	"aquacore/internal/validation"
)

// loadPackages is a seam for tests.
var loadPackages = validation.LoadPackages

// LoadModulePackages loads package metadata, including the transitive
// dependency graph, for the patterns resolved against the calling test's
// directory. It fails the test on any load error.
func LoadModulePackages(t testing.TB, patterns ...string) []*packages.Package {
	t.Helper()
	pkgs, err := loadPackages(".", patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	return pkgs
}

// AssertNoTransitiveDependency fails the test when any package in the
// transitive dependency graph of pattern satisfies the forbidden
// predicate. The reason string is appended to the failure.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	pkgs, err := loadPackages(".", pattern)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	failIfTransitiveViolations(t, reason, transitiveViolations(pkgs, forbidden))
}

// AssertNoDirectImports parses the non-test Go files in dir (typically
// "." from within the package) and fails when any import path satisfies
// the forbidden predicate. Build tags are not honored.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("scan imports: %v", err)
	}
	failIfDirectViolations(t, reason, viols)
}

// DomainImportForbidden matches import paths pointing at the domain model.
func DomainImportForbidden(path string) bool {
	return strings.HasSuffix(path, "/pkg/domain") || strings.Contains(path, "/pkg/domain/")
}

// InternalImportForbidden matches import paths containing an internal
// segment.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/")
}

func transitiveViolations(roots []*packages.Package, forbidden func(path string) bool) []string {
	seen := make(map[string]bool)
	var viols []string
	var visit func(pkg *packages.Package)
	visit = func(pkg *packages.Package) {
		if seen[pkg.PkgPath] {
			return
		}
		seen[pkg.PkgPath] = true
		if forbidden(pkg.PkgPath) {
			viols = append(viols, pkg.PkgPath)
		}
		for _, imported := range pkg.Imports {
			visit(imported)
		}
	}
	for _, pkg := range roots {
		visit(pkg)
	}
	sort.Strings(viols)
	return viols
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		parsed, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range parsed.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			if forbidden(path) {
				viols = append(viols, path+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfTransitiveViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden transitive dependency detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

func failIfDirectViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden direct imports detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}
