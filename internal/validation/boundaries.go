// Package validation enforces the repository's layering rules. The import
// checker loads package metadata through go/packages and reports imports
// that cross a boundary the architecture reserves; the env-read checker
// walks source files for process-environment access outside the
// configuration surfaces. Architecture tests run both over the module.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Error describes one boundary violation.
type Error struct {
	// Package is the import path of the offending package, or a file
	// path for source-level checks.
	Package string
	// Import is the offending import path, empty for source-level checks.
	Import string
	// Rule names the rule that fired.
	Rule string
	// Message explains the violation.
	Message string
}

func (e Error) String() string {
	if e.Import == "" {
		return fmt.Sprintf("%s: %s [%s]", e.Package, e.Message, e.Rule)
	}
	return fmt.Sprintf("%s imports %s: %s [%s]", e.Package, e.Import, e.Message, e.Rule)
}

// Rule constrains which imports the matched packages may use. Standard
// library imports are always allowed and are never presented to Forbid.
type Rule struct {
	// Name identifies the rule in violation reports.
	Name string
	// Match selects the packages the rule applies to.
	Match func(pkgPath string) bool
	// Forbid reports whether the matched package may not use the import.
	Forbid func(importPath string) bool
	// Reason explains the boundary in violation reports.
	Reason string
}

// LoadPackages loads metadata, including the transitive dependency graph,
// for the given patterns resolved relative to dir.
func LoadPackages(dir string, patterns ...string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedDeps,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			return nil, fmt.Errorf("load %s: %s", pkg.PkgPath, perr.Msg)
		}
	}
	return pkgs, nil
}

// CheckImports applies every rule to every package and returns the
// violations ordered by package, then import path.
func CheckImports(pkgs []*packages.Package, rules []Rule) []Error {
	var violations []Error
	for _, pkg := range pkgs {
		imports := make([]string, 0, len(pkg.Imports))
		for path := range pkg.Imports {
			imports = append(imports, path)
		}
		sort.Strings(imports)
		for _, rule := range rules {
			if rule.Match == nil || !rule.Match(pkg.PkgPath) {
				continue
			}
			for _, imported := range imports {
				if stdlibImport(imported) {
					continue
				}
				if rule.Forbid(imported) {
					violations = append(violations, Error{
						Package: pkg.PkgPath,
						Import:  imported,
						Rule:    rule.Name,
						Message: rule.Reason,
					})
				}
			}
		}
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Package != violations[j].Package {
			return violations[i].Package < violations[j].Package
		}
		return violations[i].Import < violations[j].Import
	})
	return violations
}

// DefaultRules returns the layering rules for the aquacore module tree:
// the domain and plugin-contract packages stay stdlib-only, the stocking
// engine sees domain types only, infrastructure never reaches up into
// services or adapters, plugin packs speak only the public contract, and
// nothing imports the binaries.
func DefaultRules(module string) []Rule {
	local := func(path string) bool {
		return path == module || strings.HasPrefix(path, module+"/")
	}
	under := func(path, dir string) bool {
		return path == module+"/"+dir || strings.HasPrefix(path, module+"/"+dir+"/")
	}
	return []Rule{
		{
			Name:   "domain-stdlib-only",
			Match:  func(p string) bool { return under(p, "pkg/domain") },
			Forbid: func(string) bool { return true },
			Reason: "pkg/domain depends on the standard library alone",
		},
		{
			Name:   "plugin-contract-stdlib-only",
			Match:  func(p string) bool { return under(p, "pkg/stockpluginapi") },
			Forbid: func(string) bool { return true },
			Reason: "the plugin contract carries no dependencies",
		},
		{
			Name:   "engine-sees-domain-only",
			Match:  func(p string) bool { return under(p, "internal/stocking") },
			Forbid: func(ip string) bool { return !under(ip, "pkg/domain") },
			Reason: "the stocking engine imports pkg/domain and nothing else",
		},
		{
			Name:  "infra-stays-below-services",
			Match: func(p string) bool { return under(p, "internal/infra") },
			Forbid: func(ip string) bool {
				if !local(ip) {
					return false
				}
				return under(ip, "internal/core") || under(ip, "internal/catalog") ||
					under(ip, "internal/adapters") || under(ip, "cmd")
			},
			Reason: "infrastructure never imports services or adapters",
		},
		{
			Name:  "core-stays-below-adapters",
			Match: func(p string) bool { return under(p, "internal/core") },
			Forbid: func(ip string) bool {
				return local(ip) && (under(ip, "internal/adapters") || under(ip, "cmd"))
			},
			Reason: "the service core never imports its adapters",
		},
		{
			Name:  "plugins-speak-the-contract",
			Match: func(p string) bool { return under(p, "plugins") },
			Forbid: func(ip string) bool {
				return local(ip) && !under(ip, "pkg/stockpluginapi")
			},
			Reason: "plugin packs use the public plugin contract only",
		},
		{
			Name:   "binaries-are-leaves",
			Match:  func(p string) bool { return !under(p, "cmd") },
			Forbid: func(ip string) bool { return under(ip, "cmd") },
			Reason: "nothing imports the command packages",
		},
	}
}

// stdlibImport reports whether path belongs to the standard library. The
// first path segment of every module-hosted package carries a dot.
func stdlibImport(path string) bool {
	first := path
	if i := strings.Index(path, "/"); i >= 0 {
		first = path[:i]
	}
	return !strings.Contains(first, ".")
}
