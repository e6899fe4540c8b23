package validation

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

func fakePkg(path string, imports ...string) *packages.Package {
	p := &packages.Package{PkgPath: path, Imports: map[string]*packages.Package{}}
	for _, imported := range imports {
		p.Imports[imported] = &packages.Package{PkgPath: imported}
	}
	return p
}

func ruleNames(violations []Error) []string {
	names := make([]string, 0, len(violations))
	for _, v := range violations {
		names = append(names, v.Rule)
	}
	return names
}

func TestCheckImportsAcceptsTheIntendedGraph(t *testing.T) {
	pkgs := []*packages.Package{
		fakePkg("aquacore/pkg/domain", "errors", "fmt", "time"),
		fakePkg("aquacore/pkg/stockpluginapi", "strings"),
		fakePkg("aquacore/internal/stocking", "aquacore/pkg/domain", "math", "sort"),
		fakePkg("aquacore/internal/catalog", "aquacore/internal/stocking", "aquacore/pkg/domain", "gopkg.in/yaml.v3"),
		fakePkg("aquacore/internal/infra/persistence/sqlite", "aquacore/internal/infra/persistence/memory", "aquacore/pkg/domain", "modernc.org/sqlite"),
		fakePkg("aquacore/internal/core", "aquacore/internal/catalog", "aquacore/internal/infra/persistence/memory", "aquacore/pkg/domain"),
		fakePkg("aquacore/internal/adapters/httpapi", "aquacore/internal/core", "aquacore/pkg/domain"),
		fakePkg("aquacore/plugins/freshwater", "aquacore/pkg/stockpluginapi"),
		fakePkg("aquacore/cmd/aquacore", "aquacore/internal/adapters/httpapi", "github.com/spf13/cobra"),
	}

	if violations := CheckImports(pkgs, DefaultRules("aquacore")); len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}
}

func TestCheckImportsFlagsBoundaryCrossings(t *testing.T) {
	cases := []struct {
		name     string
		pkg      *packages.Package
		wantRule string
	}{
		{
			name:     "domain reaching for yaml",
			pkg:      fakePkg("aquacore/pkg/domain", "gopkg.in/yaml.v3"),
			wantRule: "domain-stdlib-only",
		},
		{
			name:     "plugin contract importing domain",
			pkg:      fakePkg("aquacore/pkg/stockpluginapi", "aquacore/pkg/domain"),
			wantRule: "plugin-contract-stdlib-only",
		},
		{
			name:     "engine importing the catalog",
			pkg:      fakePkg("aquacore/internal/stocking", "aquacore/internal/catalog"),
			wantRule: "engine-sees-domain-only",
		},
		{
			name:     "engine importing a third party",
			pkg:      fakePkg("aquacore/internal/stocking", "github.com/agnivade/levenshtein"),
			wantRule: "engine-sees-domain-only",
		},
		{
			name:     "infrastructure importing the service core",
			pkg:      fakePkg("aquacore/internal/infra/persistence/sqlite", "aquacore/internal/core"),
			wantRule: "infra-stays-below-services",
		},
		{
			name:     "service core importing an adapter",
			pkg:      fakePkg("aquacore/internal/core", "aquacore/internal/adapters/httpapi"),
			wantRule: "core-stays-below-adapters",
		},
		{
			name:     "plugin pack importing internals",
			pkg:      fakePkg("aquacore/plugins/saltwater", "aquacore/internal/core"),
			wantRule: "plugins-speak-the-contract",
		},
		{
			name:     "library importing a binary",
			pkg:      fakePkg("aquacore/internal/catalog", "aquacore/cmd/aquacore"),
			wantRule: "binaries-are-leaves",
		},
	}

	rules := DefaultRules("aquacore")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			violations := CheckImports([]*packages.Package{tc.pkg}, rules)
			if len(violations) == 0 {
				t.Fatalf("expected a violation for %s", tc.pkg.PkgPath)
			}
			for _, rule := range ruleNames(violations) {
				if rule == tc.wantRule {
					return
				}
			}
			t.Fatalf("expected rule %s, got %v", tc.wantRule, ruleNames(violations))
		})
	}
}

func TestCheckImportsIgnoresStdlib(t *testing.T) {
	pkg := fakePkg("aquacore/pkg/domain", "encoding/json", "net/http", "crypto/rand")
	if violations := CheckImports([]*packages.Package{pkg}, DefaultRules("aquacore")); len(violations) != 0 {
		t.Fatalf("stdlib imports should pass, got %v", violations)
	}
}

func TestCheckImportsOrdersViolations(t *testing.T) {
	pkgs := []*packages.Package{
		fakePkg("aquacore/pkg/domain", "gopkg.in/yaml.v3", "github.com/spf13/cobra"),
		fakePkg("aquacore/internal/stocking", "aquacore/internal/core"),
	}
	violations := CheckImports(pkgs, DefaultRules("aquacore"))
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(violations), violations)
	}
	if violations[0].Package != "aquacore/internal/stocking" {
		t.Fatalf("unexpected order: %v", violations)
	}
	if violations[1].Import != "github.com/spf13/cobra" || violations[2].Import != "gopkg.in/yaml.v3" {
		t.Fatalf("imports not sorted: %v", violations)
	}
}

func TestStdlibImportHeuristic(t *testing.T) {
	cases := map[string]bool{
		"fmt":                        true,
		"encoding/json":              true,
		"net/http/httptest":          true,
		"golang.org/x/sync/errgroup": false,
		"gopkg.in/yaml.v3":           false,
		"aquacore/pkg/domain":        false,
	}
	for path, want := range cases {
		if got := stdlibImport(path); got != want {
			t.Fatalf("stdlibImport(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestErrorString(t *testing.T) {
	withImport := Error{Package: "aquacore/internal/stocking", Import: "aquacore/internal/core", Rule: "engine-sees-domain-only", Message: "nope"}
	if got := withImport.String(); !strings.Contains(got, "imports aquacore/internal/core") {
		t.Fatalf("unexpected string %q", got)
	}
	sourceLevel := Error{Package: "internal/catalog/loader.go", Rule: "env-reads-at-the-edges", Message: "os.Getenv at line 12 outside the configuration surfaces"}
	if got := sourceLevel.String(); strings.Contains(got, "imports") {
		t.Fatalf("unexpected string %q", got)
	}
}
