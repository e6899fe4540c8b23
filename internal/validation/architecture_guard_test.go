package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func moduleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above working directory")
		}
		dir = parent
	}
}

// TestModuleLayering loads the real module and applies the layering rules
// to every package.
func TestModuleLayering(t *testing.T) {
	pkgs, err := LoadPackages(moduleRoot(t), "aquacore/...")
	if err != nil {
		t.Fatalf("load module packages: %v", err)
	}
	if len(pkgs) == 0 {
		t.Fatal("no packages loaded")
	}
	for _, violation := range CheckImports(pkgs, DefaultRules("aquacore")) {
		t.Errorf("%s", violation)
	}
}

// TestEnvReadsConfinedToConfigSurfaces verifies that only the command
// packages and the driver factories read the process environment.
func TestEnvReadsConfinedToConfigSurfaces(t *testing.T) {
	violations, err := CheckEnvReads(moduleRoot(t), DefaultEnvReadAllowlist())
	if err != nil {
		t.Fatalf("check env reads: %v", err)
	}
	for _, violation := range violations {
		t.Errorf("%s", violation)
	}
}
