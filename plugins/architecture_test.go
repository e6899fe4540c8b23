package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Species packs depend on the stable facade only. Anything under internal/ or
// the raw domain model is off limits; packs reaching past the facade would
// break on every internal refactor.
var forbiddenImportPrefixes = []string{
	"aquacore/internal/",
	"aquacore/pkg/domain",
}

// TestPacksImportOnlyTheFacade walks every pack source file and fails on
// imports that bypass pkg/stockpluginapi.
func TestPacksImportOnlyTheFacade(t *testing.T) {
	root, err := os.Getwd()
	if err != nil {
		t.Fatalf("cannot get working dir: %v", err)
	}

	type violation struct {
		path     string
		imported string
	}
	var violations []violation

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		if path == filepath.Join(root, "architecture_test.go") {
			return nil
		}

		// #nosec G304 -- path comes from WalkDir over the local pack tree.
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, imported := range importedPaths(string(data)) {
			for _, prefix := range forbiddenImportPrefixes {
				if strings.HasPrefix(imported, prefix) {
					violations = append(violations, violation{path: path, imported: imported})
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk plugins dir: %v", walkErr)
	}

	for _, v := range violations {
		t.Errorf("pack file imports %s past the facade: %s", v.imported, v.path)
	}
}

// importedPaths scans source text for import specs, handling both the single
// and the parenthesized form. A line scanner keeps the test free of go/parser
// and self-contained.
func importedPaths(src string) []string {
	var out []string
	inBlock := false
	for _, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case !inBlock && strings.HasPrefix(line, "import ("):
			inBlock = true
		case !inBlock && strings.HasPrefix(line, "import "):
			if q := quotedPath(line); q != "" {
				out = append(out, q)
			}
		case inBlock && line == ")":
			inBlock = false
		case inBlock:
			if q := quotedPath(line); q != "" {
				out = append(out, q)
			}
		}
	}
	return out
}

func quotedPath(line string) string {
	start := strings.Index(line, "\"")
	if start == -1 {
		return ""
	}
	end := strings.Index(line[start+1:], "\"")
	if end == -1 {
		return ""
	}
	return line[start+1 : start+1+end]
}
