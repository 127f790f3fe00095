package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePrefix = "stridekit/internal/"

var layers = []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"}

// importsUnder returns every stridekit import of the non-test files below
// dir, keyed by slash-separated file path.
func importsUnder(t *testing.T, dir string) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()
	out := map[string][]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		slash := filepath.ToSlash(path)
		for _, imp := range node.Imports {
			p := strings.Trim(imp.Path.Value, `"`)
			if strings.HasPrefix(p, modulePrefix) {
				out[slash] = append(out[slash], p)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return out
}

func TestModuleLayerImports(t *testing.T) {
	t.Parallel()
	for file, imports := range importsUnder(t, filepath.Join("..", "modules")) {
		module, layer := locate(file)
		if module == "" || layer == "" {
			continue
		}
		for _, imp := range imports {
			if !strings.HasPrefix(imp, modulePrefix+"modules/") {
				continue
			}
			if forbidden(module, layer, imp) {
				t.Errorf("%s (%s/%s) must not import %s", file, module, layer, imp)
			}
		}
	}
}

func TestPlatformStaysBelowModules(t *testing.T) {
	t.Parallel()
	for file, imports := range importsUnder(t, filepath.Join("..", "platform")) {
		for _, imp := range imports {
			if !strings.HasPrefix(imp, modulePrefix+"platform/") {
				t.Errorf("%s must only depend on other platform packages, imports %s", file, imp)
			}
		}
	}
}

func TestUIUsesOnlyDTOs(t *testing.T) {
	t.Parallel()
	for file, imports := range importsUnder(t, filepath.Join("..", "ui")) {
		for _, imp := range imports {
			if strings.HasPrefix(imp, modulePrefix+"modules/") && !strings.HasSuffix(imp, "/dto") {
				t.Errorf("%s reaches past a module's dto package: %s", file, imp)
			}
			if strings.HasPrefix(imp, modulePrefix+"bootstrap") {
				t.Errorf("%s imports the composition root", file)
			}
		}
	}
}

func TestForbiddenRules(t *testing.T) {
	t.Parallel()
	const base = modulePrefix + "modules/"
	cases := []struct {
		module, layer, imp string
		want               bool
	}{
		{"session", "usecase", base + "measurement/port/in", false},
		{"session", "usecase", base + "measurement/dto", false},
		{"session", "usecase", base + "measurement/service", true},
		{"session", "service", base + "measurement/domain", true},
		{"session", "service", base + "session/adapter/out", true},
		{"session", "service", base + "session/port/out", false},
		{"session", "domain", base + "session/service", true},
		{"measurement", "adapter/in", base + "measurement/domain", true},
		{"measurement", "adapter/in", base + "measurement/port/in", false},
		{"measurement", "adapter/out", base + "measurement/port/out", false},
	}
	for _, tc := range cases {
		if got := forbidden(tc.module, tc.layer, tc.imp); got != tc.want {
			t.Errorf("forbidden(%s, %s, %s) = %v, want %v", tc.module, tc.layer, tc.imp, got, tc.want)
		}
	}
}

func locate(path string) (module, layer string) {
	parts := strings.Split(path, "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "modules" {
			module = parts[i+1]
			break
		}
	}
	for _, l := range layers {
		if strings.Contains(path, "/"+l+"/") {
			return module, l
		}
	}
	return module, ""
}

func has(imp, segment string) bool {
	return strings.Contains(imp+"/", "/"+segment+"/")
}

func forbidden(module, layer, imp string) bool {
	if !strings.HasPrefix(imp, modulePrefix+"modules/"+module+"/") {
		// Other modules are reachable through their inbound ports and dtos only.
		return !has(imp, "port/in") && !has(imp, "dto")
	}
	switch layer {
	case "adapter/in":
		return !has(imp, "port/in") && !has(imp, "dto")
	case "usecase":
		return has(imp, "adapter")
	case "service":
		return has(imp, "adapter") || has(imp, "usecase")
	case "domain", "dto":
		return has(imp, "adapter") || has(imp, "usecase") || has(imp, "service") || has(imp, "port/in") || has(imp, "port/out")
	default:
		return false
	}
}
