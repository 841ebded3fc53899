// Command layercheck verifies the module's dependency direction:
// infrastructure/ must stay free of domain and system knowledge, and
// domain/ must never import system/. Adapted from the teacher's
// tools/architecture-checker, trimmed from its service-vs-framework
// keyword scan down to the two layering rules this repo actually has.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "github.com/timewave-computer/causality/"

// rule forbids files under dir from importing any package whose import
// path contains forbidden.
type rule struct {
	dir        string
	forbidden  []string
	annotation string
}

var rules = []rule{
	{
		dir:        "infrastructure",
		forbidden:  []string{"/domain/", "/system/", "/cmd/"},
		annotation: "infrastructure/ must not depend on domain/ or system/",
	},
	{
		dir:        "domain",
		forbidden:  []string{"/system/", "/cmd/"},
		annotation: "domain/ must not depend on system/",
	},
}

// Violation is one forbidden import found in a source file.
type Violation struct {
	File   string
	Import string
	Rule   string
}

func main() {
	root := flag.String("dir", ".", "repository root to scan")
	flag.Parse()

	violations, err := Check(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "layercheck:", err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("layercheck: no violations")
		return
	}
	for _, v := range violations {
		fmt.Printf("%s: forbidden import %q (%s)\n", v.File, v.Import, v.Rule)
	}
	os.Exit(1)
}

// Check walks root and returns every layering violation found.
func Check(root string) ([]Violation, error) {
	var violations []Violation

	for _, r := range rules {
		dir := filepath.Join(root, r.dir)
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			imports, err := fileImports(path)
			if err != nil {
				return err
			}
			for _, imp := range imports {
				if !strings.HasPrefix(imp, modulePath) {
					continue
				}
				for _, f := range r.forbidden {
					if strings.Contains(imp, f) {
						violations = append(violations, Violation{File: path, Import: imp, Rule: r.annotation})
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(violations, func(i, j int) bool { return violations[i].File < violations[j].File })
	return violations, nil
}

// fileImports extracts the import path strings from a Go source file's
// import block without a full AST parse.
func fileImports(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var imports []string
	inBlock := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "import ("):
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock:
			if imp := extractQuoted(line); imp != "" {
				imports = append(imports, imp)
			}
		case strings.HasPrefix(line, "import "):
			if imp := extractQuoted(line); imp != "" {
				imports = append(imports, imp)
			}
		}
	}
	return imports, scanner.Err()
}

func extractQuoted(line string) string {
	start := strings.Index(line, `"`)
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(line, `"`)
	if end <= start {
		return ""
	}
	return line[start+1 : end]
}
