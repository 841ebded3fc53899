package main

import "testing"

func TestNoLayeringViolationsInRepo(t *testing.T) {
	violations, err := Check("../..")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, v := range violations {
		t.Errorf("%s: forbidden import %q (%s)", v.File, v.Import, v.Rule)
	}
}

func TestFileImportsParsesGroupedImportBlock(t *testing.T) {
	imports, err := fileImports("layercheck.go")
	if err != nil {
		t.Fatalf("fileImports: %v", err)
	}
	found := false
	for _, imp := range imports {
		if imp == "path/filepath" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected path/filepath among imports, got %v", imports)
	}
}
