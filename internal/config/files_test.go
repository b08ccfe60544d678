package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		path := filepath.Join(root, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("-- empty\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveLibrariesGlobs(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"top.vhd",
		"rtl/counter.vhd",
		"rtl/nested/fifo.vhdl",
		"tb/counter_tb.vhd",
		"rtl/readme.txt",
	)

	cfg := &Config{Libraries: map[string]LibraryConfig{
		"work": {Files: []string{"*.vhd", "rtl/**/*.vhd", "rtl/**/*.vhdl"}},
		"sim":  {Files: []string{"tb/*.vhd"}},
	}}

	libs, err := cfg.ResolveLibraries(root)
	if err != nil {
		t.Fatalf("ResolveLibraries: %v", err)
	}
	if len(libs) != 2 {
		t.Fatalf("expected 2 libraries, got %d", len(libs))
	}
	// Sorted by name: sim first, work second.
	if libs[0].Name != "sim" || len(libs[0].Files) != 1 {
		t.Errorf("sim = %+v, want the one testbench file", libs[0])
	}
	if libs[1].Name != "work" || len(libs[1].Files) != 3 {
		t.Errorf("work = %+v, want top.vhd + 2 rtl files (no .txt)", libs[1])
	}
}

func TestResolveLibrariesExclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.vhd", "b.vhd", "legacy.vhd")

	cfg := &Config{Libraries: map[string]LibraryConfig{
		"work": {
			Files:   []string{"*.vhd"},
			Exclude: []string{"legacy.vhd"},
		},
	}}

	libs, err := cfg.ResolveLibraries(root)
	if err != nil {
		t.Fatalf("ResolveLibraries: %v", err)
	}
	if len(libs) != 1 || len(libs[0].Files) != 2 {
		t.Fatalf("expected 2 files after exclusion, got %+v", libs)
	}
	for _, f := range libs[0].Files {
		if filepath.Base(f) == "legacy.vhd" {
			t.Errorf("legacy.vhd should have been excluded")
		}
	}
}

func TestFileLibrary(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "rtl/counter.vhd", "tb/counter_tb.vhd", "stray.vhd")

	cfg := &Config{Libraries: map[string]LibraryConfig{
		"rtl_lib": {Files: []string{"rtl/*.vhd"}},
		"sim":     {Files: []string{"tb/*.vhd"}},
	}}

	if lib := cfg.FileLibrary(filepath.Join(root, "rtl", "counter.vhd"), root); lib != "rtl_lib" {
		t.Errorf("counter.vhd library = %q, want rtl_lib", lib)
	}
	if lib := cfg.FileLibrary(filepath.Join(root, "stray.vhd"), root); lib != "work" {
		t.Errorf("unclaimed file library = %q, want work", lib)
	}
}

func TestLoadFileDefaults(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "vhdl_elab.json")
	body := `{
  "top": "work.soc_top",
  "generics": {"soc_top.width": "16"},
  "analysis": {"resolveDefaultBinding": true}
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Top != "work.soc_top" {
		t.Errorf("Top = %q", cfg.Top)
	}
	if cfg.Standard != "2008" {
		t.Errorf("Standard default = %q, want 2008", cfg.Standard)
	}
	if cfg.Libraries == nil {
		t.Errorf("Libraries should default to the work glob set")
	}
	if cfg.Generics["soc_top.width"] != "16" {
		t.Errorf("Generics = %+v", cfg.Generics)
	}
	if !cfg.Analysis.ResolveDefaultBinding {
		t.Errorf("ResolveDefaultBinding should be set")
	}
}
