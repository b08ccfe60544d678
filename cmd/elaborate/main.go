// Command elaborate runs the elaboration driver and prints the
// relational result. It accepts either a JSON design fixture (the
// same shape elab_test.go builds by hand) or, with --top, a project
// config whose libraries are parsed from VHDL source files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/coerce"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/config"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/elab"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/extractor"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/foldeval"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/lower"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/modcache"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/model"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/override"
)

func main() {
	configPath := flag.String("config", "", "vhdl_elab.json project file")
	top := flag.String("top", "", "top-level unit, e.g. work.soc_top (source mode)")
	output := flag.String("output", "", "write the elaboration result JSON to file (default: stdout)")
	flag.StringVar(output, "o", "", "write the elaboration result JSON to file (shorthand)")

	overrides := override.New()
	flag.Func("g", "generic override NAME=VALUE (repeatable)", func(s string) error {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("expected NAME=VALUE, got %q", s)
		}
		overrides.Set(name, value)
		return nil
	})
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	opts := elab.DefaultOptions()
	opts.DisableDefaultBinding = !cfg.Analysis.ResolveDefaultBinding

	var (
		lib            library.Library
		topObj         *objtree.Object
		workingLibrary = "work"
	)

	switch {
	case flag.NArg() >= 1:
		fx, err := loadFixture(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading fixture: %v\n", err)
			os.Exit(1)
		}
		lib, topObj, err = fx.build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building design: %v\n", err)
			os.Exit(1)
		}
		if fx.Library != "" {
			workingLibrary = fx.Library
		}
		for k, v := range fx.Overrides {
			overrides.Set(k, v)
		}

	case *top != "" || cfg.Top != "":
		name := *top
		if name == "" {
			name = cfg.Top
		}
		lib, topObj, workingLibrary, err = loadSources(cfg, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading sources: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "Usage: elaborate [--config vhdl_elab.json] [-g NAME=VALUE] [--output file] (<fixture.json> | --top work.unit)")
		os.Exit(1)
	}

	for k, v := range cfg.Generics {
		overrides.Set(k, v)
	}

	ct, err := coerce.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling coercion table: %v\n", err)
		os.Exit(1)
	}

	sink := diag.NewSink()
	deps := &elab.Deps{
		Library:        lib,
		WorkingLibrary: workingLibrary,
		Folder:         foldeval.NewScalarFolder(),
		Registry:       lower.NewRegistry(),
		Lowerer:        lower.NewBasic(),
		Vlog:           lower.NewBasic(),
		Analyser:       lower.NewBasicAnalyser(),
		ModCache:       modcache.New(),
		Model:          model.New(),
		Coerce:         ct,
		Overrides:      overrides,
		Sink:           sink,
		Options:        opts,
	}

	root := elab.Elaborate(deps, topObj)
	result := elab.BuildResult(root, sink)

	enc := json.NewEncoder(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		enc = json.NewEncoder(f)
	}
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}

	if sink.HasErrors() {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(".")
}

// loadSources parses every configured library's files and resolves
// the top unit by qualified name.
func loadSources(cfg *config.Config, topName string) (library.Library, *objtree.Object, string, error) {
	resolved, err := cfg.ResolveLibraries(".")
	if err != nil {
		return nil, nil, "", err
	}

	src := extractor.New()
	var libs multiLibrary
	for _, rl := range resolved {
		fb := library.NewFileBacked(rl.Name, src)
		if err := fb.LoadFiles(rl.Files); err != nil {
			return nil, nil, "", err
		}
		libs = append(libs, fb)
	}

	qualified := strings.ToLower(topName)
	workingLibrary := "work"
	if lib, _, ok := strings.Cut(qualified, "."); ok {
		workingLibrary = lib
	} else {
		qualified = workingLibrary + "." + qualified
	}

	u, ok := libs.Lookup(qualified)
	if !ok || u.Object == nil {
		return nil, nil, "", fmt.Errorf("top-level unit %s not found in any configured library", qualified)
	}
	return libs, u.Object, workingLibrary, nil
}

// multiLibrary fans Library queries out over one FileBacked per
// configured library.
type multiLibrary []*library.FileBacked

func (m multiLibrary) Lookup(qualifiedName string) (library.Unit, bool) {
	for _, l := range m {
		if u, ok := l.Lookup(qualifiedName); ok {
			return u, true
		}
	}
	return library.Unit{}, false
}

func (m multiLibrary) UnitsOf(libraryName, entityName string, kind objtree.Kind) []library.Unit {
	var out []library.Unit
	for _, l := range m {
		out = append(out, l.UnitsOf(libraryName, entityName, kind)...)
	}
	return out
}

func (m multiLibrary) ForAll(libraryName string) []library.Unit {
	var out []library.Unit
	for _, l := range m {
		out = append(out, l.ForAll(libraryName)...)
	}
	return out
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	return &fx, nil
}
