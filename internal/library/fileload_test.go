package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/extractor"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

type fakeSource struct {
	facts map[string]extractor.FileFacts
}

func (f fakeSource) Extract(path string) (extractor.FileFacts, error) {
	return f.facts[path], nil
}

func TestFileBackedLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.vhd")
	if err := os.WriteFile(path, []byte("-- fixture\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := fakeSource{facts: map[string]extractor.FileFacts{
		path: {
			File: path,
			Entities: []extractor.Entity{{
				Name: "foo",
				Line: 3,
				Generics: []extractor.Generic{
					{Name: "WIDTH", Type: "integer", Default: "8", Line: 4},
				},
				Ports: []extractor.Port{
					{Name: "clk", Direction: "in", Type: "std_logic", Line: 6},
					{Name: "q", Direction: "out", Type: "std_logic_vector(7 downto 0)", Line: 7},
				},
			}},
			Architectures: []extractor.Architecture{{Name: "rtl", EntityName: "foo", Line: 10}},
		},
	}}

	lib := NewFileBacked("work", src)
	if err := lib.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	u, ok := lib.Lookup("work.foo")
	if !ok {
		t.Fatalf("expected entity work.foo to be registered")
	}
	ent := u.Object
	if len(ent.Generics) != 1 {
		t.Fatalf("expected 1 generic on work.foo, got %d", len(ent.Generics))
	}
	g := ent.Generics[0]
	if g.Family != objtree.GenericScalar || g.Type == nil || g.Type.Name != "INTEGER" {
		t.Errorf("WIDTH generic = family %v type %v, want scalar INTEGER", g.Family, g.Type)
	}
	if g.Value == nil || g.Value.Kind != objtree.KindLiteral || g.Value.IntVal != 8 {
		t.Errorf("WIDTH default = %+v, want integer literal 8", g.Value)
	}
	if len(ent.Ports) != 2 {
		t.Fatalf("expected 2 ports, got %d", len(ent.Ports))
	}
	if p := ent.Ports[0]; p.Direction != objtree.DirIn || p.Type.Name != "STD_LOGIC" {
		t.Errorf("clk = %+v, want in STD_LOGIC", p)
	}
	if p := ent.Ports[1]; p.Direction != objtree.DirOut || !p.Type.Array || !p.Type.Constrained {
		t.Errorf("q should carry a constrained array subtype, got %+v", p.Type)
	}

	units := lib.UnitsOf("work", "foo", objtree.KindArch)
	if len(units) != 1 {
		t.Fatalf("expected one architecture for entity foo, got %d", len(units))
	}
	if units[0].ModTime.Before(time.Unix(0, 0)) {
		t.Fatalf("expected a real mtime")
	}
}

func TestFileBackedLinkResolvesInstances(t *testing.T) {
	dir := t.TempDir()
	topPath := filepath.Join(dir, "top.vhd")
	subPath := filepath.Join(dir, "sub.vhd")
	for _, p := range []string{topPath, subPath} {
		if err := os.WriteFile(p, []byte("-- fixture\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	src := fakeSource{facts: map[string]extractor.FileFacts{
		topPath: {
			File:     topPath,
			Entities: []extractor.Entity{{Name: "top", Line: 1}},
			Architectures: []extractor.Architecture{{
				Name: "rtl", EntityName: "top", Line: 5,
				Instances: []extractor.Instance{
					// Forward reference: sub.vhd loads after top.vhd.
					{Label: "u_sub", Target: "work.sub", Direct: true, Line: 7},
				},
			}},
		},
		subPath: {
			File:          subPath,
			Entities:      []extractor.Entity{{Name: "sub", Line: 1}},
			Architectures: []extractor.Architecture{{Name: "rtl", EntityName: "sub", Line: 4}},
		},
	}}

	lib := NewFileBacked("work", src)
	if err := lib.LoadFiles([]string{topPath, subPath}); err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}

	units := lib.UnitsOf("work", "top", objtree.KindArch)
	if len(units) != 1 {
		t.Fatalf("expected one top architecture, got %d", len(units))
	}
	arch := units[0].Object
	if len(arch.Stmts) != 1 {
		t.Fatalf("expected the linked instance statement, got %d stmts", len(arch.Stmts))
	}
	inst := arch.Stmts[0]
	if inst.Kind != objtree.KindInstance || inst.Ident.String() != "u_sub" {
		t.Errorf("stmt = %+v, want instance u_sub", inst)
	}
	sub, _ := lib.Lookup("work.sub")
	if inst.Ref != sub.Object {
		t.Errorf("instance should reference the sub entity object by identity")
	}
}

func TestFileBackedLinkUnresolved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "top.vhd")
	if err := os.WriteFile(path, []byte("-- fixture\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := fakeSource{facts: map[string]extractor.FileFacts{
		path: {
			File:     path,
			Entities: []extractor.Entity{{Name: "top", Line: 1}},
			Architectures: []extractor.Architecture{{
				Name: "rtl", EntityName: "top", Line: 5,
				Instances: []extractor.Instance{
					{Label: "u_ghost", Target: "missing", Line: 7},
				},
			}},
		},
	}}

	lib := NewFileBacked("work", src)
	if err := lib.LoadFiles([]string{path}); err == nil {
		t.Fatalf("expected Link to report the unresolved component")
	}
}
