package library

import (
	"testing"
	"time"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

func archUnit(name, file string, line int, mtime time.Time) Unit {
	return Unit{
		Name:    name,
		ModTime: mtime,
		Object: &objtree.Object{
			Kind: objtree.KindArch,
			Pos:  objtree.Pos{File: file, Line: line},
		},
	}
}

func TestChooseArchitectureByMTime(t *testing.T) {
	lib := NewInMemory()
	lib.Add(archUnit("work.foo-rtl", "foo_rtl.vhd", 1, time.Unix(10, 0)))
	lib.Add(archUnit("work.foo-tb", "foo_tb.vhd", 1, time.Unix(20, 0)))

	sink := diag.NewSink()
	chosen := ChooseArchitecture(lib, sink, "work", "foo", "test")
	if chosen.Pos.File != "foo_tb.vhd" {
		t.Fatalf("expected foo-tb to win on mtime, got %s", chosen.Pos.File)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
}

func TestChooseArchitectureSameTimestampDifferentFileWarns(t *testing.T) {
	lib := NewInMemory()
	lib.Add(archUnit("work.foo-a", "a.vhd", 1, time.Unix(20, 0)))
	lib.Add(archUnit("work.foo-b", "b.vhd", 1, time.Unix(20, 0)))

	sink := diag.NewSink()
	_ = ChooseArchitecture(lib, sink, "work", "foo", "test")

	warnings := 0
	for _, d := range sink.All() {
		if d.Severity == diag.SeverityWarning {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("expected exactly one warning, got %d: %v", warnings, sink.All())
	}
}

func TestChooseArchitectureSameTimestampSameFileLineTieBreak(t *testing.T) {
	lib := NewInMemory()
	lib.Add(archUnit("work.foo-a", "f.vhd", 10, time.Unix(20, 0)))
	lib.Add(archUnit("work.foo-b", "f.vhd", 20, time.Unix(20, 0)))

	sink := diag.NewSink()
	chosen := ChooseArchitecture(lib, sink, "work", "foo", "test")
	if chosen.Pos.Line != 20 {
		t.Fatalf("expected the later line to win, got line %d", chosen.Pos.Line)
	}
}

func TestChooseArchitectureNoCandidateIsFatal(t *testing.T) {
	lib := NewInMemory()
	sink := diag.NewSink()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a fatal panic")
		}
		if _, ok := r.(diag.Fatal); !ok {
			t.Fatalf("expected diag.Fatal, got %T", r)
		}
	}()
	ChooseArchitecture(lib, sink, "work", "missing", "test")
}
