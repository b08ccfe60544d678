package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/extractor"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/genparse"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// FactsSource abstracts extraction so tests can feed hand-written
// facts instead of parsing real source text.
type FactsSource interface {
	Extract(path string) (extractor.FileFacts, error)
}

// FileBacked is a Library populated from VHDL source files. Load
// registers each file's design units; Link resolves the instance
// references recorded along the way, so instantiations may name
// units from files loaded later.
type FileBacked struct {
	mem     *InMemory
	source  FactsSource
	libName string

	components map[string]*objtree.Object
	pending    []pendingInstance
}

type pendingInstance struct {
	arch *objtree.Object
	inst extractor.Instance
	file string
}

// NewFileBacked creates a file-backed library named libraryName,
// loading facts with source (extractor.New() for the real parser, or
// a fake in tests).
func NewFileBacked(libraryName string, source FactsSource) *FileBacked {
	return &FileBacked{
		mem:        NewInMemory(),
		source:     source,
		libName:    libraryName,
		components: make(map[string]*objtree.Object),
	}
}

// Load parses path and registers its design units. A unit's
// modification time comes from the file's mtime on disk; the
// architecture chooser breaks ties on it.
func (f *FileBacked) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	facts, err := f.source.Extract(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}

	for _, e := range facts.Entities {
		obj := &objtree.Object{
			Kind:  objtree.KindEntity,
			Pos:   objtree.Pos{File: path, Line: e.Line},
			Ident: ident.New(e.Name),
		}
		for _, g := range e.Generics {
			obj.Generics = append(obj.Generics, genericDecl(path, g))
		}
		for _, p := range e.Ports {
			obj.Ports = append(obj.Ports, portDecl(path, p))
		}
		f.mem.Add(Unit{
			Name:    QualifiedName(f.libName, obj.Ident),
			ModTime: info.ModTime(),
			Object:  obj,
		})
	}

	for _, comp := range facts.Components {
		obj := &objtree.Object{
			Kind:  objtree.KindComponent,
			Pos:   objtree.Pos{File: path, Line: comp.Line},
			Ident: ident.New(comp.Name),
		}
		for _, g := range comp.Generics {
			obj.Generics = append(obj.Generics, genericDecl(path, g))
		}
		for _, p := range comp.Ports {
			obj.Ports = append(obj.Ports, portDecl(path, p))
		}
		f.components[strings.ToLower(comp.Name)] = obj
	}

	for _, a := range facts.Architectures {
		obj := &objtree.Object{
			Kind:   objtree.KindArch,
			Pos:    objtree.Pos{File: path, Line: a.Line},
			Ident:  ident.New(a.Name),
			Ident2: ident.New(a.EntityName),
		}
		for _, inst := range a.Instances {
			f.pending = append(f.pending, pendingInstance{arch: obj, inst: inst, file: path})
		}
		f.mem.Add(Unit{
			Name:    QualifiedName(f.libName, ident.New(archUnitName(a.EntityName, a.Name))),
			ModTime: info.ModTime(),
			Object:  obj,
		})
	}

	for _, p := range facts.Packages {
		f.mem.Add(Unit{
			Name:    QualifiedName(f.libName, ident.New(p.Name)),
			ModTime: info.ModTime(),
			Object: &objtree.Object{
				Kind:  objtree.KindPackage,
				Pos:   objtree.Pos{File: path, Line: p.Line},
				Ident: ident.New(p.Name),
			},
		})
	}
	return nil
}

// Link resolves every instantiation recorded by Load into an
// instance statement on its architecture: direct entity
// instantiations to the named library unit, component instantiations
// to the component declaration of the same name. Unresolved targets
// are reported together; their statements are not emitted.
func (f *FileBacked) Link() error {
	var errs []error
	for _, p := range f.pending {
		target := f.resolveTarget(p.inst)
		if target == nil {
			errs = append(errs, fmt.Errorf("%s:%d: instance %s: no design unit named %s",
				p.file, p.inst.Line, p.inst.Label, p.inst.Target))
			continue
		}
		p.arch.Stmts = append(p.arch.Stmts, &objtree.Object{
			Kind:  objtree.KindInstance,
			Pos:   objtree.Pos{File: p.file, Line: p.inst.Line},
			Ident: ident.New(p.inst.Label),
			Ref:   target,
		})
	}
	f.pending = nil
	return errors.Join(errs...)
}

func (f *FileBacked) resolveTarget(inst extractor.Instance) *objtree.Object {
	if inst.Direct {
		name := strings.ToLower(inst.Target)
		if !strings.Contains(name, ".") {
			name = strings.ToLower(f.libName) + "." + name
		}
		if u, ok := f.mem.Lookup(name); ok {
			return u.Object
		}
		return nil
	}
	return f.components[strings.ToLower(inst.Target)]
}

func genericDecl(path string, g extractor.Generic) *objtree.Object {
	obj := &objtree.Object{
		Kind:  objtree.KindGenericDecl,
		Pos:   objtree.Pos{File: path, Line: g.Line},
		Ident: ident.New(g.Name),
		Class: objtree.ClassConstant,
	}
	obj.Type, obj.Family = typeFor(g.Type)
	if g.Default != "" {
		def := g.Default
		if obj.Family == objtree.GenericCharArray {
			def = strings.Trim(def, `"`)
		}
		// A scalar/enum/string default becomes a literal tree the
		// resolver can substitute directly; anything more complex is
		// left unset and surfaces as a missing default if no actual
		// or override supplies a value.
		if v, err := genparse.Parse(obj, def); err == nil {
			obj.Value = v
		}
	}
	return obj
}

func portDecl(path string, p extractor.Port) *objtree.Object {
	obj := &objtree.Object{
		Kind:      objtree.KindPortDecl,
		Pos:       objtree.Pos{File: path, Line: p.Line},
		Ident:     ident.New(p.Name),
		Class:     objtree.ClassSignal,
		Direction: directionFor(p.Direction),
	}
	obj.Type, _ = typeFor(p.Type)
	return obj
}

func directionFor(dir string) objtree.Direction {
	switch strings.ToLower(dir) {
	case "out":
		return objtree.DirOut
	case "inout":
		return objtree.DirInout
	case "buffer":
		return objtree.DirBuffer
	default:
		return objtree.DirIn
	}
}

// typeFor maps a source type mark to a canonical type handle and the
// generic family the override machinery files it under.
func typeFor(mark string) (*objtree.Type, objtree.GenericFamily) {
	mark = strings.TrimSpace(mark)
	base := mark
	constrained := false
	if i := strings.IndexByte(mark, '('); i >= 0 {
		base = strings.TrimSpace(mark[:i])
		constrained = true
	}

	switch strings.ToLower(base) {
	case "integer":
		return objtree.InternRange("INTEGER", -2147483648, 2147483647), objtree.GenericScalar
	case "natural":
		return objtree.InternRange("NATURAL", 0, 2147483647), objtree.GenericScalar
	case "positive":
		return objtree.InternRange("POSITIVE", 1, 2147483647), objtree.GenericScalar
	case "real":
		return objtree.Intern("REAL", false, false), objtree.GenericScalar
	case "time":
		return objtree.Intern("TIME", false, false), objtree.GenericScalar
	case "boolean":
		return objtree.InternEnum("BOOLEAN", []ident.Ident{ident.New("false"), ident.New("true")}), objtree.GenericEnum
	case "bit":
		return objtree.InternEnum("BIT", []ident.Ident{ident.New("'0'"), ident.New("'1'")}), objtree.GenericEnum
	case "std_logic", "std_ulogic":
		return objtree.Intern(strings.ToUpper(base), false, false), objtree.GenericEnum
	case "string":
		t := objtree.Intern("STRING", false, true)
		t.ElementType = objtree.Intern("CHARACTER", false, false)
		return t, objtree.GenericCharArray
	default:
		if constrained {
			return objtree.InternSubtype(strings.ToUpper(mark), false, true), objtree.GenericScalar
		}
		return objtree.Intern(strings.ToUpper(base), false, false), objtree.GenericScalar
	}
}

// archUnitName builds the "-suffixed" unit name the chooser strips:
// "<entity>-<arch>" lets two architectures of the same entity coexist
// in one library's name space, e.g. "foo-rtl" and "foo-tb" both
// belonging to entity "foo".
func archUnitName(entityName, archName string) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(entityName), strings.ToLower(archName))
}

func (f *FileBacked) Lookup(qualifiedName string) (Unit, bool) { return f.mem.Lookup(qualifiedName) }
func (f *FileBacked) UnitsOf(libraryName, entityName string, kind objtree.Kind) []Unit {
	return f.mem.UnitsOf(libraryName, entityName, kind)
}
func (f *FileBacked) ForAll(libraryName string) []Unit { return f.mem.ForAll(libraryName) }

// LoadDir loads every .vhd/.vhdl file under root, then links.
func (f *FileBacked) LoadDir(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".vhd" && ext != ".vhdl" {
			return nil
		}
		return f.Load(path)
	})
	if err != nil {
		return err
	}
	return f.Link()
}

// LoadFiles loads an explicit file list, then links.
func (f *FileBacked) LoadFiles(paths []string) error {
	for _, p := range paths {
		if err := f.Load(p); err != nil {
			return err
		}
	}
	return f.Link()
}
