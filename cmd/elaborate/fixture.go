package main

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// fixture is the JSON design description elaborate reads: entities and
// architectures named directly, the way elab_test.go builds a design
// by hand instead of parsing VHDL source. It covers entity/generic
// declarations and the two statement kinds the driver's tests exercise
// (plain instantiation and for-generate); anything richer (explicit
// binding indications, configurations, Verilog modules) has to be
// built in Go, the same as the driver's own test suite does.
type fixture struct {
	Library       string            `json:"library"`
	Top           string            `json:"top"`
	Overrides     map[string]string `json:"overrides"`
	Entities      []entityFixture   `json:"entities"`
	Architectures []archFixture     `json:"architectures"`
}

type entityFixture struct {
	Name     string           `json:"name"`
	Generics []genericFixture `json:"generics"`
}

type genericFixture struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default int64  `json:"default"`
}

type archFixture struct {
	Name       string        `json:"name"`
	Entity     string        `json:"entity"`
	Statements []stmtFixture `json:"statements"`
}

type stmtFixture struct {
	Kind   string          `json:"kind"` // "instance" or "for_generate"
	Label  string          `json:"label"`
	Entity string          `json:"entity"`
	GenMap []genMapFixture `json:"genmap,omitempty"`
	Var    string          `json:"var,omitempty"`
	Low    int64           `json:"low,omitempty"`
	High   int64           `json:"high,omitempty"`
	Body   []stmtFixture   `json:"body,omitempty"`
}

type genMapFixture struct {
	Pos   int   `json:"pos"`
	Value int64 `json:"value"`
}

// build assembles an in-memory library plus the top-level unit,
// returning an error for any name the fixture leaves dangling.
func (fx *fixture) build() (library.Library, *objtree.Object, error) {
	lib := library.NewInMemory()
	entities := make(map[string]*objtree.Object, len(fx.Entities))

	for _, ef := range fx.Entities {
		obj := buildEntity(ef)
		entities[strings.ToLower(ef.Name)] = obj
		lib.Add(library.Unit{
			Name:   library.QualifiedName(fx.libraryName(), ident.New(ef.Name)),
			Object: obj,
		})
	}

	for _, af := range fx.Architectures {
		entity, ok := entities[strings.ToLower(af.Entity)]
		if !ok {
			return nil, nil, fmt.Errorf("architecture %s names unknown entity %s", af.Name, af.Entity)
		}
		arch := &objtree.Object{
			Kind:   objtree.KindArch,
			Ident:  ident.New(af.Name),
			Ident2: entity.Ident,
		}
		for _, sf := range af.Statements {
			stmt, err := buildStatement(sf, entities)
			if err != nil {
				return nil, nil, err
			}
			arch.Stmts = append(arch.Stmts, stmt)
		}
		unitName := fmt.Sprintf("%s-%s", strings.ToLower(af.Entity), strings.ToLower(af.Name))
		lib.Add(library.Unit{
			Name:   library.QualifiedName(fx.libraryName(), ident.New(unitName)),
			Object: arch,
		})
	}

	top, ok := entities[strings.ToLower(fx.Top)]
	if !ok {
		return nil, nil, fmt.Errorf("top-level entity %s not found among fixture entities", fx.Top)
	}
	return lib, top, nil
}

func (fx *fixture) libraryName() string {
	if fx.Library == "" {
		return "work"
	}
	return fx.Library
}

func buildEntity(ef entityFixture) *objtree.Object {
	entity := &objtree.Object{Kind: objtree.KindEntity, Ident: ident.New(ef.Name)}
	for _, gf := range ef.Generics {
		typeName := gf.Type
		if typeName == "" {
			typeName = "INTEGER"
		}
		entity.Generics = append(entity.Generics, &objtree.Object{
			Kind:   objtree.KindGenericDecl,
			Ident:  ident.New(gf.Name),
			Family: objtree.GenericScalar,
			Type:   objtree.Intern(strings.ToUpper(typeName), false, false),
			Value:  intLiteral(gf.Default),
		})
	}
	return entity
}

func buildStatement(sf stmtFixture, entities map[string]*objtree.Object) (*objtree.Object, error) {
	switch sf.Kind {
	case "instance":
		target, ok := entities[strings.ToLower(sf.Entity)]
		if !ok {
			return nil, fmt.Errorf("instance %s names unknown entity %s", sf.Label, sf.Entity)
		}
		inst := &objtree.Object{Kind: objtree.KindInstance, Ident: ident.New(sf.Label), Ref: target}
		for _, g := range sf.GenMap {
			inst.GenMaps = append(inst.GenMaps, objtree.Param{Kind: objtree.ParamPos, Pos: g.Pos, Value: intLiteral(g.Value)})
		}
		return inst, nil

	case "for_generate":
		genvar := &objtree.Object{Kind: objtree.KindGenericDecl, Ident: ident.New(sf.Var), Type: objtree.Intern("INTEGER", false, false)}
		gen := &objtree.Object{
			Kind:     objtree.KindForGenerate,
			Ident:    ident.New(sf.Label),
			Decls:    []*objtree.Object{genvar},
			Children: []*objtree.Object{intLiteral(sf.Low), intLiteral(sf.High)},
		}
		for _, bodyStmt := range sf.Body {
			child, err := buildStatement(bodyStmt, entities)
			if err != nil {
				return nil, err
			}
			gen.Stmts = append(gen.Stmts, child)
		}
		return gen, nil

	default:
		return nil, fmt.Errorf("statement %s has unknown kind %q", sf.Label, sf.Kind)
	}
}

func intLiteral(v int64) *objtree.Object {
	return &objtree.Object{Kind: objtree.KindLiteral, SubKind: objtree.LitInt, IntVal: v, Type: objtree.Intern("INTEGER", false, false)}
}
