// Package extractor parses VHDL source files into flat design-unit
// facts: entities and components with their full interface lists,
// architectures with the instances they contain, packages, and
// context clauses. The library loader turns these facts into design
// objects; nothing here resolves names or types.
package extractor

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	tree_sitter_vhdl "github.com/tree-sitter/tree-sitter-vhdl"
)

// Extractor parses VHDL with tree-sitter, falling back to a
// line-oriented scanner when no grammar is loaded.
type Extractor struct {
	parser *sitter.Parser
	lang   *sitter.Language
}

// FileFacts is everything extracted from a single VHDL file.
type FileFacts struct {
	File          string
	Entities      []Entity
	Architectures []Architecture
	Packages      []Package
	Components    []Component
	Contexts      []ContextClause
}

// Entity is an entity declaration with its interface lists.
type Entity struct {
	Name     string
	Line     int
	Generics []Generic
	Ports    []Port
}

// Architecture is an architecture body and the instantiation
// statements found inside it.
type Architecture struct {
	Name       string
	EntityName string
	Line       int
	Instances  []Instance
}

// Package is a package declaration (bodies are skipped).
type Package struct {
	Name string
	Line int
}

// Component is a component declaration with its interface lists.
type Component struct {
	Name     string
	Line     int
	Generics []Generic
	Ports    []Port
}

// Instance is a component or direct-entity instantiation statement.
// Target is the component name, or "lib.entity" when Direct is set.
type Instance struct {
	Label  string
	Target string
	Direct bool
	Line   int
}

// Generic is one formal generic: name, type mark, and the default
// expression text if the declaration carries one.
type Generic struct {
	Name    string
	Type    string
	Default string
	Line    int
}

// Port is one formal port.
type Port struct {
	Name      string
	Direction string // in, out, inout, buffer; defaults to in
	Type      string
	Line      int
}

// New creates an Extractor with the VHDL grammar loaded.
func New() *Extractor {
	parser := sitter.NewParser()
	lang := sitter.NewLanguage(tree_sitter_vhdl.Language())
	parser.SetLanguage(lang)
	return &Extractor{parser: parser, lang: lang}
}

// NewScanner creates an Extractor that uses only the line scanner.
// Tests use it to get deterministic extraction without the grammar.
func NewScanner() *Extractor {
	return &Extractor{parser: sitter.NewParser()}
}

// Extract parses the file at path.
func (e *Extractor) Extract(path string) (FileFacts, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileFacts{File: path}, fmt.Errorf("reading file: %w", err)
	}
	return e.ExtractSource(path, content)
}

// ExtractSource parses content as VHDL source attributed to path.
func (e *Extractor) ExtractSource(path string, content []byte) (FileFacts, error) {
	facts := FileFacts{File: path}

	if e.lang == nil {
		scanSource(content, &facts)
		return facts, nil
	}

	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return facts, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	e.walkTree(tree.RootNode(), content, &facts)
	return facts, nil
}

func (e *Extractor) walkTree(node *sitter.Node, source []byte, facts *FileFacts) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "entity_declaration":
		facts.Entities = append(facts.Entities, e.extractEntity(node, source))
		return
	case "architecture_body":
		facts.Architectures = append(facts.Architectures, e.extractArchitecture(node, source))
		return
	case "package_declaration":
		facts.Packages = append(facts.Packages, Package{
			Name: fieldText(node, "name", source),
			Line: line(node),
		})
		return
	case "use_clause":
		facts.Contexts = append(facts.Contexts, ContextClause{
			Kind:   "use",
			Target: string(node.Content(source)),
			Line:   line(node),
		})
	case "library_clause":
		facts.Contexts = append(facts.Contexts, ContextClause{
			Kind:   "library",
			Target: fieldText(node, "name", source),
			Line:   line(node),
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		e.walkTree(node.Child(i), source, facts)
	}
}

func (e *Extractor) extractEntity(node *sitter.Node, source []byte) Entity {
	ent := Entity{
		Name: fieldText(node, "name", source),
		Line: line(node),
	}
	// Interface lists come from re-scanning the declaration's own
	// source slice: the grammar splits interface elements finer than
	// the loader needs, and the scanner already understands them.
	region := nodeFacts(node, source)
	if len(region.Entities) == 1 {
		ent.Generics = region.Entities[0].Generics
		ent.Ports = region.Entities[0].Ports
		rebase(ent.Line-1, ent.Generics, ent.Ports)
	}
	return ent
}

func (e *Extractor) extractArchitecture(node *sitter.Node, source []byte) Architecture {
	arch := Architecture{
		Name:       fieldText(node, "name", source),
		EntityName: fieldText(node, "entity", source),
		Line:       line(node),
	}
	region := nodeFacts(node, source)
	if len(region.Architectures) == 1 {
		arch.Instances = region.Architectures[0].Instances
		for i := range arch.Instances {
			arch.Instances[i].Line += arch.Line - 1
		}
	}
	return arch
}

// nodeFacts runs the line scanner over one declaration's source text.
func nodeFacts(node *sitter.Node, source []byte) FileFacts {
	var facts FileFacts
	scanSource([]byte(node.Content(source)), &facts)
	return facts
}

// rebase shifts scanner-relative line numbers to file line numbers.
func rebase(offset int, generics []Generic, ports []Port) {
	for i := range generics {
		generics[i].Line += offset
	}
	for i := range ports {
		ports[i].Line += offset
	}
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	if n := node.ChildByFieldName(field); n != nil {
		return string(n.Content(source))
	}
	return ""
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// ContextClause is a library or use clause.
type ContextClause struct {
	Kind   string // "library" or "use"
	Target string
	Line   int
}
