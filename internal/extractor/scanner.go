package extractor

import (
	"regexp"
	"strings"
)

var (
	entityRe    = regexp.MustCompile(`(?i)^\s*entity\s+(\w+)\s+is`)
	archRe      = regexp.MustCompile(`(?i)^\s*architecture\s+(\w+)\s+of\s+(\w+)\s+is`)
	packageRe   = regexp.MustCompile(`(?i)^\s*package\s+(\w+)\s+is`)
	componentRe = regexp.MustCompile(`(?i)^\s*component\s+(\w+)`)
	endRe       = regexp.MustCompile(`(?i)^\s*end\b`)
	useRe       = regexp.MustCompile(`(?i)^\s*use\s+([\w.]+)`)
	libraryRe   = regexp.MustCompile(`(?i)^\s*library\s+(\w+)`)

	genericClauseRe = regexp.MustCompile(`(?i)^\s*generic\s*\(`)
	portClauseRe    = regexp.MustCompile(`(?i)^\s*port\s*\(`)

	// "n1, n2 : [mode] type_mark [:= default]"
	ifaceRe = regexp.MustCompile(`(?i)^\s*(\w+(?:\s*,\s*\w+)*)\s*:\s*(in\b|out\b|inout\b|buffer\b)?\s*(.+?)\s*$`)

	// "u1 : entity work.foo(rtl)" or "u1 : [component] foo ..."
	entityInstRe = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*entity\s+([\w.]+)`)
	compInstRe   = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*(?:component\s+)?(\w+)\s*(?:$|generic\b|port\b)`)
)

// scanSource is the grammar-free extraction path: a stateful
// line scanner good enough for well-formed source. It tracks which
// declaration it is inside and, within an entity or component,
// accumulates generic/port interface clauses across lines until the
// clause's parentheses balance.
func scanSource(content []byte, facts *FileFacts) {
	s := scanState{facts: facts}
	for i, raw := range strings.Split(string(content), "\n") {
		line := raw
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		s.line(i+1, line)
	}
	s.flushUnit()
}

type scanState struct {
	facts *FileFacts

	entity    *Entity
	component *Component
	arch      *Architecture

	clause      string // "generic", "port", or ""
	clauseDepth int
	elemText    strings.Builder
	elemLine    int
}

func (s *scanState) line(num int, text string) {
	if s.clause != "" {
		s.clauseLine(num, text)
		return
	}

	switch {
	case s.entity != nil || s.component != nil:
		if genericClauseRe.MatchString(text) {
			s.openClause("generic", num, text)
			return
		}
		if portClauseRe.MatchString(text) {
			s.openClause("port", num, text)
			return
		}
		if endRe.MatchString(text) {
			s.flushUnit()
		}
		return

	case s.arch != nil:
		if m := entityInstRe.FindStringSubmatch(text); m != nil {
			s.arch.Instances = append(s.arch.Instances, Instance{
				Label: m[1], Target: m[2], Direct: true, Line: num,
			})
			return
		}
		if m := componentRe.FindStringSubmatch(text); m != nil {
			// Component declarations may appear in the declarative
			// region; skip to its "end component".
			s.component = &Component{Name: m[1], Line: num}
			return
		}
		if m := compInstRe.FindStringSubmatch(text); m != nil {
			s.arch.Instances = append(s.arch.Instances, Instance{
				Label: m[1], Target: m[2], Line: num,
			})
			return
		}
		if endRe.MatchString(text) {
			s.flushUnit()
		}
		return
	}

	switch {
	case entityRe.MatchString(text):
		m := entityRe.FindStringSubmatch(text)
		s.entity = &Entity{Name: m[1], Line: num}
	case archRe.MatchString(text):
		m := archRe.FindStringSubmatch(text)
		s.arch = &Architecture{Name: m[1], EntityName: m[2], Line: num}
	case packageRe.MatchString(text):
		if !strings.Contains(strings.ToLower(text), "package body") {
			m := packageRe.FindStringSubmatch(text)
			s.facts.Packages = append(s.facts.Packages, Package{Name: m[1], Line: num})
		}
	case componentRe.MatchString(text):
		m := componentRe.FindStringSubmatch(text)
		s.component = &Component{Name: m[1], Line: num}
	case useRe.MatchString(text):
		m := useRe.FindStringSubmatch(text)
		s.facts.Contexts = append(s.facts.Contexts, ContextClause{Kind: "use", Target: m[1], Line: num})
	case libraryRe.MatchString(text):
		m := libraryRe.FindStringSubmatch(text)
		s.facts.Contexts = append(s.facts.Contexts, ContextClause{Kind: "library", Target: m[1], Line: num})
	}
}

// openClause enters a generic or port clause, consuming whatever part
// of it shares the opener's line.
func (s *scanState) openClause(kind string, num int, text string) {
	s.clause = kind
	s.clauseDepth = 0
	s.elemText.Reset()
	s.elemLine = 0

	open := strings.Index(text, "(")
	s.clauseDepth = 1
	s.consume(num, text[open+1:])
}

func (s *scanState) clauseLine(num int, text string) {
	s.consume(num, text)
}

// consume feeds clause text character by character, splitting
// interface elements on top-level ';' and closing the clause when the
// parenthesis that opened it balances.
func (s *scanState) consume(num int, text string) {
	for _, r := range text {
		switch r {
		case '(':
			s.clauseDepth++
		case ')':
			s.clauseDepth--
			if s.clauseDepth == 0 {
				s.flushElem()
				s.clause = ""
				return
			}
		case ';':
			if s.clauseDepth == 1 {
				s.flushElem()
				continue
			}
		}
		if s.elemLine == 0 && !isSpace(r) {
			s.elemLine = num
		}
		s.elemText.WriteRune(r)
	}
	s.elemText.WriteRune('\n')
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (s *scanState) flushElem() {
	text := strings.TrimSpace(s.elemText.String())
	num := s.elemLine
	s.elemText.Reset()
	s.elemLine = 0
	if text == "" {
		return
	}

	m := ifaceRe.FindStringSubmatch(strings.ReplaceAll(text, "\n", " "))
	if m == nil {
		return
	}
	names := strings.Split(m[1], ",")
	dir := strings.ToLower(strings.TrimSpace(m[2]))
	typeMark := m[3]
	deflt := ""
	if idx := strings.Index(typeMark, ":="); idx >= 0 {
		deflt = strings.TrimSpace(typeMark[idx+2:])
		typeMark = strings.TrimSpace(typeMark[:idx])
	}

	for _, n := range names {
		n = strings.TrimSpace(n)
		switch s.clause {
		case "generic":
			g := Generic{Name: n, Type: typeMark, Default: deflt, Line: num}
			if s.entity != nil {
				s.entity.Generics = append(s.entity.Generics, g)
			} else if s.component != nil {
				s.component.Generics = append(s.component.Generics, g)
			}
		case "port":
			if dir == "" {
				dir = "in"
			}
			p := Port{Name: n, Direction: dir, Type: typeMark, Line: num}
			if s.entity != nil {
				s.entity.Ports = append(s.entity.Ports, p)
			} else if s.component != nil {
				s.component.Ports = append(s.component.Ports, p)
			}
		}
	}
}

// flushUnit closes whichever declaration is open. Component
// declarations inside an architecture's declarative region hand
// control back to the architecture.
func (s *scanState) flushUnit() {
	switch {
	case s.entity != nil:
		s.facts.Entities = append(s.facts.Entities, *s.entity)
		s.entity = nil
	case s.component != nil:
		s.facts.Components = append(s.facts.Components, *s.component)
		s.component = nil
	case s.arch != nil:
		s.facts.Architectures = append(s.facts.Architectures, *s.arch)
		s.arch = nil
	}
}
