package library

import (
	log "github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// ChooseArchitecture picks the architecture to use for an entity:
// walk the library index for
// Arch units whose name strips (with "-" as separator) to entityName,
// and pick the "most recently analysed" one.
//
// Ordering: (1) greater modification timestamp wins; (2) on equal
// timestamp, the unit whose source location has a greater-or-equal
// first line number wins within the same source file; (3) across
// different source files on equal timestamp, warn and keep the
// earlier choice (first-encountered, in the library's enumeration
// order).
//
// Failure: if no candidate exists, raises diag.Fatal at callLoc.
func ChooseArchitecture(lib Library, sink *diag.Sink, libraryName, entityName string, callLoc string) *objtree.Object {
	candidates := lib.UnitsOf(libraryName, entityName, objtree.KindArch)
	if len(candidates) == 0 {
		diag.Fatalf(callLoc, "no architecture found for entity %s.%s", libraryName, entityName)
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		best = pickBetter(sink, best, cand)
	}
	return best.Object
}

// pickBetter resolves the tie-break ordering between two candidates,
// returning the winner. a is assumed to be the "first-encountered"
// one relative to b for tie-break purposes.
func pickBetter(sink *diag.Sink, a, b Unit) Unit {
	if a.ModTime.After(b.ModTime) {
		return a
	}
	if b.ModTime.After(a.ModTime) {
		return b
	}

	// Equal timestamp.
	aFile, bFile := a.Object.Pos.File, b.Object.Pos.File
	if aFile == bFile {
		if b.Object.Pos.Line >= a.Object.Pos.Line {
			return b
		}
		return a
	}

	log.Warnf("architecture %s and %s have equal timestamps in different files; keeping %s",
		a.Name, b.Name, a.Name)
	sink.Warnf(b.Object.Pos.String(),
		"architecture %s and %s have equal timestamps in different files; keeping %s",
		a.Name, b.Name, a.Name)
	return a
}
