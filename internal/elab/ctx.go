package elab

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/coerce"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/foldeval"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/lower"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/modcache"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/model"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/override"
)

// Ctx is the elaboration context passed down the recursion:
// immutable except for its derived fields (InstName, Dotted,
// Depth, Generics, Drivers, Lowered, Scope), which each recursive
// call refines before descending further.
type Ctx struct {
	Parent *Ctx // back-reference to enclosing context (never owning)

	Out  *objtree.Object // current output block being populated
	Root *objtree.Object // top-level object pointer

	Inst   *objtree.Object // the instance tree object driving this level (nil at root)
	Config *objtree.Object // optional configuration block driving this level

	InstName string // colon-separated hierarchical path, lowercase
	Dotted   string // dot-separated fully qualified name

	// Prefix is the two-element name prefix the copier uses to rename
	// subprograms inside a freshly instantiated architecture.
	// Prefix[0] is the architecture name; Prefix[1] is its primary
	// entity name. The copier must always see them in that order
	// because the architecture name already contains the entity as a
	// dotted prefix.
	Prefix [2]ident.Ident

	WorkingLibrary string
	Library        library.Library

	Folder   foldeval.Folder
	JIT      foldeval.JIT
	Registry *lower.Registry
	Lowerer  lower.Lowerer
	Vlog     lower.VlogLower
	Analyser lower.Analyser
	ModCache *modcache.Cache
	Model    *model.Model
	Coerce   *coerce.Table

	Overrides *override.Table
	Sink      *diag.Sink
	Options   *Options

	Lowered *lower.Unit  // at most one lowered unit attached to a context
	Scope   *model.Scope // current run-time scope

	// Generics maps a formal generic node to its folded constant
	// value, present only at levels that introduced generics, consumed
	// by the global simplifier to substitute literal references
	// throughout the copied architecture.
	Generics foldeval.InstanceContext

	Drivers *lower.DriverSet // driver set for the current body

	Depth int // guards against runaway recursion (hard cap: Options.maxDepth())
}

// child derives a new Ctx one level deeper, inheriting every
// collaborator field from c but starting with fresh per-level state
// (Generics, Drivers, Lowered, Scope are set by the caller
// afterwards).
func (c *Ctx) child() *Ctx {
	n := *c
	n.Parent = c
	n.Depth = c.Depth + 1
	n.Generics = nil
	n.Drivers = nil
	n.Lowered = nil
	n.Inst = nil
	n.Config = nil
	return &n
}

// depthExceeded reports whether the recursion cap has been crossed.
func (c *Ctx) depthExceeded() bool {
	return c.Depth > c.Options.maxDepth()
}

// nextDepthExceeded reports whether creating one more child level
// under c would cross the recursion cap, the check every call site
// that is about to build a child Ctx makes before doing so, so the
// bounded-recursion error fires exactly once per offending chain
// rather than once per level past the cap.
func (c *Ctx) nextDepthExceeded() bool {
	return c.Depth+1 > c.Options.maxDepth()
}

// FoldContext returns the InstanceContext consulted when eagerly
// folding a scalar expression at this level: this level's own
// Generics, or the nearest ancestor's if this level introduced none.
func (c *Ctx) FoldContext() foldeval.InstanceContext {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.Generics != nil {
			return cur.Generics
		}
	}
	return nil
}
