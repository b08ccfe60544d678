package elab

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// copyUnit makes fresh copies of the entity and architecture (and
// optional config) under the context prefix, reusing the same
// global-flag union on the copies that the input carried, so that
// downstream passes see e.g. "contains a PSL directive" without
// re-scanning the copy. Every subprogram declared inside the copies
// is renamed under the prefix so that instances never share a
// subprogram symbol.
func copyUnit(prefix [2]ident.Ident, entity, arch, config *objtree.Object) (entityCopy, archCopy, configCopy *objtree.Object) {
	entityCopy = entity.CopyTree()
	archCopy = arch.CopyTree()

	renameSubprograms(entityCopy, prefix)
	renameSubprograms(archCopy, prefix)

	flags := objtree.Union(entity.Flags, arch.Flags)
	entityCopy.Flags = flags
	archCopy.Flags = flags

	if config != nil {
		configCopy = config.CopyTree()
		configCopy.Flags = objtree.Union(configCopy.Flags, flags)
	}
	return entityCopy, archCopy, configCopy
}

// renameSubprograms qualifies every subprogram declared anywhere in
// the copied subtree with the instantiation prefix. Fresh node
// identity alone is not enough: lowered code mangles symbols by name,
// so two instances of the same architecture would still collide on a
// locally declared subprogram unless each copy gets its own spelling.
func renameSubprograms(root *objtree.Object, prefix [2]ident.Ident) {
	if root == nil {
		return
	}
	for _, d := range root.Decls {
		if d.Class == objtree.ClassSubprogram && d.HasIdent() {
			d.Ident = prefixedSubprogram(prefix, d.Ident)
		}
		renameSubprograms(d, prefix)
	}
	for _, s := range root.Stmts {
		renameSubprograms(s, prefix)
	}
}

// prefixedSubprogram spells the renamed symbol "primary(arch).name".
// prefix[0] is the architecture name and prefix[1] the primary entity
// name, in that order.
func prefixedSubprogram(prefix [2]ident.Ident, name ident.Ident) ident.Ident {
	return ident.New(fmt.Sprintf("%s(%s).%s",
		strings.ToLower(prefix[1].String()),
		strings.ToLower(prefix[0].String()),
		name.String()))
}

// copyWithRenaming duplicates a generate body, giving every
// node in it a fresh identity the way CopyTree does generally, so
// that per-iteration copies of the same static body never alias each
// other's nodes. The genvar's per-iteration value is threaded through
// the iteration's generic map, not by mutating the
// genvar's identifier here.
func copyWithRenaming(body []*objtree.Object) []*objtree.Object {
	out := make([]*objtree.Object, len(body))
	for i, stmt := range body {
		out[i] = stmt.CopyTree()
	}
	return out
}
