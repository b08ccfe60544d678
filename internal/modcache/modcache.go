// Package modcache implements the module cache: for each top-level
// Verilog module object, lazily construct and store a (shape, block,
// wrap) triple, idempotent, freed only at top-level teardown.
package modcache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/lower"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// Entry is the memoised per-module triple.
type Entry struct {
	Shape *lower.Shape
	Block *objtree.Object // synthetic VHDL Block, location/name copied from mod
	Wrap  *objtree.Object // Verilog wrapper node (KindVerilog), back-pointer to mod
}

// Cache is the process-wide module cache. It owns its entries; they
// outlive every context that references them and are freed only by
// the root driver.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: map[string]*Entry{}}
}

// Get returns mod's cached entry, building it on first use via
// vlog.LowerModule and translate. Repeated queries for the same
// module return the identical *Entry.
func (c *Cache) Get(vlog lower.VlogLower, registry *lower.Registry, mod *objtree.VNode, translate func(*objtree.VNode) *objtree.Object) (*Entry, error) {
	key := cacheKey(mod)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	shape, err := vlog.LowerModule(registry, mod)
	if err != nil {
		return nil, err
	}

	block := translate(mod)
	wrap := &objtree.Object{
		Kind:  objtree.KindVerilog,
		Pos:   mod.Pos,
		Ident: mod.Ident,
		VNode: mod,
	}

	e := &Entry{Shape: shape, Block: block, Wrap: wrap}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		// Lost the race between unlock above and re-lock here; keep
		// the first-built entry so pointer identity stays stable for
		// every caller.
		return existing, nil
	}
	c.entries[key] = e
	return e, nil
}

// Free releases every cached entry. Only the root driver calls this,
// at top-level teardown.
func (c *Cache) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*Entry{}
}

// cacheKey derives a stable key for mod's identifier: the hex-encoded
// sha256 of its spelling.
func cacheKey(mod *objtree.VNode) string {
	sum := sha256.Sum256([]byte(mod.Ident.String()))
	return hex.EncodeToString(sum[:])
}
