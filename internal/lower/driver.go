package lower

import "github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"

// DriverSet is the driver analyser's result: the set of signal
// driver contributions a body produces, keyed by the driven object's
// pointer identity.
type DriverSet struct {
	drivers map[*objtree.Object]bool
}

// NewDriverSet creates an empty DriverSet.
func NewDriverSet() *DriverSet {
	return &DriverSet{drivers: map[*objtree.Object]bool{}}
}

// Add records that decl is driven.
func (d *DriverSet) Add(decl *objtree.Object) {
	d.drivers[decl] = true
}

// Drives reports whether decl is driven.
func (d *DriverSet) Drives(decl *objtree.Object) bool {
	return d.drivers[decl]
}

// Len returns the number of distinct drivers.
func (d *DriverSet) Len() int {
	return len(d.drivers)
}

// Analyser is the narrow driver-analyser interface elaboration
// consumes: given a design body, return its driver set.
type Analyser interface {
	Drivers(body []*objtree.Object) *DriverSet
}

// BasicAnalyser is a minimal concrete Analyser: a declaration is a
// driver if some KindRef node in the body (searched through Stmts and
// Children) has Direction DirOut and refers to it. Assignment targets
// inside KindFCall nodes are not recognised as drivers.
type BasicAnalyser struct{}

// NewBasicAnalyser creates a BasicAnalyser.
func NewBasicAnalyser() *BasicAnalyser { return &BasicAnalyser{} }

func (a *BasicAnalyser) Drivers(body []*objtree.Object) *DriverSet {
	ds := NewDriverSet()
	for _, stmt := range body {
		collectDrivers(stmt, ds)
	}
	return ds
}

func collectDrivers(o *objtree.Object, ds *DriverSet) {
	if o == nil {
		return
	}
	if o.Kind == objtree.KindRef && o.Direction == objtree.DirOut && o.Ref != nil {
		ds.Add(o.Ref)
	}
	for _, c := range o.Stmts {
		collectDrivers(c, ds)
	}
	for _, c := range o.Children {
		collectDrivers(c, ds)
	}
}
