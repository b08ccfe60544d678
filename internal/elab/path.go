// Path construction for the hierarchical instance path (inst_name)
// and the dotted mangled name. The path grammar:
//
//	":" label ("(" index ")")? ( "@" primary "(" arch ")" )? ( ":" label ... )*
//
// All letters are lowercased per LRM.
package elab

import (
	"fmt"
	"strings"
)

// extendLabel appends ":label" to path, lower-cased.
func extendLabel(path, label string) string {
	return path + ":" + strings.ToLower(label)
}

// extendIndexedLabel appends ":label(index)" to path, lower-cased,
// used by for-generate expansion to name each iteration's
// child block.
func extendIndexedLabel(path, label string, index int64) string {
	return fmt.Sprintf("%s:%s(%d)", path, strings.ToLower(label), index)
}

// extendPrimaryArch appends "@primary(arch)" to path, lower-cased,
// used when a component elaboration or architecture elaboration
// resolves to a specific architecture.
func extendPrimaryArch(path, primary, arch string) string {
	return fmt.Sprintf("%s@%s(%s)", path, strings.ToLower(primary), strings.ToLower(arch))
}

// extendDotted appends ".label" to dotted, lower-cased, or returns
// label alone if dotted is empty (the root level).
func extendDotted(dotted, label string) string {
	label = strings.ToLower(label)
	if dotted == "" {
		return label
	}
	return dotted + "." + label
}
