package diag

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// SchemaGuard validates the JSON-serialisable shape of bindings and
// the final elaboration artifact against an embedded CUE schema
// before they cross into the lowering pass: shape mismatches crash
// early at the boundary instead of surfacing downstream.
type SchemaGuard struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewSchemaGuard loads the embedded schema.
func NewSchemaGuard() (*SchemaGuard, error) {
	ctx := cuecontext.New()
	b, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded elaboration schema: %w", err)
	}
	schema := ctx.CompileBytes(b)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling elaboration schema: %w", schema.Err())
	}
	return &SchemaGuard{ctx: ctx, schema: schema}, nil
}

// ValidateBinding checks a #Binding-shaped value.
func (g *SchemaGuard) ValidateBinding(data interface{}) error {
	return g.validate(data, "#Binding")
}

// ValidateArtifact checks a #ElabArtifact-shaped value, the
// "<top>.elab" tree with exactly one top-level block child.
func (g *SchemaGuard) ValidateArtifact(data interface{}) error {
	return g.validate(data, "#ElabArtifact")
}

func (g *SchemaGuard) validate(data interface{}, defPath string) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling for schema check: %w", err)
	}
	dataValue := g.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}
	def := g.schema.LookupPath(cue.ParsePath(defPath))
	if def.Err() != nil {
		return fmt.Errorf("looking up %s definition: %w", defPath, def.Err())
	}
	unified := def.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("schema validation failed: %v", msgs)
	}
	return nil
}
