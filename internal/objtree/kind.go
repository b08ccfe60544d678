package objtree

// Kind tags a VHDL-side Object node. It stands in for the external
// tree builder's tree_kind_t enumeration.
type Kind int

const (
	KindInvalid Kind = iota
	KindEntity
	KindArch
	KindConfiguration
	KindBlockConfig
	KindPackage
	KindPackBody
	KindPackInst
	KindComponent
	KindInstance
	KindBinding
	KindSpec
	KindParam
	KindGenericDecl
	KindPortDecl
	KindRef
	KindArrayRef
	KindRecordRef
	KindFCall
	KindOpen
	KindLiteral
	KindString
	KindAggregate
	KindTypeRef
	KindConvFunc
	KindBlock
	KindVerilog
	KindProcess
	KindPSL
	KindForGenerate
	KindIfGenerate
	KindCaseGenerate
	KindHier
	KindAttrRef
	KindSubprogram
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindEntity:
		return "entity"
	case KindArch:
		return "arch"
	case KindConfiguration:
		return "configuration"
	case KindBlockConfig:
		return "block-config"
	case KindPackage:
		return "package"
	case KindPackBody:
		return "package-body"
	case KindPackInst:
		return "package-instance"
	case KindComponent:
		return "component"
	case KindInstance:
		return "instance"
	case KindBinding:
		return "binding"
	case KindSpec:
		return "spec"
	case KindParam:
		return "param"
	case KindGenericDecl:
		return "generic-decl"
	case KindPortDecl:
		return "port-decl"
	case KindRef:
		return "ref"
	case KindArrayRef:
		return "array-ref"
	case KindRecordRef:
		return "record-ref"
	case KindFCall:
		return "fcall"
	case KindOpen:
		return "open"
	case KindLiteral:
		return "literal"
	case KindString:
		return "string"
	case KindAggregate:
		return "aggregate"
	case KindTypeRef:
		return "type-ref"
	case KindConvFunc:
		return "conv-func"
	case KindBlock:
		return "block"
	case KindVerilog:
		return "verilog"
	case KindProcess:
		return "process"
	case KindPSL:
		return "psl"
	case KindForGenerate:
		return "for-generate"
	case KindIfGenerate:
		return "if-generate"
	case KindCaseGenerate:
		return "case-generate"
	case KindHier:
		return "hier"
	case KindAttrRef:
		return "attr-ref"
	case KindSubprogram:
		return "subprogram"
	default:
		return "unknown-kind"
	}
}

// Class distinguishes what a name/generic/binding refers to.
type Class int

const (
	ClassDefault Class = iota
	ClassEntity
	ClassComponent
	ClassConfiguration
	ClassType
	ClassSubprogram
	ClassConstant
	ClassPackage
	ClassSignal
	ClassVariable
)

func (c Class) String() string {
	switch c {
	case ClassEntity:
		return "entity"
	case ClassComponent:
		return "component"
	case ClassConfiguration:
		return "configuration"
	case ClassType:
		return "type"
	case ClassSubprogram:
		return "subprogram"
	case ClassConstant:
		return "constant"
	case ClassPackage:
		return "package"
	case ClassSignal:
		return "signal"
	case ClassVariable:
		return "variable"
	default:
		return "default"
	}
}

// LitKind is the literal subkind used by the override text parser
// and the folder.
type LitKind int

const (
	LitInt LitKind = iota
	LitReal
	LitPhysical
)

// ParamKind distinguishes positional from named genmap/port-map
// entries.
type ParamKind int

const (
	ParamPos ParamKind = iota
	ParamNamed
)

// GenericFamily is the formal generic's type family, used by both
// the resolver and the override text parser.
type GenericFamily int

const (
	GenericScalar GenericFamily = iota // integer, physical, real
	GenericEnum
	GenericCharArray
	GenericType
	GenericArrayType
	GenericSubprogram
	GenericPackage
)

// Direction is a port's mode.
type Direction int

const (
	DirIn Direction = iota
	DirOut
	DirInout
	DirBuffer
)

// Flags is a bitmask of facts unioned across a copy, per the
// "global flag union on copy" supplemented feature.
type Flags uint32

const (
	FlagHasPSL Flags = 1 << iota
	FlagHasProcess
	FlagHasInstance
)

// Union ORs two flag sets, used when elab_copy duplicates an entity
// and architecture into one instance.
func Union(a, b Flags) Flags { return a | b }
