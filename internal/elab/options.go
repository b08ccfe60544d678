package elab

// Options is the elaboration core's ambient configuration. Nothing
// here reads it from disk or from flags; the driver's caller builds
// it, typically from config.Config.
type Options struct {
	// MaxDepth caps the mutually-recursive descent. Left at zero,
	// MaxInstantiationDepth is substituted automatically.
	MaxDepth int

	// Verbose/Progress/Trace select the logging verbosity.
	Verbose  bool
	Progress bool
	Trace    bool

	// DisableDefaultBinding turns off the default-binding fallback: a
	// component with no explicit Spec becomes an error instead of a
	// bind.DefaultVHDL lookup. The in-process mirror of
	// config.Config's Analysis.ResolveDefaultBinding=false.
	DisableDefaultBinding bool
}

// MaxInstantiationDepth is the hard recursion cap, limited by the
// IR's type-index width.
const MaxInstantiationDepth = 127

// DefaultOptions returns the literal defaults.
func DefaultOptions() *Options {
	return &Options{MaxDepth: MaxInstantiationDepth}
}

func (o *Options) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return MaxInstantiationDepth
	}
	return o.MaxDepth
}
