package elab

import "github.com/sirupsen/logrus"

// log is the package-wide logger: text output, level selected by
// Options rather than by a SetLevel call on a shared logger. newEntry
// builds a per-call logger that writes to log's output with log's
// formatter, so concurrent elaboration runs with different Options
// don't fight over global state.
var log = logrus.New()

func newEntry(o *Options) *logrus.Entry {
	level := logrus.WarnLevel
	switch {
	case o != nil && o.Trace:
		level = logrus.TraceLevel
	case o != nil && o.Verbose:
		level = logrus.DebugLevel
	case o != nil && o.Progress:
		level = logrus.InfoLevel
	}
	l := logrus.New()
	l.SetOutput(log.Out)
	l.SetFormatter(log.Formatter)
	l.SetLevel(level)
	return logrus.NewEntry(l)
}

func logPhase(c *Ctx, phase string) {
	newEntry(c.Options).WithFields(logrus.Fields{
		"inst_name": c.InstName,
		"dotted":    c.Dotted,
		"depth":     c.Depth,
	}).Debugf("elaboration phase: %s", phase)
}

func logUnusedOverrides(o *Options, names []string) {
	for _, n := range names {
		newEntry(o).Warnf("generic value for %s not used", n)
	}
}
