package dcr

import (
	"fmt"
	"log/slog"
)

// Diagnostic kinds.
const (
	KindIVCClamped         = "ivc_angle_clamped"
	KindStrokeRatioClamped = "effective_stroke_ratio_clamped"
)

// Diagnostic records one intermediate value that was forced back into its
// valid range. It never aborts the calculation.
type Diagnostic struct {
	Kind     string  `json:"kind"`
	Original float64 `json:"original"`
	Clamped  float64 `json:"clamped"`
	Message  string  `json:"message"`
}

func newDiagnostic(kind string, original, clamped float64) Diagnostic {
	var msg string
	switch kind {
	case KindIVCClamped:
		msg = fmt.Sprintf("IVC angle %.1f was outside expected range (%g-%g) and clamped to %g. Check inputs.",
			original, MinIVCAngle, MaxIVCAngle, clamped)
	default:
		msg = fmt.Sprintf("effective stroke ratio %.4f was outside [0, 1] and clamped to %g. Check inputs.",
			original, clamped)
	}
	return Diagnostic{Kind: kind, Original: original, Clamped: clamped, Message: msg}
}

// Observer receives events from a Calculator. Implementations must be safe
// for concurrent use when the Calculator is shared.
type Observer interface {
	// Observe is called once per diagnostic, before Computed.
	Observe(d Diagnostic)
	// Computed is called after every calculation.
	Computed(in Input, res Result)
}

// ObserverFunc adapts a plain function to Observer. It is only told about
// diagnostics.
type ObserverFunc func(Diagnostic)

// Observe calls f(d).
func (f ObserverFunc) Observe(d Diagnostic) { f(d) }

// Computed does nothing.
func (f ObserverFunc) Computed(Input, Result) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

// Observe forwards d to every non-nil observer.
func (m MultiObserver) Observe(d Diagnostic) {
	for _, o := range m {
		if o != nil {
			o.Observe(d)
		}
	}
}

// Computed forwards the result to every non-nil observer.
func (m MultiObserver) Computed(in Input, res Result) {
	for _, o := range m {
		if o != nil {
			o.Computed(in, res)
		}
	}
}

// SlogObserver logs every diagnostic at warn level.
type SlogObserver struct {
	Logger *slog.Logger // nil means slog.Default()
}

// Observe logs d, including its human-readable message.
func (o SlogObserver) Observe(d Diagnostic) {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Warn("dcr: value clamped",
		"kind", d.Kind,
		"original", d.Original,
		"clamped", d.Clamped,
		"message", d.Message,
	)
}

// Computed does nothing; only clamps are logged.
func (o SlogObserver) Computed(Input, Result) {}
