package dcr

import (
	"math"
	"strings"
)

// Default estimation constants.
const (
	// DefaultRampDegrees is the assumed seat-to-0.050" difference per side
	// when no advertised duration is supplied. Earlier calculator revisions
	// used 15.
	DefaultRampDegrees = 20.0

	// RodRatioEstimate is the rod-length/stroke multiplier used when the rod
	// length is unknown.
	RodRatioEstimate = 1.7
)

// Clamp bounds for intermediate values.
const (
	MinIVCAngle = 1.0
	MaxIVCAngle = 179.0
)

// Method descriptions reported in Result.Method.
const (
	MethodAdvertised  = "Using Advertised Duration"
	MethodDefaultRamp = "Using default ramp estimate"
	NoteRodEstimated  = "(Rod length estimated)"
)

// Ramp sources reported in Result.RampSource.
const (
	RampSourceAdvertised = "advertised"
	RampSourceDefault    = "default"
)

// Input is one set of engine geometry and cam timing values.
// Optional fields use their zero value to mean "not provided".
type Input struct {
	// StrokeMM is the crankshaft stroke in millimetres.
	StrokeMM float64 `json:"stroke_mm" yaml:"stroke_mm"`

	// StaticCR is the static (geometric) compression ratio.
	StaticCR float64 `json:"static_cr" yaml:"static_cr"`

	// IntakeDurationAt050 is the intake duration at 0.050" lift, in degrees.
	IntakeDurationAt050 float64 `json:"intake_duration_050" yaml:"intake_duration_050"`

	// LobeSeparation is the lobe separation angle in degrees.
	LobeSeparation float64 `json:"lsa" yaml:"lsa"`

	// RodLengthMM is the connecting rod length. Zero or negative means
	// "estimate from stroke".
	RodLengthMM float64 `json:"rod_length_mm,omitempty" yaml:"rod_length_mm"`

	// AdvertisedDuration is the seat-to-seat intake duration. It is only
	// used when strictly greater than IntakeDurationAt050.
	AdvertisedDuration float64 `json:"advertised_duration,omitempty" yaml:"advertised_duration"`

	// CamAdvance is the installed advance in degrees; negative is retard.
	CamAdvance float64 `json:"cam_advance,omitempty" yaml:"cam_advance"`
}

// Result is the outcome of one calculation.
type Result struct {
	// DCR is the dynamic compression ratio rounded to 2 decimals.
	DCR float64 `json:"dcr"`

	// Method describes which estimation branches were taken.
	Method string `json:"method"`

	RampSource   string `json:"ramp_source"`
	RodEstimated bool   `json:"rod_estimated"`

	// Values actually used by the formula, after estimation and clamping.
	RodLengthMM          float64 `json:"rod_length_mm"`
	RampDegrees          float64 `json:"ramp_degrees"`
	IVCAngleABDC         float64 `json:"ivc_angle_abdc"`
	EffectiveStrokeRatio float64 `json:"effective_stroke_ratio"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Params holds the tunable estimation constants.
type Params struct {
	DefaultRampDegrees float64
	RodRatioEstimate   float64
}

// DefaultParams returns the constants of the current formula revision.
func DefaultParams() Params {
	return Params{
		DefaultRampDegrees: DefaultRampDegrees,
		RodRatioEstimate:   RodRatioEstimate,
	}
}

// Calculator computes DCR with a given set of Params. A nil Observer is
// allowed. Calculator holds no mutable state and is safe for concurrent use.
type Calculator struct {
	Params   Params
	Observer Observer
}

// New returns a Calculator with the given params and observer.
func New(p Params, obs Observer) *Calculator {
	return &Calculator{Params: p, Observer: obs}
}

// Compute runs the calculation with DefaultParams and no observer.
func Compute(in Input) Result {
	c := Calculator{Params: DefaultParams()}
	return c.Compute(in)
}

// Compute estimates the dynamic compression ratio for in.
//
// Steps:
//
//	rod   = in.RodLengthMM, or stroke * RodRatioEstimate
//	ramp  = (advertised - dur050) / 2, or DefaultRampDegrees
//	ivc   = dur050/2 + lsa - 180 + ramp - advance, clamped to [1, 179]
//	theta = 180 + ivc
//	esr   = 0.5 * (1 - cos θ + R - sqrt(R² - sin² θ)), R = rod / (stroke/2)
//	dcr   = 1 + clamp01(esr) * (staticCR - 1)
func (c *Calculator) Compute(in Input) Result {
	var res Result

	res.RodLengthMM = in.RodLengthMM
	if res.RodLengthMM <= 0 {
		res.RodLengthMM = in.StrokeMM * c.Params.RodRatioEstimate
		res.RodEstimated = true
	}

	if in.AdvertisedDuration > in.IntakeDurationAt050 {
		res.RampDegrees = (in.AdvertisedDuration - in.IntakeDurationAt050) / 2
		res.RampSource = RampSourceAdvertised
	} else {
		res.RampDegrees = c.Params.DefaultRampDegrees
		res.RampSource = RampSourceDefault
	}

	// Positive advance closes the intake earlier.
	ivc := in.IntakeDurationAt050/2 + in.LobeSeparation - 180 + res.RampDegrees - in.CamAdvance
	res.IVCAngleABDC = clamp(ivc, MinIVCAngle, MaxIVCAngle)
	if res.IVCAngleABDC != ivc {
		res.Diagnostics = append(res.Diagnostics, newDiagnostic(KindIVCClamped, ivc, res.IVCAngleABDC))
	}

	esr := effectiveStrokeRatio(in.StrokeMM, res.RodLengthMM, res.IVCAngleABDC)
	res.EffectiveStrokeRatio = clamp(esr, 0, 1)
	if res.EffectiveStrokeRatio != esr {
		res.Diagnostics = append(res.Diagnostics, newDiagnostic(KindStrokeRatioClamped, esr, res.EffectiveStrokeRatio))
	}

	res.DCR = round2(1 + res.EffectiveStrokeRatio*(in.StaticCR-1))
	res.Method = method(res.RampSource, res.RodEstimated)

	if c.Observer != nil {
		for _, d := range res.Diagnostics {
			c.Observer.Observe(d)
		}
		c.Observer.Computed(in, res)
	}
	return res
}

// effectiveStrokeRatio returns the fraction of the swept volume still
// displaced when the intake closes ivcABDC degrees after BDC.
func effectiveStrokeRatio(strokeMM, rodMM, ivcABDC float64) float64 {
	theta := (180 + ivcABDC) * math.Pi / 180
	crankRadius := strokeMM / 2
	r := rodMM / crankRadius

	sin := math.Sin(theta)
	// max() guards against round-off pushing the radicand below zero.
	sqrtTerm := math.Sqrt(math.Max(0, r*r-sin*sin))
	return 0.5 * (1 - math.Cos(theta) + r - sqrtTerm)
}

func method(rampSource string, rodEstimated bool) string {
	parts := make([]string, 0, 2)
	if rampSource == RampSourceAdvertised {
		parts = append(parts, MethodAdvertised)
	} else {
		parts = append(parts, MethodDefaultRamp)
	}
	if rodEstimated {
		parts = append(parts, NoteRodEstimated)
	}
	return strings.Join(parts, " ")
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
