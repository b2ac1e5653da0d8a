// Package dcr estimates the dynamic compression ratio of a piston engine from
// its static compression ratio and intake valve timing.
//
// dcr.go provides the pure Compute(Input) function and the Calculator type
// that carries the tunable estimation constants:
//
//   - rod length, when absent, is estimated as stroke * RodRatioEstimate (1.7)
//   - the seat-to-0.050" ramp, when no advertised duration is given, is
//     DefaultRampDegrees (20)
//
// The intake closing angle (degrees ABDC) is derived from duration @ 0.050",
// lobe separation, ramp and installed cam advance, clamped to [1, 179], and
// fed through slider-crank kinematics to get the fraction of the swept volume
// still trapped at IVC. That fraction, clamped to [0, 1], scales the static
// ratio down to the dynamic one:
//
//	dcr = 1 + effectiveStrokeRatio * (staticCR - 1)
//
// The engine never fails. Implausible input combinations are clamped and
// reported as Diagnostic values, both on the Result and through an optional
// Observer, so the computation itself stays free of global side effects.
//
// validate.go holds the caller-side validation layer (Input.Validate); the
// engine does not call it.
package dcr
