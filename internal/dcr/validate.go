package dcr

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every error returned from Validate.
var ErrInvalidInput = errors.New("invalid input")

// Validate checks in the way a form layer would before calling Compute:
// required fields must be finite and positive, optional lengths and
// durations must be finite and not negative, and cam advance must be finite.
func (in Input) Validate() error {
	required := []struct {
		name string
		v    float64
	}{
		{"stroke_mm", in.StrokeMM},
		{"static_cr", in.StaticCR},
		{"intake_duration_050", in.IntakeDurationAt050},
		{"lsa", in.LobeSeparation},
	}
	for _, f := range required {
		if !finite(f.v) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidInput, f.name)
		}
	}

	optional := []struct {
		name string
		v    float64
	}{
		{"rod_length_mm", in.RodLengthMM},
		{"advertised_duration", in.AdvertisedDuration},
	}
	for _, f := range optional {
		if !finite(f.v) || f.v < 0 {
			return fmt.Errorf("%w: %s must be positive when set", ErrInvalidInput, f.name)
		}
	}

	if !finite(in.CamAdvance) {
		return fmt.Errorf("%w: cam_advance must be a finite number", ErrInvalidInput)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
