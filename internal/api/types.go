package api

import (
	"github.com/obsidianstack/dcrcalc/internal/dcr"
	"github.com/obsidianstack/dcrcalc/internal/presets"
)

// CalculateRequest is the body of POST /api/v1/dcr and of every WebSocket
// frame sent to /ws/calc. When Preset is set, its timing fields replace the
// ones in the request.
type CalculateRequest struct {
	dcr.Input
	Preset string `json:"preset,omitempty"`
}

// CalculateResponse is the payload returned for a successful calculation.
type CalculateResponse struct {
	RequestID string `json:"request_id"`

	// Display is the ratio formatted for humans, e.g. "7.43:1".
	Display string `json:"display"`

	dcr.Result

	// Input is the input actually computed, after preset selection.
	Input dcr.Input `json:"input"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status             string  `json:"status"`
	DefaultRampDegrees float64 `json:"default_ramp_degrees"`
	RodRatioEstimate   float64 `json:"rod_ratio_estimate"`
	PresetCount        int     `json:"preset_count"`
}

// PresetsResponse is the payload for GET /api/v1/presets.
type PresetsResponse struct {
	Presets []presets.Preset `json:"presets"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
