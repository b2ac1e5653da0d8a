// Package api implements the HTTP REST API for `dcrcalc serve`.
//
// New(calc, invalid) returns an http.Handler that serves:
//
//	GET  /api/v1/health         : status plus the active estimation constants
//	POST /api/v1/dcr            : compute one DCR from a CalculateRequest
//	GET  /api/v1/presets        : all built-in cam presets
//	GET  /api/v1/presets/{name} : single preset; 404 if unknown
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for the wrong method
//   - Return {"error": "..."} bodies on failure
//
// POST /api/v1/dcr is the validation layer in front of the engine: bodies
// with unknown fields, unknown presets, or non-positive required values get
// 400 and are counted through InvalidCounter. Every calculation gets a
// request_id (UUID) that appears in the response and in the logs.
//
// Evaluate is shared with the WebSocket hub so both surfaces apply presets
// and validation identically. No external HTTP framework is used.
package api
