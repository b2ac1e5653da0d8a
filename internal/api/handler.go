package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/obsidianstack/dcrcalc/internal/dcr"
	"github.com/obsidianstack/dcrcalc/internal/presets"
	"github.com/obsidianstack/dcrcalc/internal/render"
)

// maxBodyBytes caps request bodies; an input is a handful of numbers.
const maxBodyBytes = 64 << 10

// ErrUnknownPreset is returned by Evaluate when the requested preset does
// not exist.
var ErrUnknownPreset = errors.New("unknown preset")

// Calculator is the part of dcr.Reloadable the API needs.
type Calculator interface {
	Compute(in dcr.Input) dcr.Result
	Params() dcr.Params
}

// InvalidCounter is notified when a request fails validation. The metrics
// registry implements it.
type InvalidCounter interface {
	InvalidInput()
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	calc    Calculator
	invalid InvalidCounter
	mux     *http.ServeMux
}

// New creates a Handler wired to calc and registers all routes.
// invalid may be nil.
func New(calc Calculator, invalid InvalidCounter) http.Handler {
	h := &Handler{calc: calc, invalid: invalid, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/dcr", h.calculate)
	h.mux.HandleFunc("/api/v1/presets", h.listPresets)
	h.mux.HandleFunc("/api/v1/presets/", h.getPreset) // subtree, extracts {name}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Evaluate applies the preset (if any), validates, and computes. The
// returned error wraps ErrUnknownPreset or dcr.ErrInvalidInput.
func Evaluate(calc Calculator, req CalculateRequest) (CalculateResponse, error) {
	in := req.Input
	if req.Preset != "" {
		p, ok := presets.Lookup(req.Preset)
		if !ok {
			return CalculateResponse{}, fmt.Errorf("%w: %q", ErrUnknownPreset, req.Preset)
		}
		in = p.Apply(in)
	}
	if err := in.Validate(); err != nil {
		return CalculateResponse{}, err
	}

	res := calc.Compute(in)
	return CalculateResponse{
		Display: render.Ratio(res.DCR),
		Result:  res,
		Input:   in,
	}, nil
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: liveness plus the active constants.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	p := h.calc.Params()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:             "ok",
		DefaultRampDegrees: p.DefaultRampDegrees,
		RodRatioEstimate:   p.RodRatioEstimate,
		PresetCount:        len(presets.Names()),
	})
}

// calculate handles POST /api/v1/dcr.
func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	log := slog.With("request_id", reqID)

	var req CalculateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.countInvalid()
		log.Warn("api: bad request body", "err", err)
		jsonResp(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), RequestID: reqID})
		return
	}

	resp, err := Evaluate(h.calc, req)
	if err != nil {
		h.countInvalid()
		log.Warn("api: rejected input", "err", err, "preset", req.Preset)
		jsonResp(w, http.StatusBadRequest, errorResponse{Error: err.Error(), RequestID: reqID})
		return
	}
	resp.RequestID = reqID

	log.Debug("api: computed",
		"dcr", resp.DCR,
		"method", resp.Method,
		"diagnostics", len(resp.Diagnostics),
	)
	jsonResp(w, http.StatusOK, resp)
}

// listPresets returns GET /api/v1/presets.
func (h *Handler) listPresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, PresetsResponse{Presets: presets.All()})
}

// getPreset returns GET /api/v1/presets/{name}.
func (h *Handler) getPreset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/presets/")
	if name == "" {
		h.listPresets(w, r)
		return
	}

	p, ok := presets.Lookup(name)
	if !ok {
		jsonErr(w, http.StatusNotFound, "preset not found")
		return
	}
	jsonResp(w, http.StatusOK, p)
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) countInvalid() {
	if h.invalid != nil {
		h.invalid.InvalidInput()
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
