package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/obsidianstack/dcrcalc/internal/api"
	"github.com/obsidianstack/dcrcalc/internal/config"
	"github.com/obsidianstack/dcrcalc/internal/dcr"
	"github.com/obsidianstack/dcrcalc/internal/metrics"
	"github.com/obsidianstack/dcrcalc/internal/ws"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalc_JSON(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantDCR float64
		wantIVC float64
	}{
		{"form defaults", nil, 7.43, 75},
		{"explicit engine", []string{"--stroke", "86", "--static-cr", "9.5", "--duration", "224", "--lsa", "112", "--rod", "133.4"}, 7.68, 64},
		{"default preset", []string{"--preset", "default", "--advance", "4"}, 7.71, 71},
		{"race preset", []string{"--preset", "race"}, 7.29, 77},
		{"flag wins over preset", []string{"--preset", "race", "--advance", "0"}, 6.99, 81},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"calc", "--json"}, tc.args...)...)
			if err != nil {
				t.Fatalf("calc: %v", err)
			}
			var resp api.CalculateResponse
			if err := json.Unmarshal([]byte(out), &resp); err != nil {
				t.Fatalf("decode: %v (out: %s)", err, out)
			}
			if resp.DCR != tc.wantDCR {
				t.Errorf("dcr: got %v, want %v", resp.DCR, tc.wantDCR)
			}
			if resp.IVCAngleABDC != tc.wantIVC {
				t.Errorf("ivc_angle_abdc: got %v, want %v", resp.IVCAngleABDC, tc.wantIVC)
			}
		})
	}
}

func TestCalc_Styled(t *testing.T) {
	out, err := execute(t, "calc")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	if !strings.Contains(out, "7.43:1") {
		t.Errorf("output missing ratio:\n%s", out)
	}
}

func TestCalc_Errors(t *testing.T) {
	_, err := execute(t, "calc", "--preset", "nope")
	if !errors.Is(err, api.ErrUnknownPreset) {
		t.Errorf("unknown preset: got %v", err)
	}

	_, err = execute(t, "calc", "--stroke", "0")
	if !errors.Is(err, dcr.ErrInvalidInput) {
		t.Errorf("zero stroke: got %v", err)
	}

	if _, err := execute(t, "calc", "--log-level", "loud"); err == nil {
		t.Error("bad log level: expected error")
	}
}

func TestCalc_ConfigRamp(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	writeFile(t, path, "calculator:\n  default_ramp_degrees: 15\n")

	out, err := execute(t, "--config", path, "calc", "--json")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	var resp api.CalculateResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DCR != 7.78 || resp.RampDegrees != 15 {
		t.Errorf("got dcr %v ramp %v, want 7.78 and 15", resp.DCR, resp.RampDegrees)
	}
}

func TestPresetsCmd(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	for _, want := range []string{"default", "race", "street-performance"} {
		if !strings.Contains(out, want) {
			t.Errorf("presets output missing %q", want)
		}
	}
}

func TestNewMux(t *testing.T) {
	t.Setenv("DCRCALC_TEST_KEY", "secret")
	cfg := config.Defaults()
	cfg.Server.Auth = config.AuthConfig{Mode: "apikey", Header: config.DefaultAuthHeader, KeyEnv: "DCRCALC_TEST_KEY"}

	reg := metrics.New()
	calc := dcr.NewReloadable(dcr.New(cfg.Calculator.Params(), reg))
	srv := httptest.NewServer(newMux(cfg, calc, reg, ws.New(calc, reg)))
	defer srv.Close()

	body := `{"stroke_mm": 70.4, "static_cr": 10.2, "intake_duration_050": 242, "lsa": 114}`

	resp, err := http.Post(srv.URL+"/api/v1/dcr", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("without key: got %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/dcr", strings.NewReader(body))
	req.Header.Set(config.DefaultAuthHeader, "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST with key: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("with key: got %d, want 200", resp.StatusCode)
	}

	// /metrics is not behind the API key.
	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body) //nolint:errcheck
	resp.Body.Close()
	if !strings.Contains(buf.String(), "dcr_last_value 7.43") {
		t.Errorf("metrics missing last value:\n%s", buf.String())
	}
}

func TestServe_RefusesApikeyWithoutKey(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Auth = config.AuthConfig{Mode: "apikey", Header: config.DefaultAuthHeader, KeyEnv: "DCRCALC_TEST_UNSET_KEY"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := serve(ctx, cfg); err == nil || !strings.Contains(err.Error(), "DCRCALC_TEST_UNSET_KEY") {
		t.Errorf("serve: got %v, want missing key error", err)
	}
}

func TestNewMux_ApikeyWithoutKeyFailsClosed(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Auth = config.AuthConfig{Mode: "apikey", Header: config.DefaultAuthHeader, KeyEnv: "DCRCALC_TEST_UNSET_KEY"}

	reg := metrics.New()
	calc := dcr.NewReloadable(dcr.New(cfg.Calculator.Params(), reg))
	srv := httptest.NewServer(newMux(cfg, calc, reg, ws.New(calc, reg)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
