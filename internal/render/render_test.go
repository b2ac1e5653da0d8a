package render

import (
	"strings"
	"testing"

	"github.com/obsidianstack/dcrcalc/internal/dcr"
	"github.com/obsidianstack/dcrcalc/internal/presets"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{7.43, "7.43:1"},
		{7.4, "7.4:1"},
		{10, "10:1"},
		{1, "1:1"},
	}
	for _, tc := range tests {
		if got := Ratio(tc.in); got != tc.want {
			t.Errorf("Ratio(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResult(t *testing.T) {
	res := dcr.Compute(dcr.Input{StrokeMM: 70.4, StaticCR: 10.2, IntakeDurationAt050: 242, LobeSeparation: 114})
	out := Result(res)

	for _, want := range []string{
		"7.43:1",
		"Using default ramp estimate (Rod length estimated)",
		"119.68",
		"75.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Result() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "warning:") {
		t.Errorf("clean result should have no warnings:\n%s", out)
	}
}

func TestResult_Warnings(t *testing.T) {
	res := dcr.Compute(dcr.Input{
		StrokeMM: 70.4, StaticCR: 10.2, IntakeDurationAt050: 242, LobeSeparation: 114, CamAdvance: -200,
	})
	out := Result(res)
	if !strings.Contains(out, "warning:") || !strings.Contains(out, "clamped to 179") {
		t.Errorf("Result() missing clamp warning:\n%s", out)
	}
}

func TestPresets(t *testing.T) {
	out := Presets(presets.All())
	for _, name := range presets.Names() {
		if !strings.Contains(out, name) {
			t.Errorf("Presets() missing %q", name)
		}
	}
	if !strings.Contains(out, "DUR@050") {
		t.Errorf("Presets() missing header:\n%s", out)
	}
}
