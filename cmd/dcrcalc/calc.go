package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/obsidianstack/dcrcalc/internal/api"
	"github.com/obsidianstack/dcrcalc/internal/config"
	"github.com/obsidianstack/dcrcalc/internal/dcr"
	"github.com/obsidianstack/dcrcalc/internal/presets"
	"github.com/obsidianstack/dcrcalc/internal/render"
)

// calcFlags mirrors the input form. Zero means "not provided" for the
// optional fields.
type calcFlags struct {
	input  dcr.Input
	preset string
	json   bool
}

func newCalcCmd() *cobra.Command {
	var f calcFlags

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the dynamic compression ratio for one engine",
		Example: `  dcrcalc calc
  dcrcalc calc --stroke 86 --static-cr 9.5 --duration 224 --lsa 112 --rod 133.4
  dcrcalc calc --preset street-performance --advance 2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// The CLI writes results to stdout, so logs go to stderr as text.
			logCfg := cfg.Log
			logCfg.Format = "text"
			if err := setupLogger(os.Stderr, logCfg); err != nil {
				return err
			}
			return runCalc(cmd, cfg, f)
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.input.StrokeMM, "stroke", 70.4, "stroke in mm")
	fl.Float64Var(&f.input.StaticCR, "static-cr", 10.2, "static compression ratio (e.g. 10.2 for 10.2:1)")
	fl.Float64Var(&f.input.IntakeDurationAt050, "duration", 242, "intake duration at 0.050in lift, degrees")
	fl.Float64Var(&f.input.LobeSeparation, "lsa", 114, "lobe separation angle, degrees")
	fl.Float64Var(&f.input.RodLengthMM, "rod", 0, "connecting rod length in mm (estimated when 0)")
	fl.Float64Var(&f.input.AdvertisedDuration, "advertised", 0, "advertised (seat-to-seat) intake duration, degrees")
	fl.Float64Var(&f.input.CamAdvance, "advance", 0, "cam advance in degrees (negative retards)")
	fl.StringVar(&f.preset, "preset", "", "start from a named cam preset (see dcrcalc presets)")
	fl.BoolVar(&f.json, "json", false, "print the result as JSON")

	return cmd
}

func runCalc(cmd *cobra.Command, cfg *config.Config, f calcFlags) error {
	in, err := resolveInput(cmd.Flags(), f)
	if err != nil {
		return err
	}

	calc := dcr.NewReloadable(dcr.New(cfg.Calculator.Params(), dcr.SlogObserver{}))
	resp, err := api.Evaluate(calc, api.CalculateRequest{Input: in})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintln(out, render.Result(resp.Result))
	return nil
}

// resolveInput applies --preset to the flag values, then lets every timing
// flag the user set explicitly win over the preset.
func resolveInput(fs *pflag.FlagSet, f calcFlags) (dcr.Input, error) {
	in := f.input
	if f.preset == "" {
		return in, nil
	}

	p, ok := presets.Lookup(f.preset)
	if !ok {
		return dcr.Input{}, fmt.Errorf("%w: %q (known: %v)", api.ErrUnknownPreset, f.preset, presets.Names())
	}
	in = p.Apply(in)

	overrides := []struct {
		flag string
		dst  *float64
		src  float64
	}{
		{"duration", &in.IntakeDurationAt050, f.input.IntakeDurationAt050},
		{"lsa", &in.LobeSeparation, f.input.LobeSeparation},
		{"advertised", &in.AdvertisedDuration, f.input.AdvertisedDuration},
		{"advance", &in.CamAdvance, f.input.CamAdvance},
	}
	for _, o := range overrides {
		if fs.Changed(o.flag) {
			*o.dst = o.src
		}
	}
	return in, nil
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in cam presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), render.Presets(presets.All()))
			return nil
		},
	}
}
