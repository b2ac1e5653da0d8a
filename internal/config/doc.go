// Package config loads and watches the dcrcalc configuration file (config.yaml).
//
// Top-level types:
//   - Config{Calculator, Server, Log}: full config tree parsed from YAML
//   - CalculatorConfig: default_ramp_degrees, rod_ratio_estimate; Params()
//     converts it for the dcr package
//   - ServerConfig: http_port, auth
//   - AuthConfig: mode (apikey|none), header, key_env; Key() resolves the
//     key from the environment
//   - LogConfig: level (debug|info|warn|error), format (json|text)
//
// Load(path) reads the YAML file, applies defaults (20° ramp, 1.7 rod ratio,
// port 8080, info/json logging), then validates ranges and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors by re-adding the watch after each event.
package config
