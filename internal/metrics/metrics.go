// Package metrics counts calculator activity and serves it in the Prometheus
// text exposition format. Registry implements dcr.Observer, so wiring it into
// a Calculator is enough to get calculation and clamp counters.
//
// Exposed families:
//
//	dcr_calculations_total{ramp_source}  counter
//	dcr_rod_estimated_total               counter
//	dcr_clamps_total{kind}                counter
//	dcr_invalid_inputs_total              counter
//	dcr_last_value                        gauge
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/obsidianstack/dcrcalc/internal/dcr"
)

// Metric family names.
const (
	NameCalculations  = "dcr_calculations_total"
	NameRodEstimated  = "dcr_rod_estimated_total"
	NameClamps        = "dcr_clamps_total"
	NameInvalidInputs = "dcr_invalid_inputs_total"
	NameLastValue     = "dcr_last_value"
)

// Registry is a small in-process counter set. All methods are safe for
// concurrent use.
type Registry struct {
	mu           sync.Mutex
	calculations map[string]float64 // by ramp source
	clamps       map[string]float64 // by diagnostic kind
	rodEstimated float64
	invalid      float64
	last         float64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		calculations: make(map[string]float64),
		clamps:       make(map[string]float64),
	}
}

// Observe counts one clamp diagnostic.
func (r *Registry) Observe(d dcr.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clamps[d.Kind]++
}

// Computed counts one finished calculation.
func (r *Registry) Computed(_ dcr.Input, res dcr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calculations[res.RampSource]++
	if res.RodEstimated {
		r.rodEstimated++
	}
	r.last = res.DCR
}

// InvalidInput counts one input rejected by validation.
func (r *Registry) InvalidInput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalid++
}

// Gather returns the current metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	mfs := []*dto.MetricFamily{
		counter(NameRodEstimated, "Calculations where the rod length was estimated from stroke.", r.rodEstimated),
		counter(NameInvalidInputs, "Inputs rejected by validation.", r.invalid),
		gauge(NameLastValue, "Most recent dynamic compression ratio.", r.last),
	}
	// The text format rejects families without series, so labelled
	// families only appear once they have a value.
	if len(r.calculations) > 0 {
		mfs = append(mfs, labelledCounter(NameCalculations, "Calculations performed, by ramp estimation source.", "ramp_source", r.calculations))
	}
	if len(r.clamps) > 0 {
		mfs = append(mfs, labelledCounter(NameClamps, "Intermediate values clamped into range, by kind.", "kind", r.clamps))
	}
	sort.Slice(mfs, func(i, j int) bool { return mfs[i].GetName() < mfs[j].GetName() })
	return mfs
}

// WriteText encodes all families to w in the text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range r.Gather() {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ServeHTTP serves GET /metrics.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err := r.WriteText(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func counter(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: proto.Float64(v)}},
		},
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: proto.Float64(v)}},
		},
	}
}

// labelledCounter builds one series per key of values, ordered by label value.
func labelledCounter(name, help, label string, values map[string]float64) *dto.MetricFamily {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mf := &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: proto.String(label), Value: proto.String(k)}},
			Counter: &dto.Counter{Value: proto.Float64(values[k])},
		})
	}
	return mf
}
