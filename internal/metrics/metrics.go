package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/energy-bills/constants"
	"github.com/joseph-ayodele/energy-bills/internal/billparse"
)

const (
	metricPrefix = "bills_"

	ResultOK         = "ok"
	ResultReadFailed = "read_failed"
)

// Recorder holds the counters of one batch run on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	documents          *prometheus.CounterVec
	fieldParseFailures *prometheus.CounterVec
	rateRows           *prometheus.CounterVec
	runDuration        prometheus.Gauge
	lastRun            prometheus.Gauge
}

// NewRecorder registers the batch metrics on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "documents_total",
				Help: "Documents processed by result",
			},
			[]string{"result"},
		),
		fieldParseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "field_parse_failures_total",
				Help: "Matched fields whose value could not be converted, by field",
			},
			[]string{"field"},
		),
		rateRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rate_rows_total",
				Help: "Rate-period rows emitted by hours type",
			},
			[]string{"hours_type"},
		),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "run_duration_seconds",
			Help: "Wall time of the last batch run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_run_timestamp_seconds",
			Help: "Unix time the last batch run finished",
		}),
	}
	r.registry.MustRegister(r.documents, r.fieldParseFailures, r.rateRows, r.runDuration, r.lastRun)
	return r
}

// Registry exposes the underlying registry (tests, custom gatherers).
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) DocumentProcessed() { r.documents.WithLabelValues(ResultOK).Inc() }

func (r *Recorder) DocumentReadFailed() { r.documents.WithLabelValues(ResultReadFailed).Inc() }

func (r *Recorder) RateRow(rt constants.RateType) {
	r.rateRows.WithLabelValues(rt.Label()).Inc()
}

// FieldParseFailed implements billparse.Observer.
func (r *Recorder) FieldParseFailed(_ string, err *billparse.FieldError) {
	r.fieldParseFailures.WithLabelValues(err.Field).Inc()
}

// RunFinished records the duration and completion time of a run.
func (r *Recorder) RunFinished(d time.Duration, at time.Time) {
	r.runDuration.Set(d.Seconds())
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
