// Package metrics records the outcome of a run in a private Prometheus
// registry and writes it out in the text exposition format, ready for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the gauges of a single run.
type Recorder struct {
	registry *prometheus.Registry

	stageSeconds *prometheus.GaugeVec
	rows         *prometheus.GaugeVec
	features     prometheus.Gauge
	epochs       prometheus.Gauge
	finalLoss    prometheus.Gauge
	accuracy     prometheus.Gauge
	classScore   *prometheus.GaugeVec
	imputed      *prometheus.GaugeVec
}

// NewRecorder registers the run gauges. Every series carries the run_id
// and model constant labels.
func NewRecorder(runID, model string) *Recorder {
	constLabels := prometheus.Labels{"run_id": runID, "model": model}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "salesclass_stage_duration_seconds",
			Help:        "Wall time spent in each pipeline stage.",
			ConstLabels: constLabels,
		}, []string{"stage"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "salesclass_rows",
			Help:        "Number of rows per data set partition.",
			ConstLabels: constLabels,
		}, []string{"partition"}),
		features: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "salesclass_features",
			Help:        "Columns of the final feature matrix.",
			ConstLabels: constLabels,
		}),
		epochs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "salesclass_training_epochs",
			Help:        "Epochs run by the neural network.",
			ConstLabels: constLabels,
		}),
		finalLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "salesclass_training_loss",
			Help:        "Training loss after the last epoch.",
			ConstLabels: constLabels,
		}),
		accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "salesclass_test_accuracy",
			Help:        "Accuracy on the held-out split.",
			ConstLabels: constLabels,
		}),
		classScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "salesclass_class_score",
			Help:        "Per-class precision, recall and F1 on the held-out split.",
			ConstLabels: constLabels,
		}, []string{"class", "metric"}),
		imputed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "salesclass_imputed_cells",
			Help:        "Cells filled by imputation, by pass.",
			ConstLabels: constLabels,
		}, []string{"pass"}),
	}
	r.registry.MustRegister(r.stageSeconds, r.rows, r.features, r.epochs,
		r.finalLoss, r.accuracy, r.classScore, r.imputed)
	return r
}

func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageSeconds.WithLabelValues(stage).Set(d.Seconds())
}

func (r *Recorder) SetRows(partition string, n int) {
	r.rows.WithLabelValues(partition).Set(float64(n))
}

func (r *Recorder) SetFeatures(n int) { r.features.Set(float64(n)) }

func (r *Recorder) SetImputed(pass string, n int) {
	r.imputed.WithLabelValues(pass).Set(float64(n))
}

func (r *Recorder) SetTraining(epochs int, loss float64) {
	r.epochs.Set(float64(epochs))
	r.finalLoss.Set(loss)
}

func (r *Recorder) SetAccuracy(v float64) { r.accuracy.Set(v) }

func (r *Recorder) SetClassScore(class, metric string, v float64) {
	r.classScore.WithLabelValues(class, metric).Set(v)
}

// WriteTextfile writes every gauge to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
