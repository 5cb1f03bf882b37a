package metrics

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	metricPrefix = "platform_"

	// ResultSuccess and ResultError are the result label values.
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	stageRunsTotal   *prometheus.CounterVec
	stageRunLatency  *prometheus.HistogramVec
	updateDecisions  *prometheus.CounterVec
	staleComparisons prometheus.Counter
	recordsProduced  *prometheus.GaugeVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	notifyTotal *prometheus.CounterVec
)

// Init registers pipeline metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		stageRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_stage_runs_total",
				Help: "Total pipeline stage runs by stage and result",
			},
			[]string{"stage", "result"},
		)
		stageRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_stage_latency_seconds",
				Help:    "Pipeline stage latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage", "result"},
		)
		updateDecisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "consumption_update_decisions_total",
				Help: "Total update workflow decisions",
			},
			[]string{"decision"},
		)
		staleComparisons = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "consumption_stale_comparisons_total",
				Help: "Total update runs whose previous dataset could not be fetched",
			},
		)
		recordsProduced = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "consumption_records",
				Help: "Records produced by the last stage run",
			},
			[]string{"stage"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "consumption_export_total",
				Help: "Total processed exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "consumption_export_latency_seconds",
				Help:    "Processed export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		notifyTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "consumption_notify_total",
				Help: "Total publish notifications by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			stageRunsTotal,
			stageRunLatency,
			updateDecisions,
			staleComparisons,
			recordsProduced,
			exportTotal,
			exportLatency,
			notifyTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	datasets := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "consumption_stored_datasets",
			Help: "Datasets stored in the database",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			var count int64
			if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM energy_consumption_datasets`).Scan(&count); err != nil {
				if logger != nil {
					logger.Printf("event=metrics_query_failed metric=stored_datasets error=%v", err)
				}
				return 0
			}
			return float64(count)
		},
	)
	prometheus.MustRegister(datasets)
}

// ObserveStage records stage duration and result.
func ObserveStage(stage, result string, duration time.Duration) {
	if stage == "" {
		stage = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if stageRunsTotal != nil {
		stageRunsTotal.WithLabelValues(stage, result).Inc()
	}
	if stageRunLatency != nil {
		stageRunLatency.WithLabelValues(stage, result).Observe(duration.Seconds())
	}
}

// IncUpdateDecision increments the decision counter.
func IncUpdateDecision(decision string) {
	if decision == "" {
		decision = "unknown"
	}
	if updateDecisions != nil {
		updateDecisions.WithLabelValues(decision).Inc()
	}
}

// IncStaleComparison counts an update run that compared against nothing.
func IncStaleComparison() {
	if staleComparisons != nil {
		staleComparisons.Inc()
	}
}

// SetRecords sets the record gauge for a stage.
func SetRecords(stage string, count int) {
	if stage == "" {
		stage = "unknown"
	}
	if recordsProduced != nil {
		recordsProduced.WithLabelValues(stage).Set(float64(count))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncNotify increments the notification counter.
func IncNotify(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if notifyTotal != nil {
		notifyTotal.WithLabelValues(result).Inc()
	}
}

// Push sends the default registry to a Pushgateway. Batch runs exit before a scrape.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if job == "" {
		job = "energy_consumption_pipeline"
	}
	return push.New(url, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx)
}
