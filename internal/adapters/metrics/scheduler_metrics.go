package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// SchedulerMetricsCollector records pipeline activity. It implements
// scheduling.MetricsRecorder.
type SchedulerMetricsCollector struct {
	tickDuration   prometheus.Histogram
	ticksTotal     prometheus.Counter
	probesTotal    prometheus.Counter
	deferredTotal  prometheus.Counter
	rejectionTotal prometheus.Counter

	assignmentsTotal *prometheus.CounterVec
	completionsTotal *prometheus.CounterVec
	abandonsTotal    *prometheus.CounterVec
	leaseCleanups    *prometheus.CounterVec

	ledgerReserved *prometheus.GaugeVec
	workItems      *prometheus.GaugeVec
	requestsOpen   prometheus.Gauge
	leasesActive   prometheus.Gauge
}

var _ scheduling.MetricsRecorder = (*SchedulerMetricsCollector)(nil)

// NewSchedulerMetricsCollector creates the scheduler metrics
func NewSchedulerMetricsCollector() *SchedulerMetricsCollector {
	return &SchedulerMetricsCollector{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one Perceive, Decide, Execute, Maintain pass",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total number of ticks processed",
		}),
		probesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "path_probes_total",
			Help:      "Reachability probes spent by Decide",
		}),
		deferredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "path_probes_deferred_total",
			Help:      "Candidates left unprobed because the path budget ran out",
		}),
		rejectionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "policy_rejections_total",
			Help:      "Candidates rejected by an assignment policy",
		}),
		assignmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "assignments_total",
			Help:      "Tasks assigned by work kind",
		}, []string{"kind"}),
		completionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "completions_total",
			Help:      "Tasks completed by work kind",
		}, []string{"kind"}),
		abandonsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "abandons_total",
			Help:      "Tasks abandoned by work kind and reason",
		}, []string{"kind", "reason"}),
		leaseCleanups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lease_cleanups_total",
			Help:      "Stale wheelbarrow leases cleared by reason",
		}, []string{"reason"}),
		ledgerReserved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ledger_reserved",
			Help:      "Units currently reserved in the resource ledger by table",
		}, []string{"table"}),
		workItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "work_items",
			Help:      "Work items on the board by kind",
		}, []string{"kind"}),
		requestsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transport_requests_open",
			Help:      "Open transport requests",
		}),
		leasesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "wheelbarrow_leases_active",
			Help:      "Wheelbarrow leases currently held",
		}),
	}
}

// Register registers all metrics with reg, or the global registry when nil
func (c *SchedulerMetricsCollector) Register(reg prometheus.Registerer) error {
	return registerAll(reg,
		c.tickDuration,
		c.ticksTotal,
		c.probesTotal,
		c.deferredTotal,
		c.rejectionTotal,
		c.assignmentsTotal,
		c.completionsTotal,
		c.abandonsTotal,
		c.leaseCleanups,
		c.ledgerReserved,
		c.workItems,
		c.requestsOpen,
		c.leasesActive,
	)
}

func (c *SchedulerMetricsCollector) RecordTick(duration time.Duration, report scheduling.TickReport) {
	c.tickDuration.Observe(duration.Seconds())
	c.ticksTotal.Inc()
	c.probesTotal.Add(float64(report.Probes))
	c.deferredTotal.Add(float64(report.Deferred))
	c.rejectionTotal.Add(float64(report.Rejections))
}

func (c *SchedulerMetricsCollector) RecordAssignment(kind work.Kind) {
	c.assignmentsTotal.WithLabelValues(string(kind)).Inc()
}

func (c *SchedulerMetricsCollector) RecordCompletion(kind work.Kind) {
	c.completionsTotal.WithLabelValues(string(kind)).Inc()
}

func (c *SchedulerMetricsCollector) RecordAbandon(kind work.Kind, reason task.AbortReason) {
	c.abandonsTotal.WithLabelValues(string(kind), string(reason)).Inc()
}

func (c *SchedulerMetricsCollector) RecordLeaseCleanup(reason transport.StaleReason) {
	c.leaseCleanups.WithLabelValues(string(reason)).Inc()
}

// RecordLedger replaces the per-table gauges; tables absent from totals read 0
func (c *SchedulerMetricsCollector) RecordLedger(totals map[ledger.Table]int) {
	c.ledgerReserved.Reset()
	for table, n := range totals {
		c.ledgerReserved.WithLabelValues(string(table)).Set(float64(n))
	}
}

func (c *SchedulerMetricsCollector) RecordBoard(counts map[work.Kind]int, requests int, leases int) {
	c.workItems.Reset()
	for kind, n := range counts {
		c.workItems.WithLabelValues(string(kind)).Set(float64(n))
	}
	c.requestsOpen.Set(float64(requests))
	c.leasesActive.Set(float64(leases))
}
