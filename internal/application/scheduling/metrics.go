package scheduling

import (
	"time"

	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// MetricsRecorder receives scheduler measurements
type MetricsRecorder interface {
	RecordTick(duration time.Duration, report TickReport)
	RecordAssignment(kind work.Kind)
	RecordCompletion(kind work.Kind)
	RecordAbandon(kind work.Kind, reason task.AbortReason)
	RecordLeaseCleanup(reason transport.StaleReason)
	RecordLedger(totals map[ledger.Table]int)
	RecordBoard(counts map[work.Kind]int, requests int, leases int)
}

type noopMetrics struct{}

func (noopMetrics) RecordTick(time.Duration, TickReport)      {}
func (noopMetrics) RecordAssignment(work.Kind)                {}
func (noopMetrics) RecordCompletion(work.Kind)                {}
func (noopMetrics) RecordAbandon(work.Kind, task.AbortReason) {}
func (noopMetrics) RecordLeaseCleanup(transport.StaleReason)  {}
func (noopMetrics) RecordLedger(map[ledger.Table]int)         {}
func (noopMetrics) RecordBoard(map[work.Kind]int, int, int)   {}
