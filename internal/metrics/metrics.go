// Package metrics exposes Prometheus counters for ledger operations.
// Counters are bumped only at transaction boundaries: one attempt per
// logical operation, then exactly one commit or one rollback.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpsAttempted counts started ledger operations by operation name.
	OpsAttempted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitbook_ledger_operations_attempted_total",
		Help: "Number of ledger operations started.",
	}, []string{"op"})

	// OpsCommitted counts successfully committed ledger operations.
	OpsCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitbook_ledger_operations_committed_total",
		Help: "Number of ledger operations committed.",
	}, []string{"op"})

	// OpsRolledBack counts abandoned ledger operations by rollback reason.
	OpsRolledBack = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitbook_ledger_operations_rolled_back_total",
		Help: "Number of ledger operations rolled back.",
	}, []string{"op", "reason"})

	// IntegrityTrips counts LedgerRowMissing guard trips. Any nonzero value
	// indicates a bug elsewhere in the system, not bad input.
	IntegrityTrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitbook_ledger_integrity_guard_trips_total",
		Help: "Number of times an operation found a required ledger row missing.",
	})
)
