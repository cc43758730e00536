package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsTotal counts audit trail entries written, by movement type.
	MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_movements_total",
		Help: "Number of stock movements recorded, by movement type.",
	}, []string{"type"})

	// InsufficientStockTotal counts rejected claims against available stock.
	InsufficientStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_insufficient_stock_total",
		Help: "Number of ledger operations rejected for insufficient stock.",
	})

	// LockTimeoutsTotal counts per-record lock acquisitions that timed out.
	LockTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_lock_timeouts_total",
		Help: "Number of ledger operations that failed to take the record lock in time.",
	})

	// AlertsEmittedTotal counts alerts created, by alert type.
	AlertsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_emitted_total",
		Help: "Number of alerts created, by alert type.",
	}, []string{"type"})
)
