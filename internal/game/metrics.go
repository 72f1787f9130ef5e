package game

import "expvar"

var (
	metricHandsStarted   = expvar.NewInt("hands_started_total")
	metricHandsCompleted = expvar.NewInt("hands_played_total")
	metricHandsAborted   = expvar.NewInt("hands_aborted_total")
	metricTurnTimeouts   = expvar.NewInt("turn_timeouts_total")
	metricIdleEvictions  = expvar.NewInt("idle_evictions_total")
	metricLedgerFailures = expvar.NewInt("ledger_failures_total")
	metricRoundingLoss   = expvar.NewInt("split_remainder_chips_total")
)
