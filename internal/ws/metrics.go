package ws

import "expvar"

var (
	metricConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricConnectionsActive = expvar.NewInt("ws_connections_active")
	metricCommandsAccepted  = expvar.NewInt("commands_accepted_total")
	metricCommandsRejected  = expvar.NewInt("commands_rejected_total")
	metricSlowClientDrops   = expvar.NewInt("ws_slow_client_drops_total")
)
