package httptransport

import "expvar"

var (
	metricTableQueries       = expvar.NewInt("table_query_total")
	metricLeaderboardQueries = expvar.NewInt("leaderboard_query_total")
	metricLeaderboardErrors  = expvar.NewInt("leaderboard_query_errors_total")
)
