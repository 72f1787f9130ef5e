package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

func Health(st Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health_db_unreachable")
			WriteHTTPError(w, r, http.StatusServiceUnavailable, "db_unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// TableHandler serves the same public snapshot members receive as
// table_update.
func TableHandler(tv TableView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricTableQueries.Add(1)
		snap, err := tv.Snapshot(r.Context())
		if err != nil {
			WriteHTTPError(w, r, http.StatusServiceUnavailable, "table_unavailable")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func LeaderboardHandler(lb Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricLeaderboardQueries.Add(1)
		limit, offset, err := ParsePagination(r, 20, 100)
		if err != nil {
			WriteHTTPError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		entries, err := lb.Leaderboard(r.Context(), limit, offset)
		if err != nil {
			metricLeaderboardErrors.Add(1)
			log.Error().Err(err).Msg("leaderboard_query_failed")
			WriteHTTPError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": entries, "limit": limit, "offset": offset})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
