package httptransport

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"flappy-casino/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

var errBadPagination = errors.New("invalid_pagination")

// APILogMiddleware writes one JSON access line per request to the same sink
// as the zerolog logger. Bodies and headers are never logged; the leaderboard
// and table payloads carry nicknames only.
func APILogMiddleware(tableID string) func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), nil)),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				route := req.URL.Path
				if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("table_id", tableID),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("remote_ip", req.RemoteAddr),
				}
			},
		},
	)
}

// WriteHTTPError answers with {"error": code, "request_id": ...}. Codes use
// the same snake_case vocabulary as websocket error_msg reasons.
func WriteHTTPError(w http.ResponseWriter, r *http.Request, status int, code string) {
	writeJSON(w, status, map[string]string{
		"error":      code,
		"request_id": chimw.GetReqID(r.Context()),
	})
}

// AdminAuthMiddleware is a no-op when adminKey is empty.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" && !CheckAdminAuth(r, adminKey) {
				WriteHTTPError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckAdminAuth accepts the key in X-Admin-Key or as a bearer token.
func CheckAdminAuth(r *http.Request, adminKey string) bool {
	presented := r.Header.Get("X-Admin-Key")
	if presented == "" {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			return false
		}
		presented = token
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) == 1
}

// ParsePagination reads limit and offset, clamping limit to [1, maxLimit]
// and offset to >= 0. Non-numeric values are an error.
func ParsePagination(r *http.Request, defLimit, maxLimit int) (limit, offset int, err error) {
	limit, offset = defLimit, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, errBadPagination
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, errBadPagination
		}
	}
	limit = min(max(limit, 1), maxLimit)
	offset = max(offset, 0)
	return limit, offset, nil
}
