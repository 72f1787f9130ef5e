package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"flappy-casino/internal/game"
	"flappy-casino/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type TableView interface {
	Snapshot(ctx context.Context) (game.TableUpdate, error)
}

type Leaderboard interface {
	Leaderboard(ctx context.Context, limit, offset int) ([]store.LeaderboardEntry, error)
}

type Deps struct {
	Store       Pinger
	Table       TableView
	Leaderboard Leaderboard
	WS          http.HandlerFunc
	AdminAPIKey string
	TableID     string
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware(d.TableID)).Get("/healthz", Health(d.Store))
	// the upgrade hijacks the connection, so no access log wrapper here
	r.Get("/ws", d.WS)

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware(d.TableID))
		r.Get("/table", TableHandler(d.Table))
		r.Get("/leaderboard", LeaderboardHandler(d.Leaderboard))

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminAPIKey))
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 8)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
