package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flappy-casino/internal/config"
	"flappy-casino/internal/handeval"
	"flappy-casino/internal/ledger"
	"flappy-casino/internal/logging"
	"flappy-casino/internal/store"
	httptransport "flappy-casino/internal/transport/http"
	"flappy-casino/internal/ws"

	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	led := ledger.New(st)
	wsServer := ws.NewServer(cfg.Server, cfg.Table, led, handeval.New(), quartz.NewReal())
	r := httptransport.NewRouter(httptransport.Deps{
		Store:       st,
		Table:       wsServer.Session(),
		Leaderboard: led,
		WS:          wsServer.HandleWS,
		AdminAPIKey: cfg.Server.AdminAPIKey,
		TableID:     cfg.Table.ID,
	})
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return wsServer.Run(ctx)
	})
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.Server.HTTPAddr).
			Str("table_id", cfg.Table.ID).
			Int("max_seats", cfg.Table.MaxSeats).
			Int64("buy_in", cfg.Table.BuyIn).
			Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return
	}
	log.Info().Msg("server stopped")
}
