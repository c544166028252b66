package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"elexon"
	"elexon/internal/realtime"
)

func main() {
	if err := elexon.InitConfig(".env"); err != nil {
		elexon.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg := realtime.ConfigFromApp(elexon.GetConfig())

	if cfg.JWTSecret == "" {
		elexon.Logger.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	go hub.Run(ctx)

	bridge, err := realtime.NewNATSBridge(cfg.NatsURL, cfg.SubjectPrefix, hub)
	if err != nil {
		elexon.Logger.Fatal().Err(err).Msg("NATS bridge")
	}
	defer bridge.Close()

	if err := bridge.Subscribe(); err != nil {
		elexon.Logger.Fatal().Err(err).Msg("NATS subscribe")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		realtime.ServeWS(hub, cfg.JWTSecret, w, r)
	})
	srv := &http.Server{Addr: cfg.RealtimePort, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	elexon.Logger.Info().Str("port", cfg.RealtimePort).Msg("Realtime service listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		elexon.Logger.Fatal().Err(err).Msg("server")
	}
}
