package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"

	"portalhub/internal/config"
	"portalhub/internal/push"
	"portalhub/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	setupLogging(cfg.LogLevel)

	// an ephemeral VAPID identity keeps push working out of the box;
	// subscriptions will not survive a restart without configured keys
	if cfg.VapidPublicKey == "" || cfg.VapidPrivateKey == "" {
		private, public, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("could not generate VAPID keys: %v", err)
		}
		cfg.VapidPrivateKey, cfg.VapidPublicKey = private, public
		slog.Warn("VAPID keys not configured, generated ephemeral pair")
	}

	store := server.NewStore()
	hub := server.NewHub(store)
	registry := push.NewRegistry()
	sender := push.NewSender(registry, cfg.VapidSubject, cfg.VapidPublicKey, cfg.VapidPrivateKey)
	handler := server.NewHandler(store, hub, registry, sender, cfg.AdminToken)

	var sendLimiter *server.RateLimiter
	if cfg.SendRate > 0 {
		sendLimiter = server.NewRateLimiter(rate.Limit(cfg.SendRate), cfg.SendBurst)
	}
	router := server.NewRouter(handler, server.RouterOptions{
		CORSOrigin:  cfg.CORSOrigin,
		StaticDir:   cfg.StaticDir,
		SendLimiter: sendLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go store.RunSweeper(ctx, server.SweepInterval)
	go hub.RunHeartbeat(ctx, server.HeartbeatInterval)
	if sendLimiter != nil {
		go sendLimiter.Cleanup(ctx, server.LimiterCleanupInterval)
	}

	addr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.HTTPPort)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("portal notification server started",
			"addr", addr,
			"stream", "/notifications/stream",
			"send", "/api/notifications/send")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	hub.Close()
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
