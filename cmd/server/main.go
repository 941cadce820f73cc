package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"blockbattle/internal/cluster"
	"blockbattle/internal/config"
	"blockbattle/internal/events"
	"blockbattle/internal/network"
	"blockbattle/internal/session"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var pub events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		np, err := events.Connect(cfg.NATSURL)
		if err != nil {
			slog.Error("nats connect failed", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		pub = np
	}
	defer pub.Close()

	manager := session.NewManager(pub)
	hub := network.NewHub(manager)
	go hub.Run(ctx)

	srv := network.NewServer(hub)
	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenTCP(ctx, cfg.Addr)
	}()

	var wsServer *http.Server
	if cfg.WSAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", srv.WSHandler())
		wsServer = &http.Server{Addr: cfg.WSAddr, Handler: mux}
		go func() {
			slog.Info("listening", "addr", cfg.WSAddr, "transport", "websocket")
			if err := wsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	healthServer := &http.Server{Addr: cfg.HealthAddr, Handler: healthMux}
	go func() {
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	if cfg.ConsulAddr != "" {
		deregister, err := cluster.Register(cfg.ConsulAddr, cfg.ServiceName, portOf(cfg.Addr), portOf(cfg.HealthAddr))
		if err != nil {
			slog.Error("consul registration failed", "error", err)
			os.Exit(1)
		}
		defer deregister()
	}

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errs:
		if err != nil {
			slog.Error("server error", "error", err)
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if wsServer != nil {
		wsServer.Shutdown(shutdownCtx)
	}
	healthServer.Shutdown(shutdownCtx)
}

func portOf(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(portStr)
	return port
}
