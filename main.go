// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/safehaven/alerts"
	"github.com/danielhkuo/safehaven/cliparse"
	"github.com/danielhkuo/safehaven/db"
	"github.com/danielhkuo/safehaven/engine"
	"github.com/danielhkuo/safehaven/ledger"
	"github.com/danielhkuo/safehaven/middleware"
	"github.com/danielhkuo/safehaven/router"
	"github.com/danielhkuo/safehaven/store"
	"github.com/danielhkuo/safehaven/sweeper"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the configured database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Threat state flows through the gateway; observers stay on plain SQL.
	gw := store.NewSQLStore(dbConn)

	eng := engine.New(gw, engine.Config{
		Policy: ledger.Policy{
			Quorum:    cfg.VoteQuorum,
			DenyRatio: cfg.DenyRatio,
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background deactivation of threats nobody has reported recently.
	go sweeper.New(gw, cfg.ThreatCooldown, 0).Run(ctx)

	// SMS alerting follows the store change feed. Without a gateway
	// configured, alerts are logged instead of sent.
	var sender alerts.Sender
	if cfg.SMSGatewayURL != "" {
		sender = alerts.NewTextbeltSender(cfg.SMSGatewayURL, cfg.SMSGatewayKey)
	} else {
		slog.Info("No SMS gateway configured, alerts will be logged only")
		sender = alerts.LogSender{}
	}
	go alerts.New(dbConn, gw, sender, cfg.AlertRadiusMiles, cfg.LocationMaxAge).Run(ctx)

	// Create router
	mux := router.NewRouter(dbConn, gw, eng, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
