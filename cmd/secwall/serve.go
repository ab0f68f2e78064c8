package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/secwall/pkg/config"
	"github.com/cuemby/secwall/pkg/log"
	"github.com/cuemby/secwall/pkg/metrics"
	"github.com/cuemby/secwall/pkg/notify"
	"github.com/cuemby/secwall/pkg/security"
	"github.com/cuemby/secwall/pkg/wallet"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wallet process: hold the database open, expose metrics, and watch for reload signals",
	Long: `serve loads the ACL configuration and database, then blocks until
interrupted. It carries no request transport of its own (spec.md leaves
that to a separate client/server collaborator); it exists to keep the
wallet's in-memory state resident and to expose the Prometheus endpoint
and SIGHUP-driven configuration reload that a long-running deployment
needs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9100", "Address to serve /metrics on")
	serveCmd.Flags().Bool("log-notifications", false, "Log every CREATED/UPDATED/DELETED notification to stdout")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dbPath, _ := cmd.Flags().GetString("db-path")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	logNotifications, _ := cmd.Flags().GetBool("log-notifications")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	broker := notify.NewBroker()
	w, err := wallet.New(cfg, dbPath, security.NewValidator(), broker)
	if err != nil {
		return fmt.Errorf("opening wallet database: %w", err)
	}
	w.RefreshMetrics()

	if logNotifications {
		sub := broker.Subscribe(0)
		defer broker.Unsubscribe(sub)
		go func() {
			for n := range sub.C() {
				log.Logger.Info().
					Str("action", string(n.Action)).
					Str("portfolio", n.Portfolio).
					Uint64("sequence", n.Sequence).
					Msg("notification")
			}
		}()
	}

	go func() {
		http.Handle("/metrics", metrics.Handler())
		log.Logger.Info().Str("addr", metricsAddr).Msg("metrics server listening")
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			log.Logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	log.Logger.Info().Str("config", configPath).Str("db", dbPath).Msg("secwall wallet ready")
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			outcome := "ok"
			if err := cfg.Reload(); err != nil {
				outcome = "error"
				log.Logger.Error().Err(err).Msg("configuration reload failed")
			} else {
				log.Logger.Info().Msg("configuration reloaded")
			}
			metrics.ConfigReloadsTotal.WithLabelValues(outcome).Inc()
			continue
		}
		log.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
		return nil
	}
	return nil
}
