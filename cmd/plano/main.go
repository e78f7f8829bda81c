package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/plano/internal/config"
	"github.com/gosuda/plano/internal/store/postgres"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config //nolint:gochecknoglobals // cobra command state

var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra root
	Use:   "plano",
	Short: "Status tracking for tasks and action plans",
	Long: `plano keeps the status of tasks and action plans consistent.
Every change is validated against the kind's transition graph, written to an
append-only status log and announced to dashboards. Deadline monitors mark
overdue in-progress work as delayed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "rules" || cmd.Name() == "help" {
			setupLogging(config.LogConfig{Level: os.Getenv("PLANO_LOG_LEVEL"), Format: os.Getenv("PLANO_LOG_FORMAT")})
			return nil
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg.Log)
		return nil
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("plano")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called explicitly above
	}
}

func setupLogging(lc config.LogConfig) {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// openStore connects to PostgreSQL and applies pending migrations.
func openStore(ctx context.Context) (*postgres.Store, error) {
	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
