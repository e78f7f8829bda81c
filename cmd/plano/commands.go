package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/plano/internal/auth"
	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
	"github.com/gosuda/plano/internal/server/middleware"
	"github.com/gosuda/plano/internal/store/postgres"
	redisstore "github.com/gosuda/plano/internal/store/redis"
)

// kindArgs resolves an optional kind argument; none means every kind.
func kindArgs(args []string) ([]domain.Kind, error) {
	if len(args) == 0 || args[0] == "all" {
		return domain.Kinds(), nil
	}
	kind, err := domain.ParseKind(args[0])
	if err != nil {
		return nil, err
	}
	return []domain.Kind{kind}, nil
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "scan [task|action_plan|all]",
		Short:     "Run one deadline monitor pass and exit",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.KindTask), string(domain.KindActionPlan), "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := kindArgs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := []lifecycle.ExecutorOption{}
			bus, err := redisstore.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				log.Warn().Err(err).Msg("redis unavailable, status changes will not be announced")
			} else {
				defer bus.Close()
				opts = append(opts, lifecycle.WithPublisher(publishers(bus)))
			}

			monitors := newMonitors(store, lifecycle.NewExecutor(store.Tracked(), opts...))

			var reports []lifecycle.ScanReport
			for _, kind := range kinds {
				reports = append(reports, monitors.Scan(ctx, kind)...)
			}

			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), reports)
			}
			renderScanReports(cmd.OutOrStdout(), reports)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var (
		kindFlag string
		idFlag   string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print status history, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var kindArg []string
			if kindFlag != "" {
				kindArg = []string{kindFlag}
			}
			kinds, err := kindArgs(kindArg)
			if err != nil {
				return err
			}
			if idFlag != "" && len(kinds) != 1 {
				return errors.New("--id requires --kind")
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sources, err := historySources(ctx, store, kinds, idFlag)
			if err != nil {
				return err
			}

			lines := lifecycle.BuildHistory(sources...)
			if jsonOutput(cmd) {
				if lines == nil {
					lines = []lifecycle.HistoryLine{}
				}
				return printJSON(cmd.OutOrStdout(), lines)
			}
			renderHistory(cmd.OutOrStdout(), lines)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "task or action_plan (default all)")
	cmd.Flags().StringVar(&idFlag, "id", "", "restrict to one entity")
	return cmd
}

func historySources(ctx context.Context, store *postgres.Store, kinds []domain.Kind, rawID string) ([]lifecycle.HistorySource, error) {
	repos := store.Tracked()

	if rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("invalid --id: %w", err)
		}
		ent, err := repos[kinds[0]].GetTracked(ctx, id)
		if err != nil {
			return nil, err
		}
		return []lifecycle.HistorySource{lifecycle.SourceOf(ent)}, nil
	}

	var sources []lifecycle.HistorySource
	for _, kind := range kinds {
		ents, err := repos[kind].ListTracked(ctx)
		if err != nil {
			return nil, err
		}
		for _, ent := range ents {
			sources = append(sources, lifecycle.SourceOf(ent))
		}
	}
	return sources, nil
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "rules [task|action_plan|all]",
		Short:     "Print status labels and the transition graph",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.KindTask), string(domain.KindActionPlan), "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := kindArgs(args)
			if err != nil {
				return err
			}

			for _, kind := range kinds {
				rules, _ := domain.RulesFor(kind)
				if jsonOutput(cmd) {
					if err := printJSON(cmd.OutOrStdout(), rules.Graph()); err != nil {
						return err
					}
					continue
				}
				renderRules(cmd.OutOrStdout(), rules)
			}
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		name   string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid --user-id: %w", err)
				}
				id = parsed
			}
			switch role {
			case middleware.RoleAdmin, middleware.RoleMember, middleware.RoleViewer:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if ttl <= 0 {
				ttl = cfg.JWT.AccessTTL
			}

			token, err := auth.IssueAccessToken(cfg.JWT.Secret, id, name, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user ID (default random)")
	cmd.Flags().StringVar(&name, "name", "", "display name recorded in status logs")
	cmd.Flags().StringVar(&role, "role", middleware.RoleMember, "admin, member or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default PLANO_JWT_ACCESS_TTL)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
