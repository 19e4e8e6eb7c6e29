package root

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dinerozz/nudge-engine/cmd/migrate"
	"github.com/dinerozz/nudge-engine/config"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/dinerozz/nudge-engine/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func GetRootCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nudge-engine",
		Short:         "Behavioral analytics and intervention engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.RunServer(cfg, logger)
		},
	})

	rootCmd.AddCommand(migrate.GetMigrateCmd(cfg.DB.URL(), logger))
	rootCmd.AddCommand(getAnalyzeCmd(cfg, logger))
	rootCmd.AddCommand(getTokenCmd(cfg))

	return rootCmd
}

func getAnalyzeCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one insight analysis pass for a user and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			app, err := server.NewApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("failed to close app", zap.Error(err))
				}
			}()

			ws, err := app.Registry.Get(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to open workspace: %w", err)
			}
			ws.Insights.Stop()

			out, err := json.MarshalIndent(ws.Insights.Analyze(ctx), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID to analyze")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func getTokenCmd(cfg *config.Config) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := utils.GenerateToken(cfg.Auth.JWTSecret, userID, ttl, time.Now())
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID to embed")
	cmd.Flags().DurationVar(&ttl, "ttl", 72*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
