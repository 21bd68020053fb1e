package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/transitionkit/pkg/config"
	"github.com/dmitrymomot/transitionkit/svc/runtime"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "transitionkit",
		Short:         "Inspect and operate transitionkit state machines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSlice("env-file", nil, "dotenv files to load (default .env when present)")

	root.AddCommand(
		newGraphCmd(),
		newTransitionsCmd(),
		newMigrateCmd(),
		newAuditCmd(),
		newServeCmd(),
	)
	return root
}

func loadConfig(cmd *cobra.Command) (runtime.Config, error) {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	var opts []config.Option
	if len(files) > 0 {
		opts = append(opts, config.WithEnvFiles(files...))
	}
	return config.Load[runtime.Config](opts...)
}

// openRuntime connects with migrations disabled; commands that need them
// run Migrate explicitly.
func openRuntime(ctx context.Context, cmd *cobra.Command) (*runtime.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openRuntimeWith(ctx, cfg)
}

func openRuntimeWith(ctx context.Context, cfg runtime.Config) (*runtime.Runtime, error) {
	cfg.AutoMigrate = false
	return runtime.New(ctx, cfg)
}
