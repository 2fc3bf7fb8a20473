// Package cli implements the "tagindex" command tree for managing a
// subscription registry's declarative configuration and exercising it
// against sample identities.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"tagindex/internal/config"
	configfile "tagindex/internal/config/file"
	"tagindex/internal/subscription"
	"tagindex/internal/tagquery"
)

type loggerKey struct{}

// WithLogger attaches logger to ctx for commands to pick up via
// registryFromCmd. Logging stays dependency-injected rather than global.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}

// NewRootCommand returns the "tagindex" root command with all
// subcommands wired in.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagindex",
		Short: "Manage a tag-query subscription registry",
		Long:  "Register, unregister, and publish against a subscription registry backed by a declarative JSON config file.",
	}

	cmd.PersistentFlags().String("config", "tagindex.json", "path to the subscription config file")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table or json")

	cmd.AddCommand(
		newRegisterCmd(),
		newUnregisterCmd(),
		newListCmd(),
		newPublishCmd(),
		newHotSpotsCmd(),
		newServeCmd(),
	)

	return cmd
}

// outputFormat returns "json" or "table" from the --output flag.
func outputFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("output")
	return f
}

// storeFromCmd builds the file-backed config.Store named by --config.
func storeFromCmd(cmd *cobra.Command) config.Store {
	path, _ := cmd.Flags().GetString("config")
	return configfile.NewStore(path)
}

// registryFromCmd loads every declared subscription from the store named
// by --config and replays it into a fresh in-memory registry. The index
// itself is never persisted — only the declarations that produced it.
func registryFromCmd(ctx context.Context, cmd *cobra.Command) (*subscription.Registry, error) {
	store := storeFromCmd(cmd)

	cfg, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	reg := subscription.NewRegistry(loggerFromContext(ctx))
	if cfg == nil {
		return reg, nil
	}
	for id, sc := range cfg.Subscriptions {
		if err := reg.RegisterWithID(subscription.ID(id), sc.Expression); err != nil {
			return nil, fmt.Errorf("replay subscription %q: %w", id, err)
		}
	}
	return reg, nil
}

// compileForValidation parses expression purely to surface a parse error
// before it is persisted; the registry re-parses (and caches) it on its
// own when the config is later replayed.
func compileForValidation(expression string) (*tagquery.Query, error) {
	return tagquery.Parse(expression)
}
