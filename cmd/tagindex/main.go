// Command tagindex manages a tag-query subscription registry backed by a
// declarative JSON config file.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"context"
	"log/slog"
	"os"

	"tagindex/cmd/tagindex/cli"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := cli.WithLogger(context.Background(), logger)
	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
