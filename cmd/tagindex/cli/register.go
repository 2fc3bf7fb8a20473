package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagindex/internal/config"
)

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <id> <expression>",
		Short: "Declare a subscription and persist it to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, expr := args[0], args[1]

			if _, err := compileForValidation(expr); err != nil {
				return fmt.Errorf("invalid expression: %w", err)
			}

			store := storeFromCmd(cmd)
			if err := store.PutSubscription(ctx, id, config.SubscriptionConfig{Expression: expr}); err != nil {
				return fmt.Errorf("persist subscription: %w", err)
			}

			fmt.Printf("registered subscription %q: %s\n", id, expr)
			return nil
		},
	}
	return cmd
}
