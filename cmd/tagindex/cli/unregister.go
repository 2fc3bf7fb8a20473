package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <id>",
		Short: "Remove a declared subscription from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store := storeFromCmd(cmd)
			existing, err := store.GetSubscription(ctx, id)
			if err != nil {
				return fmt.Errorf("lookup subscription: %w", err)
			}
			if existing == nil {
				return fmt.Errorf("subscription %q not found", id)
			}
			if err := store.DeleteSubscription(ctx, id); err != nil {
				return fmt.Errorf("delete subscription: %w", err)
			}

			fmt.Printf("unregistered subscription %q\n", id)
			return nil
		},
	}
}
