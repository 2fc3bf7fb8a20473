package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every declared subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := storeFromCmd(cmd)

			subs, err := store.ListSubscriptions(ctx)
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(subs))
			for id := range subs {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			p := newPrinter(outputFormat(cmd))
			if outputFormat(cmd) == "json" {
				return p.json(subs)
			}
			var rows [][]string
			for _, id := range ids {
				rows = append(rows, []string{id, subs[id].Expression})
			}
			p.table([]string{"ID", "EXPRESSION"}, rows)
			return nil
		},
	}
}
