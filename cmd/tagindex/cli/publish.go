package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagindex/internal/identity"
)

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <name>",
		Short: "Replay every declared subscription and report which match a sample identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tagPairs, _ := cmd.Flags().GetStringSlice("tag")

			tags, err := parseTagPairs(tagPairs)
			if err != nil {
				return err
			}

			reg, err := registryFromCmd(ctx, cmd)
			if err != nil {
				return err
			}

			id := identity.NewIdentity(args[0], tags)
			matches := reg.Publish(id)

			ids := make([]string, 0, len(matches))
			for _, m := range matches {
				ids = append(ids, string(m))
			}

			p := newPrinter(outputFormat(cmd))
			if outputFormat(cmd) == "json" {
				return p.json(ids)
			}
			if len(ids) == 0 {
				fmt.Println("no subscriptions matched")
				return nil
			}
			var rows [][]string
			for _, id := range ids {
				rows = append(rows, []string{id})
			}
			p.table([]string{"SUBSCRIPTION ID"}, rows)
			return nil
		},
	}
	cmd.Flags().StringSlice("tag", nil, "tag in key=value form; may be repeated")
	return cmd
}

// parseTagPairs turns "key=value" flag values into a tag map.
func parseTagPairs(pairs []string) (map[string]string, error) {
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --tag %q, expected key=value", pair)
		}
		tags[k] = v
	}
	return tags, nil
}
