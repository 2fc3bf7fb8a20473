package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHotSpotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotspots",
		Short: "Report index nodes whose other-checks fan-out exceeds a threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			threshold, _ := cmd.Flags().GetInt("threshold")

			reg, err := registryFromCmd(ctx, cmd)
			if err != nil {
				return err
			}

			spots := reg.HotSpots(threshold)

			p := newPrinter(outputFormat(cmd))
			if outputFormat(cmd) == "json" {
				return p.json(spots)
			}
			var rows [][]string
			for _, s := range spots {
				rows = append(rows, []string{s.Path, itoa(s.Count), strings.Join(s.Predicates, ", ")})
			}
			p.table([]string{"PATH", "COUNT", "PREDICATES"}, rows)
			return nil
		},
	}
	cmd.Flags().Int("threshold", 8, "report nodes whose other-checks fan-out exceeds this")
	return cmd
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
