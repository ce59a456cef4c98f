package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// StatsCmd prints the dashboard counters.
func StatsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show donor and request totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Lifecycle.Stats(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			tw := app.table()
			printf(tw, "Donors\t%d\n", s.TotalDonors)
			printf(tw, "  pending\t%d\n", s.PendingDonors)
			printf(tw, "  approved\t%d\n", s.ApprovedDonors)
			printf(tw, "  blood\t%d\n", s.BloodDonors)
			printf(tw, "  organ\t%d\n", s.OrganDonors)
			printf(tw, "Requests\t%d\n", s.TotalRequests)
			printf(tw, "  pending\t%d\n", s.PendingRequests)
			printf(tw, "  matched\t%d\n", s.MatchedRequests)
			return tw.Flush()
		},
	}
}
