package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/matching"
)

func listDonorsCmd(app *AppContext) *cobra.Command {
	var filter struct {
		status, donationType, search string
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donors, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			donors, err := app.Lifecycle.SearchDonors(app.Ctx, matching.DonorFilter{
				Status:       domain.DonorStatus(filter.status),
				DonationType: domain.DonationType(filter.donationType),
				Search:       filter.search,
			})
			if err != nil {
				return fmt.Errorf("failed to list donors: %w", err)
			}

			printDonors(app, donors)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.status, "status", "", "pending, approved or rejected")
	cmd.Flags().StringVar(&filter.donationType, "type", "", "blood or organ (combined donors match both)")
	cmd.Flags().StringVar(&filter.search, "search", "", "match name or email")
	return cmd
}

func printDonors(app *AppContext, donors []domain.Donor) {
	printf(app.Out, "Found %d donors:\n\n", len(donors))
	tw := app.table()
	printf(tw, "ID\tNAME\tTYPE\tBLOOD\tORGAN\tSTATUS\tREGISTERED\n")
	for _, d := range donors {
		printf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID,
			d.FirstName,
			d.LastName,
			d.DonationType,
			orDash(string(d.BloodType)),
			orDash(string(d.OrganType)),
			d.Status,
			d.RegistrationDate.Format("2006-01-02"),
		)
	}
	_ = tw.Flush()
}

func setDonorStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <donor-id> <pending|approved|rejected>",
		Short: "Approve, reject or reset a donor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			donor, err := app.Lifecycle.TransitionDonor(app.Ctx, args[0], domain.DonorStatus(args[1]))
			if err != nil {
				return fmt.Errorf("failed to set donor status: %w", err)
			}

			app.Logger.Info("donor status set", zap.String("donor_id", donor.ID), zap.String("status", string(donor.Status)))
			printf(app.Out, "Donor %s is now %s\n", donor.ID, donor.Status)
			return nil
		},
	}
}
