package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/matching"
)

func listRequestsCmd(app *AppContext) *cobra.Command {
	var (
		status, requestType, urgency, search string
		byUrgency                            bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patient requests, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := app.Lifecycle.SearchRequests(app.Ctx, matching.RequestFilter{
				Status:      domain.RequestStatus(status),
				RequestType: domain.RequestType(requestType),
				Urgency:     domain.UrgencyLevel(urgency),
				Search:      search,
			}, byUrgency)
			if err != nil {
				return fmt.Errorf("failed to list requests: %w", err)
			}

			printf(app.Out, "Found %d requests:\n\n", len(requests))
			tw := app.table()
			printf(tw, "ID\tPATIENT\tTYPE\tNEED\tURGENCY\tSTATUS\tDONOR\n")
			for _, r := range requests {
				need := string(r.PatientBloodType)
				if r.RequestType == domain.RequestOrgan {
					need = string(r.OrganNeeded)
				}
				printf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID,
					r.PatientFirstName,
					r.PatientLastName,
					r.RequestType,
					orDash(need),
					r.UrgencyLevel,
					r.Status,
					orDash(r.MatchedDonorID),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "pending, matched, completed or rejected")
	cmd.Flags().StringVar(&requestType, "type", "", "blood or organ")
	cmd.Flags().StringVar(&urgency, "urgency", "", "low, normal, urgent or emergency")
	cmd.Flags().StringVar(&search, "search", "", "match patient name or contact email")
	cmd.Flags().BoolVar(&byUrgency, "by-urgency", false, "most urgent first")
	return cmd
}

func compatibleDonorsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compatible <request-id>",
		Short: "List approved donors compatible with a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			donors, err := app.Lifecycle.CompatibleDonors(app.Ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to find compatible donors: %w", err)
			}
			printDonors(app, donors)
			return nil
		},
	}
}

func setRequestStatusCmd(app *AppContext) *cobra.Command {
	var donorID string

	cmd := &cobra.Command{
		Use:   "set-status <request-id> <matched|completed|rejected>",
		Short: "Match, complete or reject a request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := app.Lifecycle.TransitionRequest(app.Ctx, args[0], domain.RequestStatus(args[1]), donorID)
			if err != nil {
				return fmt.Errorf("failed to set request status: %w", err)
			}

			app.Logger.Info("request status set",
				zap.String("request_id", req.ID),
				zap.String("status", string(req.Status)),
				zap.String("matched_donor_id", req.MatchedDonorID),
			)
			if req.MatchedDonorID != "" {
				printf(app.Out, "Request %s is now %s (donor %s)\n", req.ID, req.Status, req.MatchedDonorID)
			} else {
				printf(app.Out, "Request %s is now %s\n", req.ID, req.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&donorID, "donor", "", "donor id, required for matched")
	return cmd
}
