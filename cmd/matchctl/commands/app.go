// Package commands holds the matchctl subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// AppContext carries the dependencies shared by every command.
type AppContext struct {
	Ctx       context.Context
	Lifecycle ports.LifecycleService
	Logger    *zap.Logger
	Out       io.Writer
}

func (app *AppContext) table() *tabwriter.Writer {
	return tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
}

// DonorsCmd groups the donor review commands.
func DonorsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donors",
		Short: "Review registered donors",
	}
	cmd.AddCommand(listDonorsCmd(app), setDonorStatusCmd(app))
	return cmd
}

// RequestsCmd groups the request review and matching commands.
func RequestsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Review patient requests and match donors",
	}
	cmd.AddCommand(listRequestsCmd(app), compatibleDonorsCmd(app), setRequestStatusCmd(app))
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
