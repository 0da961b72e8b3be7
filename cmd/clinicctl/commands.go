package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

type migrator interface {
	Migrate(ctx context.Context) ([]string, error)
}

type reportService interface {
	Daily(ctx context.Context, day time.Time) (*entities.DailyReport, error)
	GST(ctx context.Context, from, to time.Time) ([]entities.GSTBreakdownRow, error)
	Incentives(ctx context.Context) ([]entities.IncentiveSummary, error)
}

type incentiveService interface {
	MarkPaid(ctx context.Context, ids []string) error
}

// backend is what a command runs against
type backend struct {
	migrator   migrator
	reports    reportService
	incentives incentiveService
	close      func()
}

type opener func(ctx context.Context) (*backend, error)

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "clinicctl",
		Short:        "Clinic desk operator tool",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd(open))
	rootCmd.AddCommand(reportsCmd(open))
	rootCmd.AddCommand(incentivesCmd(open))
	return rootCmd
}

// withBackend opens the backend for the duration of fn
func withBackend(cmd *cobra.Command, open opener, fn func(ctx context.Context, b *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := open(ctx)
	if err != nil {
		return err
	}
	if b.close != nil {
		defer b.close()
	}
	return fn(ctx, b)
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				applied, err := b.migrator.Migrate(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(applied) == 0 {
					fmt.Fprintln(out, "schema is up to date")
					return nil
				}
				for _, v := range applied {
					fmt.Fprintf(out, "applied %s\n", v)
				}
				return nil
			})
		},
	}
}

func reportsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Print billing reports as JSON",
	}

	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Revenue per domain for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				report, err := b.reports.Daily(ctx, day)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	dailyCmd.Flags().String("date", "", "report date (YYYY-MM-DD, default today)")

	gstCmd := &cobra.Command{
		Use:   "gst",
		Short: "Tax breakdown per rate for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := dateFlag(cmd, "from")
			if err != nil {
				return err
			}
			to, err := dateFlag(cmd, "to")
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				rows, err := b.reports.GST(ctx, from, to)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"from": from.Format(services.DateLayout),
					"to":   to.Format(services.DateLayout),
					"rows": rows,
				})
			})
		},
	}
	gstCmd.Flags().String("from", "", "first day (YYYY-MM-DD, default today)")
	gstCmd.Flags().String("to", "", "last day (YYYY-MM-DD, default today)")

	incentivesReportCmd := &cobra.Command{
		Use:   "incentives",
		Short: "Earned, paid and pending incentives per doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				summaries, err := b.reports.Incentives(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summaries)
			})
		},
	}

	cmd.AddCommand(dailyCmd, gstCmd, incentivesReportCmd)
	return cmd
}

func incentivesCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incentives",
		Short: "Manage doctor incentives",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pay <incentive-id>...",
		Short: "Mark incentives as paid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				if err := b.incentives.MarkPaid(ctx, args); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "marked %d incentive(s) paid\n", len(args))
				return nil
			})
		},
	})
	return cmd
}

// dateFlag parses a YYYY-MM-DD flag in local time; empty means today
func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	day, err := time.ParseInLocation(services.DateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	return day, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
