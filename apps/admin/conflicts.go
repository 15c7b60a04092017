package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/chuo/core/schedule"
	"github.com/trezcool/chuo/services/export"
)

func (cli *commandLine) conflictsCmd() *cobra.Command {
	var asCSV bool
	var cf schedule.ConflictFilter
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List venue clashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.conflicts(cmd.Context(), cf, asCSV)
		},
	}
	cmd.Flags().StringVar(&cf.From, "from", "", "first date checked (YYYY-MM-DD)")
	cmd.Flags().StringVar(&cf.To, "to", "", "last date checked (YYYY-MM-DD)")
	cmd.Flags().StringVar(&cf.Venue, "venue", "", "only check this venue")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func (cli *commandLine) conflicts(ctx context.Context, cf schedule.ConflictFilter, asCSV bool) error {
	if err := cf.Validate(cli.validate); err != nil {
		return cli.invalid("filter", err)
	}
	conflicts, err := cli.evtSvc.Conflicts(ctx, cf)
	if err != nil {
		return errors.Wrap(err, "detecting conflicts")
	}
	if asCSV {
		return export.Conflicts(cli.out, conflicts)
	}
	if len(conflicts) == 0 {
		_, _ = fmt.Fprintln(cli.out, "no clashes")
		return nil
	}

	tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tVENUE\tEVENT A\tTIME\tEVENT B\tTIME")
	for _, c := range conflicts {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Date, c.Venue, c.A.Title, schedule.Span(c.A), c.B.Title, schedule.Span(c.B))
	}
	return tw.Flush()
}
