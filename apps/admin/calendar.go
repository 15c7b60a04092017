package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/chuo/core/schedule"
)

func (cli *commandLine) importICSCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-ics",
		Short: "Create events from an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				_ = cmd.Help()
				return errHelp
			}
			return cli.importICS(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the .ics file")
	return cmd
}

// importICS creates the events of the calendar, or none if one of them is invalid.
func (cli *commandLine) importICS(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening calendar")
	}
	defer func() { _ = f.Close() }()

	payloads, err := cli.codec.Decode(f)
	if err != nil {
		return errors.Wrap(err, "invalid calendar")
	}
	for i := range payloads {
		if err = payloads[i].Validate(cli.validate); err != nil {
			return cli.invalid(fmt.Sprintf("event #%d", i+1), err)
		}
	}
	for _, ne := range payloads {
		if _, err = cli.evtSvc.Create(ctx, ne); err != nil {
			return errors.Wrap(err, "creating imported event")
		}
	}
	_, _ = fmt.Fprintf(cli.out, "imported %d event(s)\n", len(payloads))
	return nil
}

func (cli *commandLine) exportICSCmd() *cobra.Command {
	var file string
	filter := new(schedule.QueryFilter)
	cmd := &cobra.Command{
		Use:   "export-ics",
		Short: "Write events as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.exportICS(cmd.Context(), file, filter)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "output path (defaults to stdout)")
	cmd.Flags().StringVar(&filter.From, "from", "", "first start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.To, "to", "", "last start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.Venue, "venue", "", "only events held at this venue")
	return cmd
}

func (cli *commandLine) exportICS(ctx context.Context, path string, filter *schedule.QueryFilter) error {
	filter.Clean()
	events, err := cli.evtSvc.Query(ctx, filter, nil)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}

	var w io.Writer = cli.out
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "creating calendar file")
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err = cli.codec.Encode(w, events); err != nil {
		return errors.Wrap(err, "exporting events")
	}
	return nil
}
