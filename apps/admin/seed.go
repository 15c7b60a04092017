package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/core/schedule"
)

type seedEvent struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Venue       string  `yaml:"venue"`
	Category    string  `yaml:"category"`
	Status      string  `yaml:"status"`
	Organizer   string  `yaml:"organizer"`
	Capacity    int     `yaml:"capacity"`
	StartDate   string  `yaml:"start_date"`
	EndDate     string  `yaml:"end_date"`
	StartTime   *string `yaml:"start_time"`
	EndTime     *string `yaml:"end_time"`
	Recurrence  string  `yaml:"recurrence"`
}

type seedScholarship struct {
	StudentID    string  `yaml:"student_id"`
	StudentName  string  `yaml:"student_name"`
	Program      string  `yaml:"program"`
	Kind         string  `yaml:"kind"`
	Category     string  `yaml:"category"`
	Amount       int64   `yaml:"amount"`
	AcademicYear string  `yaml:"academic_year"`
	Status       string  `yaml:"status"`
	AwardedOn    *string `yaml:"awarded_on"`
	Remarks      string  `yaml:"remarks"`
}

type seedFile struct {
	Events       []seedEvent       `yaml:"events"`
	Scholarships []seedScholarship `yaml:"scholarships"`
}

func (cli *commandLine) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load events and scholarships from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				_ = cmd.Help()
				return errHelp
			}
			return cli.seed(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the YAML seed file")
	return cmd
}

// seed creates every record of the file, or none if one of them is invalid.
func (cli *commandLine) seed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading seed file")
	}
	var sf seedFile
	if err = yaml.Unmarshal(data, &sf); err != nil {
		return errors.Wrap(err, "parsing seed file")
	}

	events := make([]schedule.NewEvent, 0, len(sf.Events))
	for i, se := range sf.Events {
		ne := schedule.NewEvent(se)
		if err = ne.Validate(cli.validate); err != nil {
			return cli.invalid(fmt.Sprintf("event #%d", i+1), err)
		}
		events = append(events, ne)
	}
	records := make([]scholarship.NewScholarship, 0, len(sf.Scholarships))
	for i, ss := range sf.Scholarships {
		ns := scholarship.NewScholarship(ss)
		if err = ns.Validate(cli.validate); err != nil {
			return cli.invalid(fmt.Sprintf("scholarship #%d", i+1), err)
		}
		records = append(records, ns)
	}

	for _, ne := range events {
		if _, err = cli.evtSvc.Create(ctx, ne); err != nil {
			return errors.Wrap(err, "creating event")
		}
	}
	for _, ns := range records {
		if _, err = cli.schSvc.Create(ctx, ns); err != nil {
			return errors.Wrap(err, "creating scholarship")
		}
	}
	_, _ = fmt.Fprintf(cli.out, "seeded %d event(s) and %d scholarship(s)\n", len(events), len(records))
	return nil
}
