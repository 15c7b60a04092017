package main

import (
	"io"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/core/schedule"
	"github.com/trezcool/chuo/services/calendar"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sqlx.DB
	logger     core.Logger
	evtSvc     *schedule.Service
	schSvc     *scholarship.Service
	codec      *calendar.Codec
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Chuo administration tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCmd(),
		cli.seedCmd(),
		cli.importICSCmd(),
		cli.exportICSCmd(),
		cli.conflictsCmd(),
	)
	return root
}

// run executes the command named by args; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

// invalid turns validation errors into a single readable error.
func (cli *commandLine) invalid(item string, err error) error {
	flds, ok := core.FieldErrors(err, cli.translator)
	if !ok {
		return errors.Wrapf(err, "validating %s", item)
	}
	msgs := make([]string, 0, len(flds))
	for _, fld := range flds {
		msgs = append(msgs, fld.Field+": "+fld.Error)
	}
	return errors.Errorf("invalid %s: %s", item, strings.Join(msgs, "; "))
}
