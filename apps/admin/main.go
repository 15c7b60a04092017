package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/core/schedule"
	"github.com/trezcool/chuo/services/calendar"
	logsvc "github.com/trezcool/chuo/services/logger"
	"github.com/trezcool/chuo/storage/database"
	"github.com/trezcool/chuo/storage/database/sqlxrepos"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(os.Stderr, conf).Named("admin")

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	scholarship.InitValidators(validate, translator)

	// start CLI; seeding and imports never send clash emails
	cli := commandLine{
		db:         db,
		logger:     logger,
		evtSvc:     schedule.NewService(sqlxrepos.NewEventRepository(db), nil, logger, conf),
		schSvc:     scholarship.NewService(sqlxrepos.NewScholarshipRepository(db)),
		codec:      calendar.NewCodec(conf),
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
