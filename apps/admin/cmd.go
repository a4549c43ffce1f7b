package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/analytics"
	"github.com/trezcool/classtrack/core/notify"
	"github.com/trezcool/classtrack/core/report"
	"github.com/trezcool/classtrack/storage"
)

var (
	errHelp  = errors.New("help provided")
	errNoSQL = errors.New("the memory storage has no schema to migrate")
)

type commandLine struct {
	conf      *core.Config
	db        *sql.DB // nil with the memory storage
	repos     *storage.Repositories
	reportSvc *report.Service
	notifier  *notify.AbsenceNotifier
	mailSvc   core.EmailService
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                          - run a goose migration command (up, down, status...)")
	fmt.Fprintln(cli.out, "  seed [-date YYYY-MM-DD]                         - load a demo class, attendance ending on -date")
	fmt.Fprintln(cli.out, "  report [-date YYYY-MM-DD] [-days N] [-email TO] - print the dashboard, optionally email it with the grade book")
	fmt.Fprintln(cli.out, "  notify [-date YYYY-MM-DD]                       - email the parents of the students absent on -date")
}

// dayFlag parses its value with analytics.ParseDay (today when empty).
func dayFlag(fs *flag.FlagSet) func() (core.Date, error) {
	val := fs.String("date", "", "The day (YYYY-MM-DD); today by default.")
	return func() (core.Date, error) {
		d, err := analytics.ParseDay(*val, core.Today())
		if err != nil {
			return core.Date{}, errors.Errorf("-date: %q is not a date (YYYY-MM-DD)", *val)
		}
		return d, nil
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedDay := dayFlag(seedCmd)

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportCmd.SetOutput(cli.out)
	reportDay := dayFlag(reportCmd)
	reportDays := reportCmd.Int("days", 0, "The attendance trend window; the configured one by default.")
	reportEmail := reportCmd.String("email", "", "Email the dashboard and the grade book (CSV) to this address.")

	notifyCmd := flag.NewFlagSet("notify", flag.ContinueOnError)
	notifyCmd.SetOutput(cli.out)
	notifyDay := dayFlag(notifyCmd)

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if cli.db == nil {
			return errNoSQL
		}
		return cli.migrate(args[2:])

	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		day, err := seedDay()
		if err != nil {
			return err
		}
		return cli.seed(ctx, day)

	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		day, err := reportDay()
		if err != nil {
			return err
		}
		return cli.report(ctx, day, *reportDays, strings.TrimSpace(*reportEmail))

	case "notify":
		if err := notifyCmd.Parse(args[2:]); err != nil {
			return err
		}
		day, err := notifyDay()
		if err != nil {
			return err
		}
		sent, err := cli.notifier.Notify(ctx, day)
		fmt.Fprintf(cli.out, "%d absence email(s) sent for %s\n", sent, day)
		return err

	default:
		cli.printUsage()
		return errHelp
	}
}
