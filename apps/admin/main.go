package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/notify"
	"github.com/trezcool/classtrack/core/report"
	emailsvc "github.com/trezcool/classtrack/services/email"
	logsvc "github.com/trezcool/classtrack/services/logger"
	"github.com/trezcool/classtrack/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	repos, err := storage.Open(conf, false /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Storage, err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(conf, logger)

	// start CLI
	cli := newCommandLine(conf, repos, mailSvc, logger)
	err = cli.run(os.Args)
	if w, ok := mailSvc.(waiter); ok {
		w.Wait()
	}
	if cerr := repos.Close(); cerr != nil {
		logger.Error(fmt.Sprintf("closing storage: %v", cerr), cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		os.Exit(1)
	}
}

// waiter is implemented by the email services sending in the background.
type waiter interface {
	Wait()
}

func newCommandLine(conf *core.Config, repos *storage.Repositories, mailSvc core.EmailService, logger core.Logger) *commandLine {
	cli := &commandLine{
		conf:      conf,
		repos:     repos,
		reportSvc: report.NewService(conf, repos.Students, repos.Assignments, repos.Grades, repos.Attendance),
		notifier:  notify.NewAbsenceNotifier(repos.Students, repos.Attendance, repos.Communications, mailSvc, logger),
		mailSvc:   mailSvc,
		out:       os.Stdout,
	}
	if repos.DB != nil {
		cli.db = repos.DB.DB
	}
	return cli
}
