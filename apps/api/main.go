package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/classtrack/apps/api/echo"
	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/notify"
	"github.com/trezcool/classtrack/core/report"
	"github.com/trezcool/classtrack/core/student"
	emailsvc "github.com/trezcool/classtrack/services/email"
	logsvc "github.com/trezcool/classtrack/services/logger"
	"github.com/trezcool/classtrack/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	repos, err := storage.Open(conf, true /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Storage, err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	studentSvc := student.NewService(repos.Students)
	assignmentSvc := assignment.NewService(repos.Assignments)
	gradeSvc := grade.NewService(repos.Grades, repos.Students, repos.Assignments)
	attendanceSvc := attendance.NewService(repos.Attendance, repos.Students)
	commSvc := communication.NewService(repos.Communications, repos.Students, mailSvc)
	reportSvc := report.NewService(conf, repos.Students, repos.Assignments, repos.Grades, repos.Attendance)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	communication.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Absence Digest

	if conf.Notify.AbsenceSchedule != "" {
		notifier := notify.NewAbsenceNotifier(repos.Students, repos.Attendance, repos.Communications, mailSvc, logger)
		scheduler, err := notifier.Schedule(conf.Notify.AbsenceSchedule)
		if err != nil {
			logger.Fatal(fmt.Sprintf("scheduling absence digest: %v", err), err)
		}
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info(fmt.Sprintf("absence digest scheduled %q", conf.Notify.AbsenceSchedule))
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus exposition of the API metrics.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage)

	metrics := echoapi.NewMetrics("classtrack")
	http.Handle("/metrics", metrics.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			Metrics:    metrics,

			StudentSvc:       studentSvc,
			AssignmentSvc:    assignmentSvc,
			GradeSvc:         gradeSvc,
			AttendanceSvc:    attendanceSvc,
			CommunicationSvc: commSvc,
			ReportSvc:        reportSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
