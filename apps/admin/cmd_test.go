package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/analytics"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/services/email"
	"github.com/trezcool/classtrack/storage"
	"github.com/trezcool/classtrack/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := core.NewTestConfig()
	logger := testutil.Logger{T: t}
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ClearSentMessages()

	repos, err := storage.Open(conf, false)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	cli := newCommandLine(conf, repos, emailsvc.NewConsoleServiceMock(conf), logger)
	cli.out = out
	return cli, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without sql storage", args: []string{"migrate", "up"}, wantErr: errNoSQL},
		{name: "bad flag", args: []string{"report", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	db, err := sql.Open("postgres", "postgres://classtrack@localhost/classtrack?sslmode=disable") // never dialed
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cli.db = db

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "enrollments", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "bad date", args: []string{"seed", "-date", "tomorrow"}, wantErrStr: `-date: "tomorrow" is not a date (YYYY-MM-DD)`},
		{
			name:    "empty class",
			args:    []string{"seed", "-date", "2024-03-08"},
			wantOut: []string{"seeded 8 students, 4 assignments, 24 grades, 60 attendance records"},
		},
		{name: "already seeded", args: []string{"seed"}, wantErr: errSeeded},
	})
}

func Test_commandLine_report(t *testing.T) {
	cli, out := setup(t)
	origWidth := termWidthFunc
	t.Cleanup(func() { termWidthFunc = origWidth })
	termWidthFunc = func() int { return 60 }
	require.NoError(t, cli.run([]string{"admin", "seed", "-date", "2024-03-08"}))

	runCLITests(t, cli, out, []cliTest{
		{name: "bad email", args: []string{"report", "-email", "nobody"}, wantErrStr: `-email: "nobody" is not an email address`},
		{name: "bad window", args: []string{"report", "-days", "-3"}, wantErrStr: "building dashboard: days: window size must be positive (got -3)"},
		{
			name: "print",
			args: []string{"report", "-date", "2024-03-08", "-days", "3"},
			wantOut: []string{
				"Class dashboard for 2024-03-08",
				"Students: 8 (6 active)",
				"Grade distribution",
				"2024-03-06",
				"2024-03-08",
				"Top performers\n  1. ",
			},
		},
	})

	t.Run("email", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "report", "-date", "2024-03-08", "-email", "Principal <principal@school.test>"}))
		assert.Contains(t, out.String(), "report sent to principal@school.test")

		sent := emailsvc.LastSentMessages(1)
		require.Len(t, sent, 1)
		assert.Equal(t, "Class dashboard for 2024-03-08", sent[0].Subject)
		assert.Contains(t, sent[0].TextContent, "Active students:  6")
		require.Len(t, sent[0].Attachments, 1)
		assert.Equal(t, "gradebook-2024-03-08.csv", sent[0].Attachments[0].Filename)
		assert.Equal(t, "text/csv", sent[0].Attachments[0].ContentType)
	})
}

func Test_commandLine_notify(t *testing.T) {
	cli, out := setup(t)
	require.NoError(t, cli.run([]string{"admin", "seed", "-date", "2024-03-08"}))

	runCLITests(t, cli, out, []cliTest{
		{name: "absence", args: []string{"notify", "-date", "2024-02-26"}, wantOut: []string{"1 absence email(s) sent for 2024-02-26"}},
		{name: "already notified", args: []string{"notify", "-date", "2024-02-26"}, wantOut: []string{"0 absence email(s) sent for 2024-02-26"}},
		{name: "no absence", args: []string{"notify", "-date", "2024-03-08"}, wantOut: []string{"0 absence email(s) sent for 2024-03-08"}},
	})
}

func Test_gradeBookCSV(t *testing.T) {
	avg := 83
	score := 45.5
	book := analytics.GradeBook{
		Assignments: []assignment.Assignment{{ID: 1, Title: "Essay", Points: 50}, {ID: 2, Title: "Midterm", Points: 100}},
		Rows: []analytics.GradeBookRow{
			{
				Student: student.Student{FirstName: "Ada", LastName: "Lovelace", GradeLevel: "11th Grade"},
				Cells: []analytics.GradeCell{
					{AssignmentID: 1, Score: &score, Letter: analytics.LetterA},
					{AssignmentID: 2, Letter: analytics.Ungraded},
				},
				Average: &avg,
				Letter:  analytics.LetterB,
			},
			{
				Student: student.Student{FirstName: "Alan", LastName: "Turing, Jr", GradeLevel: "9th Grade"},
				Cells:   []analytics.GradeCell{{AssignmentID: 1, Letter: analytics.Ungraded}, {AssignmentID: 2, Letter: analytics.Ungraded}},
				Letter:  analytics.Ungraded,
			},
		},
	}

	got, err := gradeBookCSV(book)
	require.NoError(t, err)
	want := strings.Join([]string{
		"Student,Grade Level,Essay (/50),Midterm (/100),Average,Letter",
		"Ada Lovelace,11th Grade,45.5,,83,B",
		`"Alan Turing, Jr",9th Grade,,,,ungraded`,
		"",
	}, "\n")
	assert.Equal(t, want, string(got))
}
