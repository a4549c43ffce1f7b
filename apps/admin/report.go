package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/analytics"
	"github.com/trezcool/classtrack/core/report"
)

const (
	defaultWidth = 80
	minBarWidth  = 10
	labelWidth   = 14 // "YYYY-MM-DD" / letter column + padding
)

// termWidthFunc reports the width of the terminal attached to stdout (mockable).
var termWidthFunc = func() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// report prints the dashboard of `day` and, when `to` is set, emails it with the grade book attached.
func (cli *commandLine) report(ctx context.Context, day core.Date, days int, to string) error {
	var addr *mail.Address
	if to != "" {
		var err error
		if addr, err = mail.ParseAddress(to); err != nil {
			return errors.Errorf("-email: %q is not an email address", to)
		}
	}

	dash, err := cli.reportSvc.Dashboard(ctx, day.Time, days)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	printDashboard(cli.out, dash, termWidthFunc())

	if addr == nil {
		return nil
	}
	book, err := cli.reportSvc.GradeBook(ctx)
	if err != nil {
		return errors.Wrap(err, "building grade book")
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{*addr},
		Subject:      "Class dashboard for " + dash.Date.String(),
		TemplateName: "dashboard_report",
		TemplateData: dash,
	}
	csvData, err := gradeBookCSV(book)
	if err != nil {
		return err
	}
	if err = msg.Attach(bytes.NewReader(csvData), "gradebook-"+dash.Date.String()+".csv", "text/csv"); err != nil {
		return err
	}
	cli.mailSvc.SendMessages(msg)
	fmt.Fprintf(cli.out, "\nreport sent to %s\n", addr.Address)
	return nil
}

func bar(value, max, width int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := value * width / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

func printDashboard(w io.Writer, dash report.Dashboard, width int) {
	barWidth := width - labelWidth - 6 // room for the value
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	st := dash.Stats

	fmt.Fprintf(w, "Class dashboard for %s\n", dash.Date)
	fmt.Fprintln(w, strings.Repeat("=", minInt(width, 60)))
	fmt.Fprintf(w, "Students: %d (%d active)  Average: %d%%  Attendance: %d%%  Assignments: %d\n",
		st.TotalStudents, st.ActiveStudents, st.ClassAverage, st.AttendanceRate, st.TotalAssignments)

	fmt.Fprintln(w, "\nGrade distribution")
	var maxCount int
	for _, b := range dash.Distribution {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	for _, b := range dash.Distribution {
		fmt.Fprintf(w, "  %-*s%s %d\n", labelWidth-2, b.Letter, bar(b.Count, maxCount, barWidth), b.Count)
	}

	fmt.Fprintln(w, "\nAttendance trend")
	for _, d := range dash.Trend {
		fmt.Fprintf(w, "  %-*s%s %d%%\n", labelWidth-2, d.Date, bar(d.Rate, 100, barWidth), d.Rate)
	}

	fmt.Fprintln(w, "\nTop performers")
	if len(dash.TopPerformers) == 0 {
		fmt.Fprintln(w, "  no graded work yet")
	}
	for i, p := range dash.TopPerformers {
		fmt.Fprintf(w, "  %d. %-30s %3d%% (%s)\n", i+1, p.Student.FullName(), p.Average, p.Letter)
	}
}

// gradeBookCSV renders one row per student: name, one score column per assignment, average and letter.
func gradeBookCSV(book analytics.GradeBook) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	header := []string{"Student", "Grade Level"}
	for _, a := range book.Assignments {
		header = append(header, fmt.Sprintf("%s (/%s)", a.Title, strconv.FormatFloat(a.Points, 'f', -1, 64)))
	}
	header = append(header, "Average", "Letter")
	if err := cw.Write(header); err != nil {
		return nil, errors.Wrap(err, "writing csv")
	}

	for _, row := range book.Rows {
		rec := []string{row.Student.FullName(), row.Student.GradeLevel}
		for _, c := range row.Cells {
			if c.Score == nil {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(*c.Score, 'f', -1, 64))
		}
		avg := ""
		if row.Average != nil {
			avg = strconv.Itoa(*row.Average)
		}
		rec = append(rec, avg, string(row.Letter))
		if err := cw.Write(rec); err != nil {
			return nil, errors.Wrap(err, "writing csv")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, errors.Wrap(err, "writing csv")
	}
	return buf.Bytes(), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
