package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

func score(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) core.Date { return core.NewDate(y, m, d) }

func rec(studentID int, d core.Date, status string) attendance.Record {
	return attendance.Record{StudentID: studentID, Date: d, Status: status}
}

func TestWeightedAverage(t *testing.T) {
	assignments := []assignment.Assignment{
		{ID: 1, Points: 100, Weight: 1},
		{ID: 2, Points: 50, Weight: 1},
		{ID: 3, Points: 20, Weight: 3},
		{ID: 4, Points: 100, Weight: 0},
		{ID: 5, Points: 0, Weight: 1},
		{ID: 6, Points: 1, Weight: 1},
		{ID: 7, Points: 4, Weight: 1},
	}

	tests := []struct {
		name    string
		grades  []grade.Grade
		wantAvg int
		wantOk  bool
	}{
		{name: "no grades", wantOk: false},
		{
			name:    "single grade",
			grades:  []grade.Grade{{StudentID: 7, AssignmentID: 1, Score: score(85)}},
			wantAvg: 85, wantOk: true,
		},
		{
			name: "equal weights",
			grades: []grade.Grade{
				{StudentID: 7, AssignmentID: 1, Score: score(80)},
				{StudentID: 7, AssignmentID: 2, Score: score(50)},
			},
			wantAvg: 90, wantOk: true,
		},
		{
			name: "weighted",
			grades: []grade.Grade{
				{StudentID: 7, AssignmentID: 1, Score: score(60)}, // .6 * 1
				{StudentID: 7, AssignmentID: 3, Score: score(20)}, // 1 * 3
			},
			wantAvg: 90, wantOk: true, // (0.6 + 3) / 4
		},
		{
			name: "ungraded scores are excluded, not zero",
			grades: []grade.Grade{
				{StudentID: 7, AssignmentID: 1, Score: score(70)},
				{StudentID: 7, AssignmentID: 2},
			},
			wantAvg: 70, wantOk: true,
		},
		{
			name:   "only ungraded",
			grades: []grade.Grade{{StudentID: 7, AssignmentID: 1}},
			wantOk: false,
		},
		{
			name:   "unknown assignment is skipped",
			grades: []grade.Grade{{StudentID: 7, AssignmentID: 99, Score: score(10)}},
			wantOk: false,
		},
		{
			name: "unknown assignment does not blank out the rest",
			grades: []grade.Grade{
				{StudentID: 7, AssignmentID: 99, Score: score(10)},
				{StudentID: 7, AssignmentID: 1, Score: score(95)},
			},
			wantAvg: 95, wantOk: true,
		},
		{
			name:   "zero weight only",
			grades: []grade.Grade{{StudentID: 7, AssignmentID: 4, Score: score(100)}},
			wantOk: false,
		},
		{
			name:   "zero points is guarded",
			grades: []grade.Grade{{StudentID: 7, AssignmentID: 5, Score: score(10)}},
			wantOk: false,
		},
		{
			name: "other students are ignored",
			grades: []grade.Grade{
				{StudentID: 8, AssignmentID: 1, Score: score(10)},
				{StudentID: 7, AssignmentID: 1, Score: score(88)},
			},
			wantAvg: 88, wantOk: true,
		},
		{
			name: "rounds half up",
			grades: []grade.Grade{
				{StudentID: 7, AssignmentID: 6, Score: score(1)},
				{StudentID: 7, AssignmentID: 7, Score: score(3)},
			},
			wantAvg: 88, wantOk: true, // 87.5
		},
		{
			name:    "zero average is data",
			grades:  []grade.Grade{{StudentID: 7, AssignmentID: 1, Score: score(0)}},
			wantAvg: 0, wantOk: true,
		},
		{
			name:    "scores are not clamped",
			grades:  []grade.Grade{{StudentID: 7, AssignmentID: 1, Score: score(120)}},
			wantAvg: 120, wantOk: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, ok := WeightedAverage(7, tt.grades, assignments)
			if ok != tt.wantOk {
				t.Fatalf("WeightedAverage() ok = %v, wantOk %v", ok, tt.wantOk)
			}
			if avg != tt.wantAvg {
				t.Errorf("WeightedAverage() = %v, want %v", avg, tt.wantAvg)
			}
		})
	}
}

func TestLetterFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want Letter
	}{
		{100, LetterA}, {90, LetterA}, {89.99, LetterB}, {80, LetterB},
		{79.9, LetterC}, {70, LetterC}, {69.5, LetterD}, {60, LetterD},
		{59.99, LetterF}, {0, LetterF}, {-10, LetterF}, {120, LetterA},
	}
	for _, tt := range tests {
		if got := LetterFor(tt.pct); got != tt.want {
			t.Errorf("LetterFor(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestLetterOf(t *testing.T) {
	assert.Equal(t, Ungraded, LetterOf(nil, 100))
	assert.Equal(t, Ungraded, LetterOf(score(10), 0))
	assert.Equal(t, LetterA, LetterOf(score(45), 50))
	assert.Equal(t, LetterB, LetterOf(score(40), 50))
	assert.Equal(t, LetterF, LetterOf(score(0), 50))
	assert.Equal(t, Ungraded, LetterOfAverage(0, false))
	assert.Equal(t, LetterF, LetterOfAverage(0, true))
}

func TestAttendanceRate(t *testing.T) {
	d := day(2024, time.March, 4)
	records := []attendance.Record{
		rec(1, d, attendance.StatusPresent),
		rec(1, d.AddDays(1), attendance.StatusPresent),
		rec(1, d.AddDays(2), attendance.StatusAbsent),
		rec(1, d.AddDays(3), attendance.StatusLate),
		rec(2, d, attendance.StatusExcused),
		rec(3, d, attendance.StatusPresent),
		rec(3, d.AddDays(1), attendance.StatusPresent),
		rec(3, d.AddDays(2), attendance.StatusAbsent),
	}

	tests := []struct {
		name      string
		studentID int
		want      int
	}{
		{name: "mixed statuses", studentID: 1, want: 50},
		{name: "excused is not present", studentID: 2, want: 0},
		{name: "rounds", studentID: 3, want: 67},
		{name: "no records is zero", studentID: 4, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttendanceRate(tt.studentID, records); got != tt.want {
				t.Errorf("AttendanceRate() = %v, want %v", got, tt.want)
			}
		})
	}

	assert.Equal(t, 50, OverallAttendanceRate(records[:4]))
	assert.Equal(t, 0, OverallAttendanceRate(nil))
}

func TestStatusOn(t *testing.T) {
	d := day(2024, time.March, 6)
	records := []attendance.Record{
		rec(1, d, attendance.StatusLate),
		rec(1, d, attendance.StatusPresent), // duplicate: first one wins
		rec(2, d.AddDays(1), attendance.StatusExcused),
	}

	tests := []struct {
		name      string
		studentID int
		at        time.Time
		want      string
	}{
		{name: "first record of the day", studentID: 1, at: d.Time, want: attendance.StatusLate},
		{name: "time of day is ignored", studentID: 1, at: d.Add(15*time.Hour + 30*time.Minute), want: attendance.StatusLate},
		{name: "missing day defaults to absent", studentID: 1, at: d.AddDays(1).Time, want: attendance.StatusAbsent},
		{name: "other student", studentID: 2, at: d.AddDays(1).Time, want: attendance.StatusExcused},
		{name: "unknown student", studentID: 9, at: d.Time, want: attendance.StatusAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOn(tt.studentID, tt.at, records); got != tt.want {
				t.Errorf("StatusOn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekOf(t *testing.T) {
	monday := day(2024, time.March, 4)
	for i := 0; i < 7; i++ {
		anchor := monday.AddDays(i).Add(13 * time.Hour)
		t.Run(anchor.Weekday().String(), func(t *testing.T) {
			days := WeekOf(anchor)
			require.Len(t, days, DaysPerWeek)
			assert.Equal(t, time.Monday, days[0].Weekday())
			assert.True(t, days[0].Equal(monday), "week starts %v, want %v", days[0], monday)
			assert.Equal(t, time.Sunday, days[6].Weekday())
			for j := 1; j < len(days); j++ {
				assert.True(t, days[j].Equal(days[j-1].AddDays(1)))
			}
		})
	}
}

func TestBuildWeeklyGrid(t *testing.T) {
	wednesday := day(2024, time.March, 6)
	students := []student.Student{{ID: 1, FirstName: "Ada"}, {ID: 2, FirstName: "Bob"}}
	records := []attendance.Record{
		rec(1, day(2024, time.March, 4), attendance.StatusPresent),
		rec(1, day(2024, time.March, 6), attendance.StatusLate),
		rec(1, day(2024, time.March, 10), attendance.StatusPresent),
		rec(1, day(2024, time.February, 1), attendance.StatusAbsent), // outside the week, counts for the rate
		rec(2, day(2024, time.March, 5), attendance.StatusExcused),
		rec(99, day(2024, time.March, 5), attendance.StatusPresent), // unknown student
	}

	grid := BuildWeeklyGrid(wednesday.Time, students, records)

	require.Len(t, grid.Days, 7)
	assert.True(t, grid.Days[0].Equal(day(2024, time.March, 4)))
	assert.True(t, grid.Days[6].Equal(day(2024, time.March, 10)))
	require.Len(t, grid.Rows, 2)

	a, p, l, x := attendance.StatusAbsent, attendance.StatusPresent, attendance.StatusLate, attendance.StatusExcused
	assert.Equal(t, []string{p, a, l, a, a, a, p}, grid.Rows[0].Statuses)
	assert.Equal(t, 50, grid.Rows[0].Rate) // 2 present / 4 lifetime records
	assert.Equal(t, []string{a, x, a, a, a, a, a}, grid.Rows[1].Statuses)
	assert.Equal(t, 0, grid.Rows[1].Rate)
}

func TestDistribution(t *testing.T) {
	assignments := []assignment.Assignment{{ID: 1, Points: 100, Weight: 1}, {ID: 2, Points: 10, Weight: 2}}
	grades := []grade.Grade{
		{StudentID: 1, AssignmentID: 1, Score: score(95)},
		{StudentID: 1, AssignmentID: 2, Score: score(9.5)}, // 95 -> A
		{StudentID: 2, AssignmentID: 1, Score: score(85)}, // B
		{StudentID: 2, AssignmentID: 2, Score: score(5)},  // 50 -> F
		{StudentID: 3, AssignmentID: 1, Score: score(60)}, // D
		{StudentID: 3, AssignmentID: 2},                   // ungraded
		{StudentID: 3, AssignmentID: 42, Score: score(1)}, // unknown assignment
	}

	dist := Distribution(grades, assignments)

	want := []BucketCount{
		{Letter: LetterA, Count: 2},
		{Letter: LetterB, Count: 1},
		{Letter: LetterC, Count: 0},
		{Letter: LetterD, Count: 1},
		{Letter: LetterF, Count: 1},
	}
	assert.Equal(t, want, dist)

	var total int
	for _, b := range dist {
		total += b.Count
	}
	assert.Equal(t, 5, total, "counts must add up to the gradable records")

	empty := Distribution(nil, nil)
	require.Len(t, empty, 5)
	for i, b := range empty {
		assert.Equal(t, Letters[i], b.Letter)
		assert.Zero(t, b.Count)
	}
}

func TestAttendanceTrend(t *testing.T) {
	today := day(2024, time.March, 10).Add(18 * time.Hour)
	records := []attendance.Record{
		rec(1, day(2024, time.March, 10), attendance.StatusPresent),
		rec(2, day(2024, time.March, 10), attendance.StatusAbsent),
		rec(1, day(2024, time.March, 9), attendance.StatusPresent),
		rec(2, day(2024, time.March, 9), attendance.StatusPresent),
		rec(3, day(2024, time.March, 9), attendance.StatusLate),
		rec(1, day(2024, time.March, 1), attendance.StatusPresent), // out of window
	}

	t.Run("window", func(t *testing.T) {
		trend, err := AttendanceTrend(today, 3, records)
		require.NoError(t, err)
		want := []DayRate{
			{Date: day(2024, time.March, 8), Rate: 0},
			{Date: day(2024, time.March, 9), Rate: 67},
			{Date: day(2024, time.March, 10), Rate: 50},
		}
		assert.Equal(t, want, trend)
	})

	t.Run("seven days, oldest first", func(t *testing.T) {
		trend, err := AttendanceTrend(today, 7, records)
		require.NoError(t, err)
		require.Len(t, trend, 7)
		assert.True(t, trend[0].Date.Equal(day(2024, time.March, 4)))
		assert.True(t, trend[6].Date.Equal(day(2024, time.March, 10)))
	})

	t.Run("longest window", func(t *testing.T) {
		trend, err := AttendanceTrend(today, MaxTrendDays, records)
		require.NoError(t, err)
		assert.Len(t, trend, MaxTrendDays)
	})

	t.Run("invalid window", func(t *testing.T) {
		for _, n := range []int{0, -3, MaxTrendDays + 1, 1 << 30} {
			_, err := AttendanceTrend(today, n, records)
			if !core.IsArgumentError(err) {
				t.Errorf("AttendanceTrend(%d) error = %v, want an ArgumentError", n, err)
			}
		}
	})
}

func TestGradeLevelRollups(t *testing.T) {
	levels := []string{"9th Grade", "10th Grade", "11th Grade", "12th Grade"}
	students := []student.Student{
		{ID: 1, GradeLevel: "9th Grade"},
		{ID: 2, GradeLevel: "9th Grade"},
		{ID: 3, GradeLevel: "10th Grade"},
		{ID: 4, GradeLevel: "12th Grade"},
	}
	assignments := []assignment.Assignment{{ID: 1, Points: 100, Weight: 1}, {ID: 2, Points: 50, Weight: 5}}
	grades := []grade.Grade{
		// 9th: flattened mean of 100, 80, 60 = 80 (the mean of per-student means would be 85)
		{StudentID: 1, AssignmentID: 1, Score: score(100)},
		{StudentID: 2, AssignmentID: 1, Score: score(80)},
		{StudentID: 2, AssignmentID: 2, Score: score(30)},
		{StudentID: 2, AssignmentID: 9, Score: score(30)}, // unknown assignment
		// 10th
		{StudentID: 3, AssignmentID: 2, Score: score(45)},
		// 12th: ungraded only
		{StudentID: 4, AssignmentID: 1},
		// unknown student
		{StudentID: 42, AssignmentID: 1, Score: score(1)},
	}
	d := day(2024, time.March, 4)
	records := []attendance.Record{
		rec(1, d, attendance.StatusPresent),
		rec(2, d, attendance.StatusAbsent),
		rec(2, d.AddDays(1), attendance.StatusPresent),
		rec(3, d, attendance.StatusLate),
		rec(42, d, attendance.StatusPresent),
	}

	got := GradeLevelRollups(levels, students, grades, assignments, records)

	want := []LevelRollup{
		{GradeLevel: "9th Grade", Students: 2, AverageGrade: 80, AttendanceRate: 67},
		{GradeLevel: "10th Grade", Students: 1, AverageGrade: 90, AttendanceRate: 0},
		{GradeLevel: "11th Grade", Students: 0, AverageGrade: 0, AttendanceRate: 0},
		{GradeLevel: "12th Grade", Students: 1, AverageGrade: 0, AttendanceRate: 0},
	}
	assert.Equal(t, want, got)
}

func TestTopPerformers(t *testing.T) {
	assignments := []assignment.Assignment{{ID: 1, Points: 100, Weight: 1}}
	students := make([]student.Student, 0, 8)
	for i := 1; i <= 8; i++ {
		students = append(students, student.Student{ID: i})
	}
	grades := []grade.Grade{
		{StudentID: 1, AssignmentID: 1, Score: score(70)},
		{StudentID: 2, AssignmentID: 1, Score: score(95)},
		{StudentID: 3, AssignmentID: 1, Score: score(0)}, // 0 average: excluded
		// 4: no data
		{StudentID: 5, AssignmentID: 1, Score: score(95)}, // tie with 2, comes after it
		{StudentID: 6, AssignmentID: 1, Score: score(60)},
		{StudentID: 7, AssignmentID: 1, Score: score(82)},
		{StudentID: 8, AssignmentID: 1, Score: score(99)},
	}
	ids := func(ps []Performer) []int {
		out := make([]int, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Student.ID)
		}
		return out
	}

	tests := []struct {
		name    string
		n       int
		wantIDs []int
		wantErr bool
	}{
		{name: "default limit", n: 0, wantIDs: []int{8, 2, 5, 7, 1}},
		{name: "top 2", n: 2, wantIDs: []int{8, 2}},
		{name: "more than available", n: 10, wantIDs: []int{8, 2, 5, 7, 1, 6}},
		{name: "negative limit", n: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TopPerformers(students, grades, assignments, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TopPerformers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			assert.Equal(t, tt.wantIDs, ids(got))
			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i-1].Average, got[i].Average)
			}
		})
	}
}

func TestClassStats(t *testing.T) {
	snap := Snapshot{
		Students: []student.Student{
			{ID: 1, Status: student.StatusActive},
			{ID: 2, Status: student.StatusInactive},
			{ID: 3, Status: student.StatusActive},
		},
		Assignments: []assignment.Assignment{{ID: 1, Points: 50, Weight: 1}, {ID: 2, Points: 100, Weight: 1}},
		Grades: []grade.Grade{
			{StudentID: 1, AssignmentID: 1, Score: score(40)}, // 80
			{StudentID: 3, AssignmentID: 2, Score: score(92)},
			{StudentID: 3, AssignmentID: 1},
		},
		Attendance: []attendance.Record{
			rec(1, day(2024, time.March, 4), attendance.StatusPresent),
			rec(3, day(2024, time.March, 4), attendance.StatusAbsent),
		},
	}

	want := Stats{TotalStudents: 3, ActiveStudents: 2, ClassAverage: 86, AttendanceRate: 50, TotalAssignments: 2}
	assert.Equal(t, want, ClassStats(snap))
	assert.Equal(t, Stats{}, ClassStats(Snapshot{}))
}

func TestBuildGradeBook(t *testing.T) {
	students := []student.Student{{ID: 1}, {ID: 2}}
	assignments := []assignment.Assignment{{ID: 10, Points: 20, Weight: 1}, {ID: 11, Points: 100, Weight: 1}}
	grades := []grade.Grade{
		{ID: 100, StudentID: 1, AssignmentID: 10, Score: score(15)},
		{ID: 101, StudentID: 1, AssignmentID: 11, Score: score(95)},
		{ID: 102, StudentID: 2, AssignmentID: 11},
	}

	book := BuildGradeBook(students, assignments, grades)

	require.Len(t, book.Rows, 2)
	row := book.Rows[0]
	require.Len(t, row.Cells, 2)
	assert.Equal(t, 100, row.Cells[0].GradeID)
	assert.Equal(t, LetterC, row.Cells[0].Letter)
	assert.Equal(t, LetterA, row.Cells[1].Letter)
	require.NotNil(t, row.Average)
	assert.Equal(t, 85, *row.Average)
	assert.Equal(t, LetterB, row.Letter)

	row = book.Rows[1]
	assert.Equal(t, 0, row.Cells[0].GradeID)
	assert.Nil(t, row.Cells[0].Score)
	assert.Equal(t, Ungraded, row.Cells[0].Letter)
	assert.Equal(t, 102, row.Cells[1].GradeID)
	assert.Equal(t, Ungraded, row.Cells[1].Letter)
	assert.Nil(t, row.Average)
	assert.Equal(t, Ungraded, row.Letter)
}

func TestSummarizeStudent(t *testing.T) {
	s := student.Student{ID: 1}
	snap := Snapshot{
		Assignments: []assignment.Assignment{{ID: 1, Points: 10, Weight: 1}},
		Grades: []grade.Grade{
			{StudentID: 1, AssignmentID: 1, Score: score(7)},
			{StudentID: 1, AssignmentID: 2, Score: score(7)},
		},
		Attendance: []attendance.Record{
			rec(1, day(2024, time.March, 4), attendance.StatusPresent),
			rec(2, day(2024, time.March, 4), attendance.StatusAbsent),
		},
	}

	sum := SummarizeStudent(s, snap)
	require.NotNil(t, sum.Average)
	assert.Equal(t, 70, *sum.Average)
	assert.Equal(t, LetterC, sum.Letter)
	assert.Equal(t, 100, sum.AttendanceRate)
	assert.Equal(t, 1, sum.GradedCount)
	assert.Equal(t, 1, sum.RecordCount)

	empty := SummarizeStudent(student.Student{ID: 5}, snap)
	assert.Nil(t, empty.Average)
	assert.Equal(t, Ungraded, empty.Letter)
	assert.Equal(t, 0, empty.AttendanceRate)
}

func TestParsers(t *testing.T) {
	t.Run("ParseID", func(t *testing.T) {
		id, err := ParseID("id", " 12 ")
		require.NoError(t, err)
		assert.Equal(t, 12, id)

		for _, s := range []string{"", "abc", "-1", "0", "1.5"} {
			if _, err := ParseID("id", s); !core.IsArgumentError(err) {
				t.Errorf("ParseID(%q) error = %v, want an ArgumentError", s, err)
			}
		}
	})

	t.Run("ParseDay", func(t *testing.T) {
		fallback := day(2024, time.January, 1)
		d, err := ParseDay("", fallback)
		require.NoError(t, err)
		assert.True(t, d.Equal(fallback))

		d, err = ParseDay("2024-03-06", fallback)
		require.NoError(t, err)
		assert.True(t, d.Equal(day(2024, time.March, 6)))

		_, err = ParseDay("06/03/2024", fallback)
		assert.True(t, core.IsArgumentError(err))
	})

	t.Run("ParseCount", func(t *testing.T) {
		n, err := ParseCount("days", "", 7, 366)
		require.NoError(t, err)
		assert.Equal(t, 7, n)

		n, err = ParseCount("days", "14", 7, 366)
		require.NoError(t, err)
		assert.Equal(t, 14, n)

		n, err = ParseCount("limit", "-2", 5, 10)
		require.NoError(t, err)
		assert.Equal(t, -2, n, "the sign is left to the caller")

		_, err = ParseCount("days", "a week", 7, 366)
		assert.True(t, core.IsArgumentError(err))

		_, err = ParseCount("days", "1099511627776", 7, 366)
		require.True(t, core.IsArgumentError(err))
		assert.EqualError(t, err, "days: must be at most 366 (got 1099511627776)")
	})

	t.Run("CheckTrendWindow", func(t *testing.T) {
		tests := []struct {
			name    string
			days    int
			max     int
			wantErr string
		}{
			{name: "within", days: 30, max: 30},
			{name: "above configured", days: 31, max: 30, wantErr: "days: window size must be at most 30 (got 31)"},
			{name: "unset max", days: MaxTrendDays, max: 0},
			{name: "max above hard cap", days: MaxTrendDays + 1, max: 10000, wantErr: "days: window size must be at most 366 (got 367)"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := CheckTrendWindow(tt.days, tt.max)
				if tt.wantErr == "" {
					assert.NoError(t, err)
					return
				}
				assert.EqualError(t, err, tt.wantErr)
			})
		}
	})
}
