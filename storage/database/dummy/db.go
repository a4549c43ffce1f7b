// Package dummydb is an in-memory storage engine. Repositories hand out copies, never the stored records.
package dummydb

import (
	"strings"
	"sync"
	"time"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

type (
	DB struct {
		student       *studentTable
		assignment    *assignmentTable
		grade         *gradeTable
		attendance    *attendanceTable
		communication *communicationTable
	}

	studentTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*student.Student
	}

	assignmentTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*assignment.Assignment
	}

	gradeTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*grade.Grade
	}

	attendanceTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*attendance.Record
	}

	communicationTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*communication.Communication
	}
)

func Open() *DB {
	return &DB{
		student:       &studentTable{table: make(map[int]*student.Student)},
		assignment:    &assignmentTable{table: make(map[int]*assignment.Assignment)},
		grade:         &gradeTable{table: make(map[int]*grade.Grade)},
		attendance:    &attendanceTable{table: make(map[int]*attendance.Record)},
		communication: &communicationTable{table: make(map[int]*communication.Communication)},
	}
}

// Reset empties every table and restarts the id sequences.
func (db *DB) Reset() {
	db.student.Lock()
	db.student.table, db.student.pkCount = make(map[int]*student.Student), 0
	db.student.Unlock()

	db.assignment.Lock()
	db.assignment.table, db.assignment.pkCount = make(map[int]*assignment.Assignment), 0
	db.assignment.Unlock()

	db.grade.Lock()
	db.grade.table, db.grade.pkCount = make(map[int]*grade.Grade), 0
	db.grade.Unlock()

	db.attendance.Lock()
	db.attendance.table, db.attendance.pkCount = make(map[int]*attendance.Record), 0
	db.attendance.Unlock()

	db.communication.Lock()
	db.communication.table, db.communication.pkCount = make(map[int]*communication.Communication), 0
	db.communication.Unlock()
}

// orderedLess builds a sort.SliceStable less func from DB orderings.
// cmp compares items i and j on a field and reports false for unknown fields (which are ignored).
func orderedLess(ordering []core.DBOrdering, cmp func(field string, i, j int) (int, bool)) func(i, j int) bool {
	return func(i, j int) bool {
		for _, ord := range ordering {
			c, known := cmp(ord.Field, i, j)
			if !known || c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func idSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
