package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// query returns copies of all rows, by id.
func (repo *studentRepository) query() []student.Student {
	tbl := repo.db.student
	ids := make([]int, 0, len(tbl.table))
	for id := range tbl.table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		students = append(students, *tbl.table[id])
	}
	return students
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	tbl := repo.db.student
	tbl.Lock()
	defer tbl.Unlock()

	tbl.pkCount++
	s.ID = tbl.pkCount
	tbl.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	var students []student.Student
	for _, s := range repo.query() {
		if filter.Match(s) {
			students = append(students, s)
		}
	}

	sort.SliceStable(students, orderedLess(ordering, func(field string, i, j int) (int, bool) {
		a, b := students[i], students[j]
		switch field {
		case "id":
			return cmpInt(a.ID, b.ID), true
		case "firstName":
			return cmpString(a.FirstName, b.FirstName), true
		case "lastName":
			return cmpString(a.LastName, b.LastName), true
		case "email":
			return cmpString(a.Email, b.Email), true
		case "gradeLevel":
			return cmpInt(gradeLevelRank(a.GradeLevel), gradeLevelRank(b.GradeLevel)), true
		case "status":
			return cmpString(a.Status, b.Status), true
		case "dateEnrolled":
			return cmpTime(a.DateEnrolled.Time, b.DateEnrolled.Time), true
		}
		return 0, false
	}))
	return students, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id int) (student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	if s, ok := repo.db.student.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	tbl := repo.db.student
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	tbl.table[s.ID] = &s
	return s, nil
}

// DeleteStudentsByID also deletes the students' grades, attendance records and communications.
func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...int) (int, error) {
	db := repo.db
	db.student.Lock()
	defer db.student.Unlock()
	db.grade.Lock()
	defer db.grade.Unlock()
	db.attendance.Lock()
	defer db.attendance.Unlock()
	db.communication.Lock()
	defer db.communication.Unlock()

	set := idSet(ids)
	var deleted int
	for id := range set {
		if _, ok := db.student.table[id]; ok {
			delete(db.student.table, id)
			deleted++
		}
	}
	for id, g := range db.grade.table {
		if _, ok := set[g.StudentID]; ok {
			delete(db.grade.table, id)
		}
	}
	for id, r := range db.attendance.table {
		if _, ok := set[r.StudentID]; ok {
			delete(db.attendance.table, id)
		}
	}
	for id, c := range db.communication.table {
		if _, ok := set[c.StudentID]; ok {
			delete(db.communication.table, id)
		}
	}
	return deleted, nil
}

// gradeLevelRank sorts grade levels in school order, unknown levels last.
func gradeLevelRank(level string) int {
	for i, l := range core.GradeLevels {
		if l == level {
			return i
		}
	}
	return len(core.GradeLevels)
}
