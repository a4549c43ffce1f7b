package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

// clone copies g, score included.
func cloneGrade(g grade.Grade) grade.Grade {
	if g.Score != nil {
		s := *g.Score
		g.Score = &s
	}
	return g
}

func (repo *gradeRepository) query() []grade.Grade {
	tbl := repo.db.grade
	ids := make([]int, 0, len(tbl.table))
	for id := range tbl.table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	grades := make([]grade.Grade, 0, len(ids))
	for _, id := range ids {
		grades = append(grades, cloneGrade(*tbl.table[id]))
	}
	return grades
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	tbl := repo.db.grade
	tbl.Lock()
	defer tbl.Unlock()

	tbl.pkCount++
	g.ID = tbl.pkCount
	stored := cloneGrade(g)
	tbl.table[g.ID] = &stored
	return g, nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Grade, error) {
	repo.db.grade.RLock()
	defer repo.db.grade.RUnlock()

	var grades []grade.Grade
	for _, g := range repo.query() {
		if filter.Match(g) {
			grades = append(grades, g)
		}
	}

	sort.SliceStable(grades, orderedLess(ordering, func(field string, i, j int) (int, bool) {
		a, b := grades[i], grades[j]
		switch field {
		case "id":
			return cmpInt(a.ID, b.ID), true
		case "studentId":
			return cmpInt(a.StudentID, b.StudentID), true
		case "assignmentId":
			return cmpInt(a.AssignmentID, b.AssignmentID), true
		case "submittedDate":
			return cmpTime(a.SubmittedDate, b.SubmittedDate), true
		case "score":
			// ungraded sorts first
			switch {
			case a.Score == nil && b.Score == nil:
				return 0, true
			case a.Score == nil:
				return -1, true
			case b.Score == nil:
				return 1, true
			}
			return cmpFloat(*a.Score, *b.Score), true
		}
		return 0, false
	}))
	return grades, nil
}

func (repo *gradeRepository) GetGrade(_ context.Context, id int) (grade.Grade, error) {
	repo.db.grade.RLock()
	defer repo.db.grade.RUnlock()

	if g, ok := repo.db.grade.table[id]; ok {
		return cloneGrade(*g), nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	tbl := repo.db.grade
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[g.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	stored := cloneGrade(g)
	tbl.table[g.ID] = &stored
	return g, nil
}

func (repo *gradeRepository) UpsertGrade(_ context.Context, g grade.Grade) (grade.Grade, bool, error) {
	tbl := repo.db.grade
	tbl.Lock()
	defer tbl.Unlock()

	var existing *grade.Grade
	for _, stored := range tbl.table {
		if stored.StudentID == g.StudentID && stored.AssignmentID == g.AssignmentID && (existing == nil || stored.ID < existing.ID) {
			existing = stored
		}
	}
	if existing != nil {
		updated := *existing
		updated.Score = g.Score
		updated.Comments = g.Comments
		updated.SubmittedDate = g.SubmittedDate
		stored := cloneGrade(updated)
		tbl.table[updated.ID] = &stored
		return cloneGrade(updated), false, nil
	}

	tbl.pkCount++
	g.ID = tbl.pkCount
	stored := cloneGrade(g)
	tbl.table[g.ID] = &stored
	return g, true, nil
}

func (repo *gradeRepository) DeleteGradesByID(_ context.Context, ids ...int) (int, error) {
	tbl := repo.db.grade
	tbl.Lock()
	defer tbl.Unlock()

	var deleted int
	for id := range idSet(ids) {
		if _, ok := tbl.table[id]; ok {
			delete(tbl.table, id)
			deleted++
		}
	}
	return deleted, nil
}
