package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) query() []assignment.Assignment {
	tbl := repo.db.assignment
	ids := make([]int, 0, len(tbl.table))
	for id := range tbl.table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	assignments := make([]assignment.Assignment, 0, len(ids))
	for _, id := range ids {
		assignments = append(assignments, *tbl.table[id])
	}
	return assignments
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	tbl := repo.db.assignment
	tbl.Lock()
	defer tbl.Unlock()

	tbl.pkCount++
	a.ID = tbl.pkCount
	tbl.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, filter *assignment.QueryFilter, ordering []core.DBOrdering) ([]assignment.Assignment, error) {
	repo.db.assignment.RLock()
	defer repo.db.assignment.RUnlock()

	assignments := repo.query()
	if filter != nil && filter.Search != "" {
		var filtered []assignment.Assignment
		term := strings.ToLower(filter.Search)
		for _, a := range assignments {
			if strings.Contains(strings.ToLower(a.Title), term) {
				filtered = append(filtered, a)
			}
		}
		assignments = filtered
	}
	if filter != nil && filter.Category != "" {
		var filtered []assignment.Assignment
		for _, a := range assignments {
			if strings.EqualFold(a.Category, filter.Category) {
				filtered = append(filtered, a)
			}
		}
		assignments = filtered
	}

	sort.SliceStable(assignments, orderedLess(ordering, func(field string, i, j int) (int, bool) {
		a, b := assignments[i], assignments[j]
		switch field {
		case "id":
			return cmpInt(a.ID, b.ID), true
		case "title":
			return cmpString(a.Title, b.Title), true
		case "category":
			return cmpString(a.Category, b.Category), true
		case "points":
			return cmpFloat(a.Points, b.Points), true
		case "weight":
			return cmpFloat(a.Weight, b.Weight), true
		case "dueDate":
			return cmpTime(a.DueDate.Time, b.DueDate.Time), true
		}
		return 0, false
	}))
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id int) (assignment.Assignment, error) {
	repo.db.assignment.RLock()
	defer repo.db.assignment.RUnlock()

	if a, ok := repo.db.assignment.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	tbl := repo.db.assignment
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	tbl.table[a.ID] = &a
	return a, nil
}

// DeleteAssignmentsByID also deletes the assignments' grades.
func (repo *assignmentRepository) DeleteAssignmentsByID(_ context.Context, ids ...int) (int, error) {
	db := repo.db
	db.assignment.Lock()
	defer db.assignment.Unlock()
	db.grade.Lock()
	defer db.grade.Unlock()

	set := idSet(ids)
	var deleted int
	for id := range set {
		if _, ok := db.assignment.table[id]; ok {
			delete(db.assignment.table, id)
			deleted++
		}
	}
	for id, g := range db.grade.table {
		if _, ok := set[g.AssignmentID]; ok {
			delete(db.grade.table, id)
		}
	}
	return deleted, nil
}
