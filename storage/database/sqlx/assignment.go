package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
)

const assignmentColumns = "id, title, category, points, weight, due_date"

var assignmentOrderColumns = map[string]string{
	"id":       "id",
	"title":    "title",
	"category": "category",
	"points":   "points",
	"weight":   "weight",
	"dueDate":  "due_date",
}

type assignmentRow struct {
	ID       int       `db:"id"`
	Title    string    `db:"title"`
	Category string    `db:"category"`
	Points   float64   `db:"points"`
	Weight   float64   `db:"weight"`
	DueDate  core.Date `db:"due_date"`
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `INSERT INTO assignment (title, category, points, weight, due_date)
		VALUES (:title, :category, :points, :weight, :due_date)`
	id, err := insertReturningID(ctx, repo.db, q, assignmentRow(a))
	if err != nil {
		return assignment.Assignment{}, wrapErr(err, "inserting assignment")
	}
	a.ID = id
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(
	ctx context.Context,
	filter *assignment.QueryFilter,
	ordering []core.DBOrdering,
) ([]assignment.Assignment, error) {
	w := new(where)
	if filter != nil {
		if filter.Search != "" {
			w.add(`title ILIKE $%[1]d`, likePattern(filter.Search))
		}
		if filter.Category != "" {
			w.add(`LOWER(category) = LOWER($%[1]d)`, filter.Category)
		}
	}
	q := "SELECT " + assignmentColumns + " FROM assignment" + w.String() + orderBy(ordering, assignmentOrderColumns)

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, wrapErr(err, "selecting assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, assignment.Assignment(r))
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	var row assignmentRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+assignmentColumns+" FROM assignment WHERE id = $1", id)
	if err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound)
	}
	return assignment.Assignment(row), nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `UPDATE assignment SET title = :title, category = :category, points = :points, weight = :weight,
		due_date = :due_date WHERE id = :id`
	if err := updateByID(ctx, repo.db, q, assignmentRow(a), assignment.ErrNotFound); err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...int) (int, error) {
	n, err := deleteByID(ctx, repo.db, "assignment", ids)
	return n, wrapErr(err, "deleting assignments")
}
