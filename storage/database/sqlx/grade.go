package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/grade"
)

const gradeColumns = "id, student_id, assignment_id, score, submitted_date, comments"

var gradeOrderColumns = map[string]string{
	"id":            "id",
	"studentId":     "student_id",
	"assignmentId":  "assignment_id",
	"submittedDate": "submitted_date",
	"score":         "score",
}

type gradeRow struct {
	ID            int          `db:"id"`
	StudentID     int          `db:"student_id"`
	AssignmentID  int          `db:"assignment_id"`
	Score         null.Float64 `db:"score"`
	SubmittedDate null.Time    `db:"submitted_date"`
	Comments      string       `db:"comments"`
}

func newGradeRow(g grade.Grade) gradeRow {
	return gradeRow{
		ID:            g.ID,
		StudentID:     g.StudentID,
		AssignmentID:  g.AssignmentID,
		Score:         null.Float64FromPtr(g.Score),
		SubmittedDate: null.NewTime(g.SubmittedDate, !g.SubmittedDate.IsZero()),
		Comments:      g.Comments,
	}
}

func (r gradeRow) toGrade() grade.Grade {
	return grade.Grade{
		ID:            r.ID,
		StudentID:     r.StudentID,
		AssignmentID:  r.AssignmentID,
		Score:         r.Score.Ptr(),
		SubmittedDate: r.SubmittedDate.Time.UTC(),
		Comments:      r.Comments,
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := `INSERT INTO grade (student_id, assignment_id, score, submitted_date, comments)
		VALUES (:student_id, :assignment_id, :score, :submitted_date, :comments)`
	id, err := insertReturningID(ctx, repo.db, q, newGradeRow(g))
	if err != nil {
		return grade.Grade{}, wrapErr(err, "inserting grade")
	}
	g.ID = id
	return g, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Grade, error) {
	w := new(where)
	if filter != nil {
		if filter.StudentID != 0 {
			w.add(`student_id = $%[1]d`, filter.StudentID)
		}
		if filter.AssignmentID != 0 {
			w.add(`assignment_id = $%[1]d`, filter.AssignmentID)
		}
		if filter.Graded != nil {
			w.add(`(score IS NOT NULL) = $%[1]d`, *filter.Graded)
		}
	}
	q := "SELECT " + gradeColumns + " FROM grade" + w.String() + orderBy(ordering, gradeOrderColumns)

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, wrapErr(err, "selecting grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.toGrade())
	}
	return grades, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id int) (grade.Grade, error) {
	var row gradeRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+gradeColumns+" FROM grade WHERE id = $1", id); err != nil {
		return grade.Grade{}, trapNoRowsErr(err, grade.ErrNotFound)
	}
	return row.toGrade(), nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := `UPDATE grade SET student_id = :student_id, assignment_id = :assignment_id, score = :score,
		submitted_date = :submitted_date, comments = :comments WHERE id = :id`
	if err := updateByID(ctx, repo.db, q, newGradeRow(g), grade.ErrNotFound); err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo *gradeRepository) UpsertGrade(ctx context.Context, g grade.Grade) (grade.Grade, bool, error) {
	q := `INSERT INTO grade (student_id, assignment_id, score, submitted_date, comments)
		VALUES (:student_id, :assignment_id, :score, :submitted_date, :comments)
		ON CONFLICT (student_id, assignment_id) DO UPDATE
		SET score = EXCLUDED.score, submitted_date = EXCLUDED.submitted_date, comments = EXCLUDED.comments`
	id, created, err := upsertReturningID(ctx, repo.db, q, newGradeRow(g))
	if err != nil {
		return grade.Grade{}, false, wrapErr(err, "upserting grade")
	}
	g.ID = id
	return g, created, nil
}

func (repo *gradeRepository) DeleteGradesByID(ctx context.Context, ids ...int) (int, error) {
	n, err := deleteByID(ctx, repo.db, "grade", ids)
	return n, wrapErr(err, "deleting grades")
}
