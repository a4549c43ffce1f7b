package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/student"
)

const studentColumns = `id, first_name, last_name, email, phone, grade_level, date_enrolled, status,
	parent_name, parent_email, parent_phone`

var studentOrderColumns = map[string]string{
	"id":           "id",
	"firstName":    "first_name",
	"lastName":     "last_name",
	"email":        "email",
	"gradeLevel":   gradeLevelRankExpr(),
	"status":       "status",
	"dateEnrolled": "date_enrolled",
}

// gradeLevelRankExpr sorts grade levels in school order rather than alphabetically.
func gradeLevelRankExpr() string {
	levels := make([]string, 0, len(core.GradeLevels))
	for _, l := range core.GradeLevels {
		levels = append(levels, "'"+l+"'")
	}
	return "array_position(ARRAY[" + strings.Join(levels, ",") + "]::varchar[], grade_level)"
}

type studentRow struct {
	ID           int       `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	GradeLevel   string    `db:"grade_level"`
	DateEnrolled core.Date `db:"date_enrolled"`
	Status       string    `db:"status"`
	ParentName   string    `db:"parent_name"`
	ParentEmail  string    `db:"parent_email"`
	ParentPhone  string    `db:"parent_phone"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student(r)
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO student (first_name, last_name, email, phone, grade_level, date_enrolled, status,
		parent_name, parent_email, parent_phone)
		VALUES (:first_name, :last_name, :email, :phone, :grade_level, :date_enrolled, :status,
		:parent_name, :parent_email, :parent_phone)`
	id, err := insertReturningID(ctx, repo.db, q, studentRow(s))
	if err != nil {
		return student.Student{}, wrapErr(err, "inserting student")
	}
	s.ID = id
	return s, nil
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter *student.QueryFilter,
	ordering []core.DBOrdering,
) ([]student.Student, error) {
	w := new(where)
	if filter != nil {
		if filter.Search != "" {
			w.add(`(first_name || ' ' || last_name ILIKE $%[1]d OR email ILIKE $%[1]d OR grade_level ILIKE $%[1]d)`,
				likePattern(filter.Search))
		}
		if filter.Status != "" {
			w.add(`LOWER(status) = LOWER($%[1]d)`, filter.Status)
		}
		if filter.GradeLevel != "" {
			w.add(`grade_level = $%[1]d`, filter.GradeLevel)
		}
	}
	q := "SELECT " + studentColumns + " FROM student" + w.String() + orderBy(ordering, studentOrderColumns)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, wrapErr(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+studentColumns+" FROM student WHERE id = $1", id)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `UPDATE student SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
		grade_level = :grade_level, date_enrolled = :date_enrolled, status = :status,
		parent_name = :parent_name, parent_email = :parent_email, parent_phone = :parent_phone
		WHERE id = :id`
	if err := updateByID(ctx, repo.db, q, studentRow(s), student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

// DeleteStudentsByID relies on ON DELETE CASCADE for the students' records.
func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...int) (int, error) {
	n, err := deleteByID(ctx, repo.db, "student", ids)
	return n, wrapErr(err, "deleting students")
}
