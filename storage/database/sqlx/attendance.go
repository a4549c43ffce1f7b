package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
)

const attendanceColumns = "id, student_id, date, status, notes"

var attendanceOrderColumns = map[string]string{
	"id":        "id",
	"studentId": "student_id",
	"date":      "date",
	"status":    "status",
}

type attendanceRow struct {
	ID        int       `db:"id"`
	StudentID int       `db:"student_id"`
	Date      core.Date `db:"date"`
	Status    string    `db:"status"`
	Notes     string    `db:"notes"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	q := `INSERT INTO attendance (student_id, date, status, notes) VALUES (:student_id, :date, :status, :notes)`
	id, err := insertReturningID(ctx, repo.db, q, attendanceRow(r))
	if err != nil {
		return attendance.Record{}, wrapErr(err, "inserting attendance record")
	}
	r.ID = id
	return r, nil
}

func (repo *attendanceRepository) QueryRecords(
	ctx context.Context,
	filter *attendance.QueryFilter,
	ordering []core.DBOrdering,
) ([]attendance.Record, error) {
	w := new(where)
	if filter != nil {
		if filter.StudentID != 0 {
			w.add(`student_id = $%[1]d`, filter.StudentID)
		}
		if !filter.Date.IsZero() {
			w.add(`date = $%[1]d`, filter.Date)
		}
		if !filter.From.IsZero() {
			w.add(`date >= $%[1]d`, filter.From)
		}
		if !filter.To.IsZero() {
			w.add(`date <= $%[1]d`, filter.To)
		}
		if filter.Status != "" {
			w.add(`status = $%[1]d`, filter.Status)
		}
	}
	q := "SELECT " + attendanceColumns + " FROM attendance" + w.String() + orderBy(ordering, attendanceOrderColumns)

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, wrapErr(err, "selecting attendance records")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, attendance.Record(r))
	}
	return records, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id int) (attendance.Record, error) {
	var row attendanceRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+attendanceColumns+" FROM attendance WHERE id = $1", id); err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrNotFound)
	}
	return attendance.Record(row), nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	q := `UPDATE attendance SET student_id = :student_id, date = :date, status = :status, notes = :notes WHERE id = :id`
	if err := updateByID(ctx, repo.db, q, attendanceRow(r), attendance.ErrNotFound); err != nil {
		return attendance.Record{}, err
	}
	return r, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, r attendance.Record) (attendance.Record, bool, error) {
	q := `INSERT INTO attendance (student_id, date, status, notes) VALUES (:student_id, :date, :status, :notes)
		ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes`
	id, created, err := upsertReturningID(ctx, repo.db, q, attendanceRow(r))
	if err != nil {
		return attendance.Record{}, false, wrapErr(err, "upserting attendance record")
	}
	r.ID = id
	return r, created, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(ctx context.Context, ids ...int) (int, error) {
	n, err := deleteByID(ctx, repo.db, "attendance", ids)
	return n, wrapErr(err, "deleting attendance records")
}
