package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/communication"
)

const communicationColumns = "id, student_id, type, subject, notes, date"

var communicationOrderColumns = map[string]string{
	"id":        "id",
	"studentId": "student_id",
	"date":      "date",
	"type":      "type",
	"subject":   "subject",
}

type communicationRow struct {
	ID        int       `db:"id"`
	StudentID int       `db:"student_id"`
	Type      string    `db:"type"`
	Subject   string    `db:"subject"`
	Notes     string    `db:"notes"`
	Date      time.Time `db:"date"`
}

type communicationRepository struct {
	db *sqlx.DB
}

var _ communication.Repository = (*communicationRepository)(nil) // interface compliance check

func NewCommunicationRepository(db *sqlx.DB) communication.Repository {
	return &communicationRepository{db: db}
}

func (repo *communicationRepository) CreateCommunication(
	ctx context.Context,
	c communication.Communication,
) (communication.Communication, error) {
	q := `INSERT INTO communication (student_id, type, subject, notes, date)
		VALUES (:student_id, :type, :subject, :notes, :date)`
	id, err := insertReturningID(ctx, repo.db, q, communicationRow(c))
	if err != nil {
		return communication.Communication{}, wrapErr(err, "inserting communication")
	}
	c.ID = id
	return c, nil
}

func (repo *communicationRepository) QueryCommunications(
	ctx context.Context,
	filter *communication.QueryFilter,
	ordering []core.DBOrdering,
) ([]communication.Communication, error) {
	w := new(where)
	if filter != nil {
		if filter.StudentID != 0 {
			w.add(`student_id = $%[1]d`, filter.StudentID)
		}
		if filter.Type != "" {
			w.add(`type = $%[1]d`, filter.Type)
		}
	}
	q := "SELECT " + communicationColumns + " FROM communication" + w.String() + orderBy(ordering, communicationOrderColumns)

	var rows []communicationRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, wrapErr(err, "selecting communications")
	}
	comms := make([]communication.Communication, 0, len(rows))
	for _, r := range rows {
		r.Date = r.Date.UTC()
		comms = append(comms, communication.Communication(r))
	}
	return comms, nil
}

func (repo *communicationRepository) GetCommunication(ctx context.Context, id int) (communication.Communication, error) {
	var row communicationRow
	q := "SELECT " + communicationColumns + " FROM communication WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return communication.Communication{}, trapNoRowsErr(err, communication.ErrNotFound)
	}
	row.Date = row.Date.UTC()
	return communication.Communication(row), nil
}

func (repo *communicationRepository) UpdateCommunication(
	ctx context.Context,
	c communication.Communication,
) (communication.Communication, error) {
	q := `UPDATE communication SET student_id = :student_id, type = :type, subject = :subject, notes = :notes,
		date = :date WHERE id = :id`
	if err := updateByID(ctx, repo.db, q, communicationRow(c), communication.ErrNotFound); err != nil {
		return communication.Communication{}, err
	}
	return c, nil
}

func (repo *communicationRepository) DeleteCommunicationsByID(ctx context.Context, ids ...int) (int, error) {
	n, err := deleteByID(ctx, repo.db, "communication", ids)
	return n, wrapErr(err, "deleting communications")
}
