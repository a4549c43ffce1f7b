// Package sqlxrepos implements the repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
)

// Postgres codes of a server that went away (admin_shutdown, crash_shutdown, cannot_connect_now).
var lostConnCodes = map[pq.ErrorCode]bool{"57P01": true, "57P02": true, "57P03": true}

func connLost(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && lostConnCodes[pqErr.Code]
}

// wrapErr wraps err with msg. A lost database becomes a core shutdown error so the app can stop cleanly.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if connLost(err) {
		return errors.Wrap(core.NewShutdownError("database connection lost: "+err.Error()), msg)
	}
	return errors.Wrap(err, msg)
}

// trapNoRowsErr maps sql.ErrNoRows to the repository's not found error.
func trapNoRowsErr(err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return wrapErr(err, "selecting row")
}

// where accumulates AND-ed conditions with positional arguments.
// Each condition uses %[1]d for its (single) placeholder index.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func insertReturningID(ctx context.Context, db *sqlx.DB, query string, arg interface{}) (int, error) {
	rows, err := db.NamedQueryContext(ctx, query+" RETURNING id", arg)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var id int
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, rows.Err()
}

// upsertReturningID runs a named INSERT .. ON CONFLICT DO UPDATE and reports whether a row was inserted.
func upsertReturningID(ctx context.Context, db *sqlx.DB, query string, arg interface{}) (id int, created bool, err error) {
	// xmax is 0 on freshly inserted rows
	rows, err := db.NamedQueryContext(ctx, query+" RETURNING id, (xmax = 0) AS created", arg)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rows.Close() }()

	if rows.Next() {
		if err = rows.Scan(&id, &created); err != nil {
			return 0, false, err
		}
	}
	return id, created, rows.Err()
}

// updateByID runs a named UPDATE and reports notFound when no row matched.
func updateByID(ctx context.Context, db *sqlx.DB, query string, arg interface{}, notFound error) error {
	res, err := db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return wrapErr(err, "updating row")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(err, "updating row")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func deleteByID(ctx context.Context, db *sqlx.DB, table string, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// orderBy appends id as the final tie breaker.
func orderBy(ordering []core.DBOrdering, columns map[string]string) string {
	ords := make([]core.DBOrdering, 0, len(ordering)+1)
	ords = append(ords, ordering...)
	ords = append(ords, core.DBOrdering{Field: "id", Ascending: true})
	return " ORDER BY " + core.OrderByClause(ords, columns)
}
