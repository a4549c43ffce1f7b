// Package storage opens the repositories of the configured storage engine.
package storage

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/storage/database"
	"github.com/trezcool/classtrack/storage/database/dummy"
	"github.com/trezcool/classtrack/storage/database/sqlx"
)

type Repositories struct {
	DB *sqlx.DB // nil with the memory engine

	Students       student.Repository
	Assignments    assignment.Repository
	Grades         grade.Repository
	Attendance     attendance.Repository
	Communications communication.Repository
}

// Open connects the repositories of conf.Storage. With Postgres, the database is created
// when missing and migrated when migrate is set.
func Open(conf *core.Config, migrate bool) (*Repositories, error) {
	switch conf.Storage {
	case core.StorageMemory, "":
		db := dummydb.Open()
		return &Repositories{
			Students:       dummydb.NewStudentRepository(db),
			Assignments:    dummydb.NewAssignmentRepository(db),
			Grades:         dummydb.NewGradeRepository(db),
			Attendance:     dummydb.NewAttendanceRepository(db),
			Communications: dummydb.NewCommunicationRepository(db),
		}, nil

	case core.StoragePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = database.Migrate(db.DB); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Repositories{
			DB:             db,
			Students:       sqlxrepos.NewStudentRepository(db),
			Assignments:    sqlxrepos.NewAssignmentRepository(db),
			Grades:         sqlxrepos.NewGradeRepository(db),
			Attendance:     sqlxrepos.NewAttendanceRepository(db),
			Communications: sqlxrepos.NewCommunicationRepository(db),
		}, nil

	default:
		return nil, errors.Errorf("unknown storage engine %q", conf.Storage)
	}
}

func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
