package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) query() []attendance.Record {
	tbl := repo.db.attendance
	ids := make([]int, 0, len(tbl.table))
	for id := range tbl.table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	records := make([]attendance.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, *tbl.table[id])
	}
	return records
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, r attendance.Record) (attendance.Record, error) {
	tbl := repo.db.attendance
	tbl.Lock()
	defer tbl.Unlock()

	tbl.pkCount++
	r.ID = tbl.pkCount
	tbl.table[r.ID] = &r
	return r, nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Record, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	var records []attendance.Record
	for _, r := range repo.query() {
		if filter.Match(r) {
			records = append(records, r)
		}
	}

	sort.SliceStable(records, orderedLess(ordering, func(field string, i, j int) (int, bool) {
		a, b := records[i], records[j]
		switch field {
		case "id":
			return cmpInt(a.ID, b.ID), true
		case "studentId":
			return cmpInt(a.StudentID, b.StudentID), true
		case "date":
			return cmpTime(a.Date.Time, b.Date.Time), true
		case "status":
			return cmpString(a.Status, b.Status), true
		}
		return 0, false
	}))
	return records, nil
}

func (repo *attendanceRepository) UpsertRecord(_ context.Context, r attendance.Record) (attendance.Record, bool, error) {
	tbl := repo.db.attendance
	tbl.Lock()
	defer tbl.Unlock()

	var existing *attendance.Record
	for _, stored := range tbl.table {
		if stored.StudentID == r.StudentID && stored.Date.Equal(r.Date) && (existing == nil || stored.ID < existing.ID) {
			existing = stored
		}
	}
	if existing != nil {
		updated := *existing
		updated.Status = r.Status
		updated.Notes = r.Notes
		tbl.table[updated.ID] = &updated
		return updated, false, nil
	}

	tbl.pkCount++
	r.ID = tbl.pkCount
	stored := r
	tbl.table[r.ID] = &stored
	return r, true, nil
}

func (repo *attendanceRepository) GetRecord(_ context.Context, id int) (attendance.Record, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	if r, ok := repo.db.attendance.table[id]; ok {
		return *r, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpdateRecord(_ context.Context, r attendance.Record) (attendance.Record, error) {
	tbl := repo.db.attendance
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[r.ID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	tbl.table[r.ID] = &r
	return r, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(_ context.Context, ids ...int) (int, error) {
	tbl := repo.db.attendance
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
