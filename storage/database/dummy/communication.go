package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/communication"
)

type communicationRepository struct {
	db *DB
}

var _ communication.Repository = (*communicationRepository)(nil) // interface compliance check

func NewCommunicationRepository(db *DB) communication.Repository {
	return &communicationRepository{db: db}
}

func (repo *communicationRepository) query() []communication.Communication {
	tbl := repo.db.communication
	ids := make([]int, 0, len(tbl.table))
	for id := range tbl.table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	comms := make([]communication.Communication, 0, len(ids))
	for _, id := range ids {
		comms = append(comms, *tbl.table[id])
	}
	return comms
}

func (repo *communicationRepository) CreateCommunication(_ context.Context, c communication.Communication) (communication.Communication, error) {
	tbl := repo.db.communication
	tbl.Lock()
	defer tbl.Unlock()

	tbl.pkCount++
	c.ID = tbl.pkCount
	tbl.table[c.ID] = &c
	return c, nil
}

func (repo *communicationRepository) QueryCommunications(
	_ context.Context,
	filter *communication.QueryFilter,
	ordering []core.DBOrdering,
) ([]communication.Communication, error) {
	repo.db.communication.RLock()
	defer repo.db.communication.RUnlock()

	var comms []communication.Communication
	for _, c := range repo.query() {
		if filter.Match(c) {
			comms = append(comms, c)
		}
	}

	sort.SliceStable(comms, orderedLess(ordering, func(field string, i, j int) (int, bool) {
		a, b := comms[i], comms[j]
		switch field {
		case "id":
			return cmpInt(a.ID, b.ID), true
		case "studentId":
			return cmpInt(a.StudentID, b.StudentID), true
		case "date":
			return cmpTime(a.Date, b.Date), true
		case "type":
			return cmpString(a.Type, b.Type), true
		case "subject":
			return cmpString(a.Subject, b.Subject), true
		}
		return 0, false
	}))
	return comms, nil
}

func (repo *communicationRepository) GetCommunication(_ context.Context, id int) (communication.Communication, error) {
	repo.db.communication.RLock()
	defer repo.db.communication.RUnlock()

	if c, ok := repo.db.communication.table[id]; ok {
		return *c, nil
	}
	return communication.Communication{}, communication.ErrNotFound
}

func (repo *communicationRepository) UpdateCommunication(_ context.Context, c communication.Communication) (communication.Communication, error) {
	tbl := repo.db.communication
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[c.ID]; !ok {
		return communication.Communication{}, communication.ErrNotFound
	}
	tbl.table[c.ID] = &c
	return c, nil
}

func (repo *communicationRepository) DeleteCommunicationsByID(_ context.Context, ids ...int) (int, error) {
	tbl := repo.db.communication
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
