// Package memory is an in-process Store. Writers are serialized and each
// transaction works on a private copy of the data that replaces the live
// copy only when the transaction function succeeds.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
)

type dataset struct {
	rows  map[models.EntityType]map[uuid.UUID]models.Entity
	audit []*models.AuditLog
}

func newDataset() *dataset {
	d := &dataset{rows: make(map[models.EntityType]map[uuid.UUID]models.Entity, len(models.AllEntityTypes))}
	for _, t := range models.AllEntityTypes {
		d.rows[t] = make(map[uuid.UUID]models.Entity)
	}
	return d
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		rows:  make(map[models.EntityType]map[uuid.UUID]models.Entity, len(d.rows)),
		audit: append([]*models.AuditLog(nil), d.audit...),
	}
	for t, rows := range d.rows {
		cp := make(map[uuid.UUID]models.Entity, len(rows))
		for id, e := range rows {
			cp[id] = e.Clone()
		}
		c.rows[t] = cp
	}
	return c
}

// session decides which dataset an operation sees and how it is locked.
type session interface {
	read(ctx context.Context, fn func(*dataset) error) error
	write(ctx context.Context, fn func(*dataset) error) error
}

type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	data    *dataset
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) Repos() repositories.Repos {
	return newRepos(autoSession{s: s})
}

func (s *Store) WithTx(ctx context.Context, fn func(repositories.Repos) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(newRepos(txSession{data: work})); err != nil {
		return err
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func newRepos(sess session) repositories.Repos {
	return repositories.Repos{
		Buildings: newTableRepo[*models.Building](models.EntityBuilding, sess),
		Floors:    newTableRepo[*models.Floor](models.EntityFloor, sess),
		Units:     &unitRepo{tableRepo: newTableRepo[*models.Unit](models.EntityUnit, sess)},
		Owners:    newTableRepo[*models.Owner](models.EntityOwner, sess),
		Tenants:   newTableRepo[*models.Tenant](models.EntityTenant, sess),
		Audit:     &auditRepo{sess: sess},
	}
}

// autoSession applies each operation directly to the committed data.
type autoSession struct {
	s *Store
}

func (a autoSession) read(ctx context.Context, fn func(*dataset) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return fn(a.s.data)
}

func (a autoSession) write(ctx context.Context, fn func(*dataset) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	a.s.writeMu.Lock()
	defer a.s.writeMu.Unlock()
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.data)
}

// txSession works on the private copy owned by one WithTx call.
type txSession struct {
	data *dataset
}

func (t txSession) read(ctx context.Context, fn func(*dataset) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return fn(t.data)
}

func (t txSession) write(ctx context.Context, fn func(*dataset) error) error {
	return t.read(ctx, fn)
}

func ctxErr(ctx context.Context) error {
	return repositories.ClassifyError("memory store", ctx.Err())
}
