package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/fastapi1403/building-management/internal/utils"
)

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	DB
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PgStore is the Postgres-backed Store.
type PgStore struct {
	db TxBeginner
}

func NewPgStore(db TxBeginner) *PgStore {
	return &PgStore{db: db}
}

// NewRepos binds every repository to db, which may be a pool or a transaction.
func NewRepos(db DB) Repos {
	return Repos{
		Buildings: NewBuildingRepository(db),
		Floors:    NewFloorRepository(db),
		Units:     NewUnitRepository(db),
		Owners:    NewOwnerRepository(db),
		Tenants:   NewTenantRepository(db),
		Audit:     NewAuditLogRepository(db),
	}
}

func (s *PgStore) Repos() Repos { return NewRepos(s.db) }

func (s *PgStore) WithTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return ClassifyError("begin", err)
	}
	defer func() {
		if rbErr := tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			utils.Logger.WithError(rbErr).Warn("Transaction rollback failed")
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	return ClassifyError("commit", tx.Commit(ctx))
}
