package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type StoreImpl struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func CreateStore(db *sqlx.DB) Store {
	return &StoreImpl{db: db, ext: db}
}

func (s *StoreImpl) Products() ProductRepository {
	return CreateProductRepository(s.ext)
}

func (s *StoreImpl) Images() ImageRepository {
	return CreateImageRepository(s.ext)
}

// HandleTrx runs fn against repositories bound to one transaction. It commits
// when fn returns nil and rolls back on error or panic.
func (s *StoreImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context, store Store) error) (err error) {
	if s.db == nil {
		// already inside a transaction
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(ctx, &StoreImpl{ext: tx})
	return err
}
