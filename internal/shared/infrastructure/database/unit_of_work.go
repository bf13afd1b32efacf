package database

import (
	"context"
	"errors"
)

var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// txScope is the transaction bound to a context. owned marks the unit of
// work that began it; joined units leave commit and rollback to it.
type txScope struct {
	tx    Transaction
	owned bool
}

func scopeFrom(ctx context.Context) (txScope, bool) {
	s, ok := ctx.Value(txKey{}).(txScope)
	return s, ok && s.tx != nil
}

// TxFromContext returns the transaction bound by a unit of work, or nil.
func TxFromContext(ctx context.Context) Transaction {
	s, _ := scopeFrom(ctx)
	return s.tx
}

// ExecutorFromContext runs inside the bound transaction when there is one
// and on conn otherwise. Repositories call it for every statement.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}

// UnitOfWork implements application.UnitOfWork on a Connection. A Begin on
// a context that already carries a transaction joins it, and only the
// outermost unit commits or rolls back.
type UnitOfWork struct {
	conn Connection
}

func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if s, ok := scopeFrom(ctx); ok {
		return context.WithValue(ctx, txKey{}, txScope{tx: s.tx}), nil
	}

	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, txScope{tx: tx, owned: true}), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	return u.finish(ctx, Transaction.Commit)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	return u.finish(ctx, Transaction.Rollback)
}

func (u *UnitOfWork) finish(ctx context.Context, end func(Transaction, context.Context) error) error {
	s, ok := scopeFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !s.owned {
		return nil
	}
	return end(s.tx, ctx)
}
