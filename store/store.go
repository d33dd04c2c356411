package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/lib/pq"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is a Store backed by Postgres and has in-process locks
type PostgresStore struct {
	DB *sql.DB

	// per-user mutexes to avoid concurrent goroutines in this process
	// racing on the same cart. Keys are user_id -> *sync.Mutex
	locks sync.Map
}

func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

func (s *PostgresStore) Products() ProductStore    { return productRepo{q: s.DB} }
func (s *PostgresStore) Categories() CategoryStore { return categoryRepo{q: s.DB} }
func (s *PostgresStore) Cart() CartStore           { return cartRepo{q: s.DB} }
func (s *PostgresStore) Orders() OrderStore        { return orderRepo{q: s.DB} }

// helper: acquire per-user lock (process-local). Returns unlock func.
func (s *PostgresStore) lockForUser(userID string) func() {
	if v, ok := s.locks.Load(userID); ok {
		m := v.(*sync.Mutex)
		m.Lock()
		return m.Unlock
	}

	// Otherwise create and store a new mutex (race-safe via LoadOrStore)
	actual, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	m := actual.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Do runs fn inside one database transaction. Rows read through the Tx stores
// are locked FOR UPDATE until commit or rollback.
func (s *PostgresStore) Do(ctx context.Context, userID string, fn func(tx Tx) error) error {
	unlock := s.lockForUser(userID)
	defer unlock()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// ensure rollback on any early return
	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommit, err)
	}
	done = true
	return nil
}

type pgTx struct{ tx *sql.Tx }

func (t pgTx) Products() ProductStore { return productRepo{q: t.tx, lock: true} }
func (t pgTx) Cart() CartStore        { return cartRepo{q: t.tx, lock: true} }
func (t pgTx) Orders() OrderStore     { return orderRepo{q: t.tx} }

// translate maps driver errors onto the package sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", what, ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: referenced row missing: %w", what, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
