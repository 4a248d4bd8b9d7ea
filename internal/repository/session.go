package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citeshelf/citeshelf/internal/store"
)

// querier is the subset of pgx shared by connections and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Session holds one pooled connection. It is not safe for concurrent use;
// each request gets its own.
type Session struct {
	mu   sync.Mutex
	conn *pgxpool.Conn
}

var _ store.Session = (*Session)(nil)

func newSession(conn *pgxpool.Conn) *Session {
	return &Session{conn: conn}
}

// Close returns the connection to the pool. Further calls are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
}

func (s *Session) db() (*pgxpool.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, store.ErrSessionClosed
	}
	return s.conn, nil
}

// inTx runs fn inside a transaction on the session's connection.
func (s *Session) inTx(ctx context.Context, fn func(q querier) error) error {
	conn, err := s.db()
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		return fn(tx)
	})
}
