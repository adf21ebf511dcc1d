// Package postgres implements the project and issue stores on PostgreSQL
// through sqlx and the pgx stdlib driver.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store owns the database handle shared by both repositories.
type Store struct {
	db *sqlx.DB
}

// Connect opens and pings a pgx-backed sqlx handle for databaseURL.
func Connect(ctx context.Context, databaseURL string, pool PoolConfig) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return New(db), nil
}

// New wraps an existing handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Projects returns the project repository backed by s.
func (s *Store) Projects() *ProjectRepository { return NewProjectRepository(s.db) }

// Issues returns the issue repository backed by s.
func (s *Store) Issues() *IssueRepository { return NewIssueRepository(s.db) }

// EnsureSchema creates the projects and issues tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
