// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already-open database without running migrations.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) SetSetting(ctx context.Context, setting *model.Setting) error {
	return querySetSetting(ctx, s.db, setting)
}

func (s *PostgresStore) GetSetting(ctx context.Context, domain, key string) (*model.Setting, error) {
	return queryGetSetting(ctx, s.db, domain, key)
}

func (s *PostgresStore) ListSettings(ctx context.Context, domain string) ([]*model.Setting, error) {
	return queryListSettings(ctx, s.db, domain)
}

func (s *PostgresStore) ListAllSettings(ctx context.Context) ([]*model.Setting, error) {
	return queryListAllSettings(ctx, s.db)
}

func (s *PostgresStore) DeleteSetting(ctx context.Context, domain, key string) error {
	return queryDeleteSetting(ctx, s.db, domain, key)
}

func (s *PostgresStore) UpsertContent(ctx context.Context, rec *model.ContentRecord) error {
	return queryUpsertContent(ctx, s.db, rec)
}

func (s *PostgresStore) GetContent(ctx context.Context, pageKey string) (*model.ContentRecord, error) {
	return queryGetContent(ctx, s.db, pageKey)
}

func (s *PostgresStore) ListContent(ctx context.Context) ([]*model.ContentRecord, error) {
	return queryListContent(ctx, s.db)
}

func (s *PostgresStore) DeleteContent(ctx context.Context, pageKey string) error {
	return queryDeleteContent(ctx, s.db, pageKey)
}

func (s *PostgresStore) UpsertPost(ctx context.Context, post *model.Post) error {
	return queryUpsertPost(ctx, s.db, post)
}

func (s *PostgresStore) GetPost(ctx context.Context, domain model.PostDomain, slug string) (*model.Post, error) {
	return queryGetPost(ctx, s.db, domain, slug)
}

func (s *PostgresStore) ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	return queryListPosts(ctx, s.db, filter)
}

func (s *PostgresStore) DeletePost(ctx context.Context, domain model.PostDomain, slug string) error {
	return queryDeletePost(ctx, s.db, domain, slug)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) SetSetting(ctx context.Context, setting *model.Setting) error {
	return querySetSetting(ctx, s.tx, setting)
}

func (s *txStore) GetSetting(ctx context.Context, domain, key string) (*model.Setting, error) {
	return queryGetSetting(ctx, s.tx, domain, key)
}

func (s *txStore) ListSettings(ctx context.Context, domain string) ([]*model.Setting, error) {
	return queryListSettings(ctx, s.tx, domain)
}

func (s *txStore) ListAllSettings(ctx context.Context) ([]*model.Setting, error) {
	return queryListAllSettings(ctx, s.tx)
}

func (s *txStore) DeleteSetting(ctx context.Context, domain, key string) error {
	return queryDeleteSetting(ctx, s.tx, domain, key)
}

func (s *txStore) UpsertContent(ctx context.Context, rec *model.ContentRecord) error {
	return queryUpsertContent(ctx, s.tx, rec)
}

func (s *txStore) GetContent(ctx context.Context, pageKey string) (*model.ContentRecord, error) {
	return queryGetContent(ctx, s.tx, pageKey)
}

func (s *txStore) ListContent(ctx context.Context) ([]*model.ContentRecord, error) {
	return queryListContent(ctx, s.tx)
}

func (s *txStore) DeleteContent(ctx context.Context, pageKey string) error {
	return queryDeleteContent(ctx, s.tx, pageKey)
}

func (s *txStore) UpsertPost(ctx context.Context, post *model.Post) error {
	return queryUpsertPost(ctx, s.tx, post)
}

func (s *txStore) GetPost(ctx context.Context, domain model.PostDomain, slug string) (*model.Post, error) {
	return queryGetPost(ctx, s.tx, domain, slug)
}

func (s *txStore) ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	return queryListPosts(ctx, s.tx, filter)
}

func (s *txStore) DeletePost(ctx context.Context, domain model.PostDomain, slug string) error {
	return queryDeletePost(ctx, s.tx, domain, slug)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
