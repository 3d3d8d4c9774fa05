package kv

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const kvTable = "kv_entries"

// PgxIface is the subset of *pgxpool.Pool the postgres backend needs.
type PgxIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresBackend stores entries in the kv_entries table created by the
// database migrations.
type PostgresBackend struct {
	db PgxIface
	sb sq.StatementBuilderType
}

func NewPostgresBackend(db PgxIface) *PostgresBackend {
	return &PostgresBackend{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (b *PostgresBackend) ForDevice(deviceID uuid.UUID) Store {
	return &postgresStore{backend: b, deviceID: deviceID}
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

func (b *PostgresBackend) Close() error {
	b.db.Close()
	return nil
}

type postgresStore struct {
	backend  *PostgresBackend
	deviceID uuid.UUID
}

func (s *postgresStore) where(key string) sq.And {
	return sq.And{sq.Eq{"device_id": s.deviceID}, sq.Eq{"key": key}}
}

func (s *postgresStore) Get(ctx context.Context, key string) (string, error) {
	query, args, err := s.backend.sb.
		Select("value").
		From(kvTable).
		Where(s.where(key)).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select: %w", err)
	}

	var value string
	if err := s.backend.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select %q: %w", key, err)
	}
	return value, nil
}

func (s *postgresStore) Set(ctx context.Context, key, value string) error {
	query, args, err := s.backend.sb.
		Insert(kvTable).
		Columns("device_id", "key", "value").
		Values(s.deviceID, key, value).
		Suffix("ON CONFLICT (device_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.backend.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

func (s *postgresStore) Remove(ctx context.Context, key string) error {
	query, args, err := s.backend.sb.
		Delete(kvTable).
		Where(s.where(key)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := s.backend.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
