package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/orgball2608/giveaway-telegram-bot/internal/migrations"
)

var pgBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresBackend stores documents in the documents table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

var _ Backend = (*PostgresBackend)(nil)

// OpenPostgres applies migrations over database/sql and then opens a pgx pool.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres for migrations: %w", err)
	}
	defer db.Close()

	if err := migrations.Up(db, migrations.DialectPostgres); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) Load(ctx context.Context, name string) ([]byte, error) {
	query, args, err := pgBuilder.
		Select("body").
		From(migrations.DocumentsTable).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var body string
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(body), nil
}

func (p *PostgresBackend) Save(ctx context.Context, name string, data []byte) error {
	query, args, err := upsertDocument(pgBuilder, name, data)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, query, args...)
	return err
}

func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}

// upsertDocument is shared by the SQL backends; both dialects accept
// ON CONFLICT ... DO UPDATE.
func upsertDocument(b sq.StatementBuilderType, name string, data []byte) (string, []interface{}, error) {
	return b.
		Insert(migrations.DocumentsTable).
		Columns("name", "body", "updated_at").
		Values(name, string(data), time.Now().UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at").
		ToSql()
}
