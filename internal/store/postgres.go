package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ponyclubs/clubsync/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS clubs (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	address        TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	website        TEXT NOT NULL DEFAULT '',
	logo_url       TEXT NOT NULL DEFAULT '',
	contact_person TEXT NOT NULL DEFAULT '',
	contact_role   TEXT NOT NULL DEFAULT '',
	zone           TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reconcile_runs (
	id              TEXT PRIMARY KEY,
	mode            TEXT NOT NULL,
	total_extracted INTEGER NOT NULL DEFAULT 0,
	exact_count     INTEGER NOT NULL DEFAULT 0,
	high_count      INTEGER NOT NULL DEFAULT 0,
	medium_count    INTEGER NOT NULL DEFAULT 0,
	low_count       INTEGER NOT NULL DEFAULT 0,
	none_count      INTEGER NOT NULL DEFAULT 0,
	applied_count   INTEGER NOT NULL DEFAULT 0,
	skipped_count   INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_clubs_name ON clubs(name);
CREATE INDEX IF NOT EXISTS idx_reconcile_runs_created_at ON reconcile_runs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListClubs(ctx context.Context) ([]model.Club, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+clubColumns+` FROM clubs ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list clubs")
	}
	defer rows.Close()

	var clubs []model.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan club")
		}
		clubs = append(clubs, *c)
	}
	return clubs, eris.Wrap(rows.Err(), "postgres: list clubs")
}

func (s *PostgresStore) GetClub(ctx context.Context, id string) (*model.Club, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id)
	c, err := scanClub(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get club")
	}
	return c, nil
}

func (s *PostgresStore) UpsertClub(ctx context.Context, club *model.Club) error {
	if club.ID == "" {
		club.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if club.CreatedAt.IsZero() {
		club.CreatedAt = now
	}
	club.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO clubs (`+clubColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			phone = excluded.phone,
			email = excluded.email,
			website = excluded.website,
			logo_url = excluded.logo_url,
			contact_person = excluded.contact_person,
			contact_role = excluded.contact_role,
			zone = excluded.zone,
			updated_at = excluded.updated_at`,
		club.ID, club.Name, club.Address, club.Phone, club.Email, club.Website,
		club.LogoURL, club.ContactPerson, club.ContactRole, club.Zone,
		club.CreatedAt, club.UpdatedAt)
	return eris.Wrap(err, "postgres: upsert club")
}

func (s *PostgresStore) UpdateClubContact(ctx context.Context, id string, patch model.ClubPatch) error {
	clauses, args := patchAssignments(patch, func(i int) string {
		return "$" + strconv.Itoa(i)
	})
	clauses = append(clauses, "updated_at = $"+strconv.Itoa(len(args)+1))
	args = append(args, time.Now().UTC())
	args = append(args, id)

	tag, err := s.pool.Exec(ctx,
		`UPDATE clubs SET `+strings.Join(clauses, ", ")+` WHERE id = $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return eris.Wrap(err, "postgres: update club contact")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "club %s", id)
	}
	return nil
}

func (s *PostgresStore) RecordRun(ctx context.Context, run *model.ReconcileRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reconcile_runs
			(id, mode, total_extracted, exact_count, high_count, medium_count,
			 low_count, none_count, applied_count, skipped_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.Mode, run.TotalExtracted, run.ExactCount, run.HighCount,
		run.MediumCount, run.LowCount, run.NoneCount, run.AppliedCount,
		run.SkippedCount, run.CreatedAt)
	return eris.Wrap(err, "postgres: record run")
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.ReconcileRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, mode, total_extracted, exact_count, high_count, medium_count,
		       low_count, none_count, applied_count, skipped_count, created_at
		FROM reconcile_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ReconcileRun
	for rows.Next() {
		var r model.ReconcileRun
		if err := rows.Scan(&r.ID, &r.Mode, &r.TotalExtracted, &r.ExactCount,
			&r.HighCount, &r.MediumCount, &r.LowCount, &r.NoneCount,
			&r.AppliedCount, &r.SkippedCount, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}
