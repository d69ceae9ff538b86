package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ponyclubs/clubsync/internal/model"
)

// ErrNotFound is returned when a club id does not exist in the registry.
var ErrNotFound = eris.New("store: not found")

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
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
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_clubs_name ON clubs(name);
CREATE INDEX IF NOT EXISTS idx_reconcile_runs_created_at ON reconcile_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const clubColumns = `id, name, address, phone, email, website, logo_url, contact_person, contact_role, zone, created_at, updated_at`

func scanClub(row interface{ Scan(...any) error }) (*model.Club, error) {
	var c model.Club
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.Website,
		&c.LogoURL, &c.ContactPerson, &c.ContactRole, &c.Zone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) ListClubs(ctx context.Context) ([]model.Club, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clubColumns+` FROM clubs ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list clubs")
	}
	defer rows.Close()

	var clubs []model.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan club")
		}
		clubs = append(clubs, *c)
	}
	return clubs, eris.Wrap(rows.Err(), "sqlite: list clubs")
}

func (s *SQLiteStore) GetClub(ctx context.Context, id string) (*model.Club, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = ?`, id)
	c, err := scanClub(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get club")
	}
	return c, nil
}

func (s *SQLiteStore) UpsertClub(ctx context.Context, club *model.Club) error {
	if club.ID == "" {
		club.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if club.CreatedAt.IsZero() {
		club.CreatedAt = now
	}
	club.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clubs (`+clubColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
	return eris.Wrap(err, "sqlite: upsert club")
}

// patchAssignments builds the SET clause for the non-empty patch fields.
// The placeholder verb is "?" for sqlite and "$n" offsets for postgres.
func patchAssignments(patch model.ClubPatch, placeholder func(i int) string) (clauses []string, args []any) {
	add := func(col, val string) {
		if val == "" {
			return
		}
		clauses = append(clauses, fmt.Sprintf("%s = %s", col, placeholder(len(args)+1)))
		args = append(args, val)
	}
	add("address", patch.Address)
	add("phone", patch.Phone)
	add("email", patch.Email)
	add("website", patch.Website)
	add("logo_url", patch.LogoURL)
	add("contact_person", patch.ContactPerson)
	add("contact_role", patch.ContactRole)
	return clauses, args
}

func (s *SQLiteStore) UpdateClubContact(ctx context.Context, id string, patch model.ClubPatch) error {
	clauses, args := patchAssignments(patch, func(int) string { return "?" })
	clauses = append(clauses, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE clubs SET `+strings.Join(clauses, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return eris.Wrap(err, "sqlite: update club contact")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "club %s", id)
	}
	return nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run *model.ReconcileRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reconcile_runs
			(id, mode, total_extracted, exact_count, high_count, medium_count,
			 low_count, none_count, applied_count, skipped_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.TotalExtracted, run.ExactCount, run.HighCount,
		run.MediumCount, run.LowCount, run.NoneCount, run.AppliedCount,
		run.SkippedCount, run.CreatedAt)
	return eris.Wrap(err, "sqlite: record run")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.ReconcileRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, total_extracted, exact_count, high_count, medium_count,
		       low_count, none_count, applied_count, skipped_count, created_at
		FROM reconcile_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ReconcileRun
	for rows.Next() {
		var r model.ReconcileRun
		if err := rows.Scan(&r.ID, &r.Mode, &r.TotalExtracted, &r.ExactCount,
			&r.HighCount, &r.MediumCount, &r.LowCount, &r.NoneCount,
			&r.AppliedCount, &r.SkippedCount, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}
