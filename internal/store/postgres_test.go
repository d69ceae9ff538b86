package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponyclubs/clubsync/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func clubRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "address", "phone", "email", "website",
		"logo_url", "contact_person", "contact_role", "zone", "created_at", "updated_at",
	})
}

func TestPostgresStore_ListClubs(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM clubs ORDER BY name`).
		WillReturnRows(clubRows().
			AddRow("c1", "Alpha Pony Club", "", "", "", "", "", "", "", "North", now, now).
			AddRow("c2", "Zeta Pony Club", "", "", "", "", "", "", "", "South", now, now))

	clubs, err := s.ListClubs(context.Background())
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "Alpha Pony Club", clubs[0].Name)
	assert.Equal(t, "South", clubs[1].Zone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetClub_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM clubs WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetClub(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateClubContact(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE clubs SET address = \$1, phone = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs("12 River Rd", "0400000000", pgxmock.AnyArg(), "c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateClubContact(context.Background(), "c1",
		model.ClubPatch{Address: "12 River Rd", Phone: "0400000000"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateClubContact_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE clubs SET phone = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("0400000000", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateClubContact(context.Background(), "missing", model.ClubPatch{Phone: "0400000000"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO reconcile_runs`).
		WithArgs(pgxmock.AnyArg(), model.ModePreview, 5, 2, 1, 1, 0, 1, 0, 0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordRun(context.Background(), &model.ReconcileRun{
		Mode:           model.ModePreview,
		TotalExtracted: 5,
		ExactCount:     2,
		HighCount:      1,
		MediumCount:    1,
		NoneCount:      1,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
