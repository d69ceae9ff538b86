// Package store persists the club registry and reconciliation run history.
package store

import (
	"context"

	"github.com/ponyclubs/clubsync/internal/model"
)

// Store defines the persistence interface for the club registry.
type Store interface {
	// Clubs. ListClubs returns clubs ordered by name so matching runs are
	// stable across invocations.
	ListClubs(ctx context.Context) ([]model.Club, error)
	GetClub(ctx context.Context, id string) (*model.Club, error)
	UpsertClub(ctx context.Context, club *model.Club) error
	UpdateClubContact(ctx context.Context, id string, patch model.ClubPatch) error

	// Run history.
	RecordRun(ctx context.Context, run *model.ReconcileRun) error
	ListRuns(ctx context.Context, limit int) ([]model.ReconcileRun, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
