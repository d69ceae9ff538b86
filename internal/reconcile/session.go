package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ponyclubs/clubsync/internal/model"
	"github.com/ponyclubs/clubsync/internal/sessionlog"
	"github.com/ponyclubs/clubsync/internal/store"
)

// PreviewResult holds the outcome of a read-only reconciliation run.
type PreviewResult struct {
	Matches []model.MatchCandidate      `json:"matches"`
	Summary model.ReconciliationSummary `json:"summary"`
}

// ApplyResult extends PreviewResult with the apply-mode counters.
type ApplyResult struct {
	PreviewResult
	AppliedCount int `json:"applied_count"`
	SkippedCount int `json:"skipped_count"`
}

// Reconciler orchestrates extraction, matching, and apply-mode updates
// against the club registry.
type Reconciler struct {
	store   store.Store
	matcher *Matcher
	limiter *rate.Limiter    // nil means unthrottled
	logs    sessionlog.Store // nil disables progress logging
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithUpdateLimiter throttles apply-mode registry updates.
func WithUpdateLimiter(l *rate.Limiter) ReconcilerOption {
	return func(r *Reconciler) { r.limiter = l }
}

// WithSessionLog wires a progress-log store for streaming UIs.
func WithSessionLog(logs sessionlog.Store) ReconcilerOption {
	return func(r *Reconciler) { r.logs = logs }
}

// NewReconciler creates a Reconciler over the given registry store.
func NewReconciler(st store.Store, matcher *Matcher, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{store: st, matcher: matcher}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) logf(sessionID, format string, args ...any) {
	if r.logs == nil || sessionID == "" {
		return
	}
	r.logs.Append(sessionID, fmt.Sprintf(format, args...))
}

// run executes the shared extract+match phases.
func (r *Reconciler) run(ctx context.Context, payload, sessionID string) ([]model.MatchCandidate, model.ReconciliationSummary, error) {
	records, skippedRows, err := Extract(payload)
	if err != nil {
		r.logf(sessionID, "extraction failed: %v", err)
		return nil, model.ReconciliationSummary{}, err
	}
	r.logf(sessionID, "extracted %d records (%d rows skipped)", len(records), len(skippedRows))

	clubs, err := r.store.ListClubs(ctx)
	if err != nil {
		r.logf(sessionID, "registry unavailable: %v", err)
		return nil, model.ReconciliationSummary{}, eris.Wrapf(ErrMatching, "list clubs: %v", err)
	}

	matches, err := r.matcher.Match(ctx, records, clubs)
	if err != nil {
		return nil, model.ReconciliationSummary{}, eris.Wrapf(ErrMatching, "match: %v", err)
	}
	r.logf(sessionID, "matched against %d registered clubs", len(clubs))

	summary := summarize(len(records), matches, skippedRows)
	return matches, summary, nil
}

// Preview runs extraction and matching without mutating the registry.
func (r *Reconciler) Preview(ctx context.Context, payload, sessionID string) (*PreviewResult, error) {
	matches, summary, err := r.run(ctx, payload, sessionID)
	if err != nil {
		return nil, err
	}
	r.recordRun(ctx, model.ModePreview, summary)
	r.logf(sessionID, "preview complete: %d exact, %d high, %d medium, %d low, %d none",
		summary.ExactCount, summary.HighCount, summary.MediumCount, summary.LowCount, summary.NoneCount)
	return &PreviewResult{Matches: matches, Summary: summary}, nil
}

// Apply re-runs extraction and matching, then writes the non-empty
// extracted contact fields onto each selected club. A client-supplied
// match list is never trusted; only selected ids that still resolve to a
// current club are honored. Per-club update failures are logged and
// counted as skipped without aborting the rest of the batch.
func (r *Reconciler) Apply(ctx context.Context, payload string, selected map[string]bool, sessionID string) (*ApplyResult, error) {
	matches, summary, err := r.run(ctx, payload, sessionID)
	if err != nil {
		return nil, err
	}

	applied, skipped := 0, 0
	for _, m := range matches {
		if !selected[m.ExistingID] {
			skipped++
			continue
		}
		if err := r.applyOne(ctx, m); err != nil {
			zap.L().Warn("reconcile: apply failed",
				zap.String("club_id", m.ExistingID),
				zap.String("club_name", m.ExistingName),
				zap.Error(err),
			)
			r.logf(sessionID, "update failed for %s: %v", m.ExistingName, err)
			skipped++
			continue
		}
		r.logf(sessionID, "updated %s", m.ExistingName)
		applied++
	}

	summary.AppliedCount = applied
	summary.SkippedCount = skipped
	r.recordRun(ctx, model.ModeApply, summary)
	r.logf(sessionID, "apply complete: %d updated, %d skipped", applied, skipped)

	return &ApplyResult{
		PreviewResult: PreviewResult{Matches: matches, Summary: summary},
		AppliedCount:  applied,
		SkippedCount:  skipped,
	}, nil
}

func (r *Reconciler) applyOne(ctx context.Context, m model.MatchCandidate) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "reconcile: rate limit wait")
		}
	}
	patch := model.ClubPatch{
		Address: m.Extracted.Address,
		Phone:   m.Extracted.Phone,
		Email:   m.Extracted.Email,
		Website: m.Extracted.Website,
		LogoURL: m.Extracted.LogoURL,
	}
	if patch.IsEmpty() {
		// Nothing to write; count as applied without touching the store.
		return nil
	}
	return r.store.UpdateClubContact(ctx, m.ExistingID, patch)
}

// recordRun persists the run for the history listing. Failures here never
// fail the reconciliation itself.
func (r *Reconciler) recordRun(ctx context.Context, mode model.RunMode, s model.ReconciliationSummary) {
	run := &model.ReconcileRun{
		Mode:           mode,
		TotalExtracted: s.TotalExtracted,
		ExactCount:     s.ExactCount,
		HighCount:      s.HighCount,
		MediumCount:    s.MediumCount,
		LowCount:       s.LowCount,
		NoneCount:      s.NoneCount,
		AppliedCount:   s.AppliedCount,
		SkippedCount:   s.SkippedCount,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.store.RecordRun(ctx, run); err != nil {
		zap.L().Warn("reconcile: record run failed", zap.Error(err))
	}
}

func summarize(totalExtracted int, matches []model.MatchCandidate, skippedRows []model.SkippedRow) model.ReconciliationSummary {
	s := model.ReconciliationSummary{
		TotalExtracted: totalExtracted,
		SkippedRows:    skippedRows,
	}
	for _, m := range matches {
		switch m.MatchTier {
		case model.TierExact:
			s.ExactCount++
		case model.TierHigh:
			s.HighCount++
		case model.TierMedium:
			s.MediumCount++
		case model.TierLow:
			s.LowCount++
		case model.TierNone:
			s.NoneCount++
		}
	}
	return s
}
