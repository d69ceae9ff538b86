package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/ponyclubs/clubsync/internal/reconcile"
	"github.com/ponyclubs/clubsync/internal/sessionlog"
	"github.com/ponyclubs/clubsync/internal/store"
)

// appEnv bundles the wired services shared by the commands.
type appEnv struct {
	store      store.Store
	logs       sessionlog.Store
	reconciler *reconcile.Reconciler
}

func (e *appEnv) Close() {
	_ = e.store.Close()
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DSN, cfg.Store.Pool)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv opens the store and wires the reconciler per config.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	matcher := reconcile.NewMatcher(reconcile.MatcherOptions{
		Thresholds: &reconcile.Thresholds{
			Exact:  cfg.Matcher.ExactThreshold,
			High:   cfg.Matcher.HighThreshold,
			Medium: cfg.Matcher.MediumThreshold,
			Low:    cfg.Matcher.LowThreshold,
		},
		NoisePhrase: cfg.Matcher.NoisePhrase,
		Parallelism: cfg.Matcher.Parallelism,
	})

	logs := sessionlog.NewMemory(time.Duration(cfg.Server.SessionTTLSecs) * time.Second)

	opts := []reconcile.ReconcilerOption{reconcile.WithSessionLog(logs)}
	if cfg.Apply.RatePerSec > 0 {
		opts = append(opts, reconcile.WithUpdateLimiter(
			rate.NewLimiter(rate.Limit(cfg.Apply.RatePerSec), cfg.Apply.Burst)))
	}

	return &appEnv{
		store:      st,
		logs:       logs,
		reconciler: reconcile.NewReconciler(st, matcher, opts...),
	}, nil
}
