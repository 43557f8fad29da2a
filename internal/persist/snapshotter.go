package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/efreitasn/marketcore/internal/engine"
	"github.com/efreitasn/marketcore/internal/metrics"
)

// Source is whatever can export a versioned copy of the marketplace.
type Source interface {
	Snapshot() (engine.State, uint64)
}

// Snapshotter periodically writes the marketplace to a datastore. A tick
// whose version matches the last saved one writes nothing.
type Snapshotter struct {
	interval time.Duration
	store    Datastore
	source   Source
	log      zerolog.Logger
	metrics  *metrics.Metrics

	mu    sync.Mutex // serialises Flush
	saved uint64
}

// NewSnapshotter creates a Snapshotter. saved is the version already present
// in the datastore, usually the version of the freshly restored marketplace.
func NewSnapshotter(
	interval time.Duration,
	store Datastore,
	source Source,
	saved uint64,
	log zerolog.Logger,
	m *metrics.Metrics,
) *Snapshotter {
	return &Snapshotter{
		interval: interval,
		store:    store,
		source:   source,
		saved:    saved,
		log:      log.With().Str("component", "snapshotter").Logger(),
		metrics:  m,
	}
}

// Run ticks at the configured interval until ctx is cancelled, then flushes
// one last time. Failed ticks are logged and retried on the next tick; only
// the final flush reports its error.
func (s *Snapshotter) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.Flush(context.WithoutCancel(ctx))
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.log.Error().Err(err).Msg("snapshot failed")
			}
		}
	}
}

// Flush saves the current state if it changed since the last save.
func (s *Snapshotter) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, version := s.source.Snapshot()
	if version == s.saved {
		return nil
	}

	start := time.Now()
	err := Save(ctx, s.store, st)
	s.metrics.ObserveSnapshot(err)
	if err != nil {
		return err
	}
	s.saved = version
	s.log.Debug().
		Uint64("version", version).
		Int("users", len(st.Users)).
		Int("listings", len(st.Listings)).
		Int("orders", len(st.Orders)).
		Dur("took", time.Since(start)).
		Msg("snapshot saved")
	return nil
}

// SavedVersion returns the version last written to the datastore.
func (s *Snapshotter) SavedVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}
