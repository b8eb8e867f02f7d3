package order

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper fails pending orders whose inventory reservations outlived the
// configured TTL, returning their stock. It runs outside the checkout hot
// path.
type Sweeper struct {
	svc      Service
	repo     Repository
	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(svc Service, repo Repository, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, repo: repo, ttl: ttl, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("ttl", s.ttl).Dur("interval", s.interval).Msg("sweeper: reservation expiry sweep started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper: stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires one batch of abandoned reservations. Failures on a single
// order are logged and do not stop the batch. ExpireOrder re-checks the
// pending status under the row lock, so an order confirmed between listing
// and locking stays as the confirmation left it.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.ttl)
	ids, err := s.repo.ListExpiredPending(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("sweeper: failed to list expired pending orders")
		return
	}
	for _, id := range ids {
		expired, err := s.svc.ExpireOrder(ctx, id)
		if err != nil {
			log.Warn().Err(err).Stringer("order_id", id).Msg("sweeper: failed to expire order")
			continue
		}
		if expired == nil {
			log.Debug().Stringer("order_id", id).Msg("sweeper: order advanced before expiry, skipped")
			continue
		}
		log.Info().Stringer("order_id", id).Msg("sweeper: expired abandoned reservation")
	}
}
