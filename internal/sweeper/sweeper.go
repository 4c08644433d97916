// Package sweeper releases pay_later seats whose 72-hour hold lapsed.
package sweeper

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/mun-hub/munhub/internal/config"
	"github.com/mun-hub/munhub/internal/models"
	"github.com/mun-hub/munhub/internal/storage"
	"github.com/sirupsen/logrus"
)

const expiryReason = "payment hold expired"

type Sweeper struct {
	config  *config.Config
	storage *storage.Storage
	clock   clockwork.Clock
}

func New(cfg *config.Config, storage *storage.Storage, clock clockwork.Clock) *Sweeper {
	return &Sweeper{
		config:  cfg,
		storage: storage,
		clock:   clock,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	t := s.clock.NewTicker(s.config.SweepInterval)
	defer t.Stop()

	logger := logrus.WithField("component", "hold_sweeper")

	for {
		select {
		case <-t.Chan():
			released, err := s.Sweep(ctx)
			if err != nil {
				logger.Errorf("failed to sweep expired holds: %v", err)
				continue
			}
			if released > 0 {
				logger.Infof("released %d expired payment holds", released)
			}

		case <-ctx.Done():
			return
		}
	}
}

// Sweep rejects every pending_payment registration whose hold expired before
// now and returns how many were released.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	regs, err := s.storage.GetExpiredHolds(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, reg := range regs {
		if err := s.storage.UpdateRegistrationStatus(ctx, reg.ID, models.StatusRejected, expiryReason); err != nil {
			logrus.Errorf("failed to release hold for %v: %v", reg, err)
			continue
		}
		logrus.Infof("released expired hold for %v", reg)
		released++
	}

	return released, nil
}
