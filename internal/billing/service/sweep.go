package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"atelierhub/internal/metrics"
)

// Sweep is the daily reconciliation pass. It moves active records whose
// due date has passed with no renewal to overdue and withholds access from
// their owners, then downgrades expired trials. Users with a
// provider-managed subscription are only ever touched through the first
// path; the trial downgrade skips anyone holding a subscription reference.
func (s *Service) Sweep(ctx context.Context) error {
	now := s.Now()

	overdue, err := s.repo.MarkOverdueDue(ctx, now)
	if err != nil {
		return err
	}
	for _, sub := range overdue {
		if err := s.users.SetPlan(ctx, sub.UserID, sub.PlanID, false, &sub.ID); err != nil {
			log.Error().Err(err).Int64("user_id", sub.UserID).Msg("sweep: failed to withhold access")
			continue
		}
		metrics.SubscriptionsOverdue.Inc()
		log.Info().
			Int64("user_id", sub.UserID).
			Str("plan", sub.PlanID).
			Msg("subscription past due, marked overdue")
	}

	downgraded, err := s.users.DowngradeExpiredTrials(ctx, now)
	if err != nil {
		return err
	}
	if downgraded > 0 {
		log.Info().Int64("count", downgraded).Msg("sweep: downgraded expired trials")
	}

	return nil
}
