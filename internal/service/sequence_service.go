// internal/service/sequence_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/metrics"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/sequence"
)

// SequenceService owns the touchpoints of each campaign contact's outreach
// sequence.
type SequenceService struct {
	TouchpointRepo repository.TouchpointRepositoryInterface
	Schedule       sequence.Schedule
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
}

func (s *SequenceService) schedule() sequence.Schedule {
	if len(s.Schedule) == 0 {
		return sequence.Default()
	}
	return s.Schedule
}

// InitSequence writes one pending touchpoint per schedule slot. It is not
// idempotent: a second call writes a second set. Writes are independent, so
// a failure part way leaves the earlier touchpoints in place.
func (s *SequenceService) InitSequence(ctx context.Context, campaignContactID string, bundle model.MessageBundle, start time.Time) ([]*model.Touchpoint, error) {
	tps, err := s.schedule().Build(campaignContactID, bundle, start)
	if err != nil {
		return nil, fmt.Errorf("build sequence: %w", err)
	}

	for _, tp := range tps {
		if err := s.TouchpointRepo.Create(ctx, tp); err != nil {
			return nil, err
		}
		s.Metrics.TrackTouchpointCreated(tp.Channel)
	}

	logger.OrNop(s.Logger).Info("sequence initialized",
		zap.String("campaign_contact_id", campaignContactID),
		zap.Int("touchpoints", len(tps)),
		zap.Time("start", start))
	return tps, nil
}

// CancelPendingSequence cancels every pending or approved touchpoint of the
// campaign contact and returns how many it cancelled. Sent and cancelled
// touchpoints are left alone, so repeating the call is a no-op.
func (s *SequenceService) CancelPendingSequence(ctx context.Context, campaignContactID string) (int, error) {
	tps, err := s.TouchpointRepo.ListByCampaignContact(ctx, campaignContactID)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, tp := range tps {
		if !tp.Open() {
			continue
		}
		if err := s.TouchpointRepo.UpdateStatus(ctx, tp.ID, model.TouchpointCancelled, nil); err != nil {
			return cancelled, fmt.Errorf("cancel touchpoint %s: %w", tp.ID, err)
		}
		cancelled++
	}

	s.Metrics.TrackTouchpointsCancelled(cancelled)
	if cancelled > 0 {
		logger.OrNop(s.Logger).Info("sequence cancelled",
			zap.String("campaign_contact_id", campaignContactID),
			zap.Int("cancelled", cancelled))
	}
	return cancelled, nil
}

// ListQueue returns touchpoints awaiting approval, earliest first. An empty
// campaignID lists every campaign.
func (s *SequenceService) ListQueue(ctx context.Context, campaignID string) ([]*model.QueuedTouchpoint, error) {
	return s.TouchpointRepo.ListQueued(ctx, campaignID)
}

// ListDue returns approved touchpoints scheduled at or before now.
func (s *SequenceService) ListDue(ctx context.Context, now time.Time) ([]*model.QueuedTouchpoint, error) {
	return s.TouchpointRepo.ListDue(ctx, now)
}
