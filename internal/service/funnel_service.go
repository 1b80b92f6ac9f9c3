// internal/service/funnel_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/generator"
	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/metrics"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/queue"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

// FunnelService moves campaign contacts and their touchpoints through the
// outreach funnel.
type FunnelService struct {
	CampaignRepo        repository.CampaignRepositoryInterface
	CampaignContactRepo repository.CampaignContactRepositoryInterface
	TouchpointRepo      repository.TouchpointRepositoryInterface
	ResponseRepo        repository.ResponseRepositoryInterface

	Sequence  *SequenceService
	Generator generator.Generator
	Limiter   *rate.Limiter // nil means unlimited
	Queue     queue.Queue   // nil disables conversion reports
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *FunnelService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *FunnelService) log() *zap.Logger {
	return logger.OrNop(s.Logger)
}

// Per-contact personalization outcomes.
const (
	PersonalizeOK      = "personalized"
	PersonalizeFailed  = "failed"
	PersonalizeSkipped = "skipped"
)

type PersonalizeResult struct {
	CampaignContactID string `json:"campaign_contact_id"`
	ContactName       string `json:"contact_name"`
	Status            string `json:"status"`
	Touchpoints       int    `json:"touchpoints,omitempty"`
	Error             string `json:"error,omitempty"`
}

type PersonalizeSummary struct {
	CampaignID   string              `json:"campaign_id"`
	Personalized int                 `json:"personalized"`
	Failed       int                 `json:"failed"`
	Results      []PersonalizeResult `json:"results"`
}

// Personalize generates messages for every pending contact of the campaign
// and starts their sequences. A generator failure only affects that
// contact. Each contact is claimed with a conditional status update before
// its touchpoints are written, so a concurrent call skips it.
func (s *FunnelService) Personalize(ctx context.Context, campaignID string) (*PersonalizeSummary, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	ccs, err := s.CampaignContactRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	product := generator.ProductFromCampaign(campaign)
	summary := &PersonalizeSummary{CampaignID: campaignID, Results: []PersonalizeResult{}}

	for _, cc := range ccs {
		if cc.Status != model.StagePending {
			continue
		}
		res := PersonalizeResult{CampaignContactID: cc.ID}
		if cc.Contact != nil {
			res.ContactName = cc.Contact.Name
		}

		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}

		bundle, err := s.Generator.Generate(ctx, generator.ProfileFromContact(cc.Contact), product)
		if err != nil {
			s.Metrics.TrackGeneratorFailure()
			s.log().Warn("message generation failed",
				zap.String("campaign_contact_id", cc.ID),
				zap.String("contact", res.ContactName),
				zap.Error(err))
			res.Status = PersonalizeFailed
			res.Error = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, res)
			continue
		}

		claimed, err := s.CampaignContactRepo.TransitionStatus(ctx, cc.ID, model.StagePending, model.StageInSequence, 1)
		if err != nil {
			return summary, err
		}
		if !claimed {
			s.log().Info("contact already personalized", zap.String("campaign_contact_id", cc.ID))
			res.Status = PersonalizeSkipped
			summary.Results = append(summary.Results, res)
			continue
		}
		s.Metrics.TrackTransition(model.StageInSequence)

		tps, err := s.Sequence.InitSequence(ctx, cc.ID, bundle, s.now())
		if err != nil {
			return summary, err
		}

		res.Status = PersonalizeOK
		res.Touchpoints = len(tps)
		summary.Personalized++
		summary.Results = append(summary.Results, res)
	}

	s.log().Info("campaign personalized",
		zap.String("campaign_id", campaignID),
		zap.Int("personalized", summary.Personalized),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// Approve moves a pending touchpoint to approved.
func (s *FunnelService) Approve(ctx context.Context, touchpointID string) (*model.Touchpoint, error) {
	return s.advanceTouchpoint(ctx, touchpointID, model.TouchpointPending, model.TouchpointApproved, nil)
}

// MarkSent records that the operator sent an approved touchpoint.
func (s *FunnelService) MarkSent(ctx context.Context, touchpointID string) (*model.Touchpoint, error) {
	now := s.now()
	return s.advanceTouchpoint(ctx, touchpointID, model.TouchpointApproved, model.TouchpointSent, &now)
}

// CheckTouchpointCampaign reports a not-found error unless the touchpoint
// belongs to a contact of campaignID.
func (s *FunnelService) CheckTouchpointCampaign(ctx context.Context, campaignID, touchpointID string) error {
	tp, err := s.TouchpointRepo.GetByID(ctx, touchpointID)
	if err != nil {
		return err
	}
	cc, err := s.CampaignContactRepo.GetByID(ctx, tp.CampaignContactID)
	if err != nil {
		return err
	}
	if cc.CampaignID != campaignID {
		return appErrors.NewTouchpointNotFound(touchpointID)
	}
	return nil
}

func (s *FunnelService) advanceTouchpoint(ctx context.Context, id, from, to string, sentAt *time.Time) (*model.Touchpoint, error) {
	tp, err := s.TouchpointRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tp.Status != from {
		return nil, appErrors.NewInvalidTransition("touchpoint", tp.Status, to)
	}
	if err := s.TouchpointRepo.UpdateStatus(ctx, id, to, sentAt); err != nil {
		return nil, err
	}
	tp.Status = to
	if sentAt != nil {
		tp.SentAt = sentAt
	}
	s.log().Info("touchpoint updated", zap.String("touchpoint_id", id), zap.String("status", to))
	return tp, nil
}

// ResponseInput is an inbound signal logged by the operator.
type ResponseInput struct {
	CampaignContactID string
	TouchpointID      *string
	Content           string
	Sentiment         string
	Action            string
}

type ResponseOutcome struct {
	Response  *model.Response `json:"response"`
	NewStatus string          `json:"new_status"`
	Cancelled int             `json:"cancelled"`
}

func validAction(a string) bool {
	switch a {
	case model.ActionReplied, model.ActionDemoScheduled, model.ActionWon, model.ActionLost, model.ActionNone:
		return true
	}
	return false
}

// LogResponse records a response for a contact of campaignID and applies the
// funnel transition for its action.
func (s *FunnelService) LogResponse(ctx context.Context, campaignID string, in ResponseInput) (*ResponseOutcome, error) {
	if in.Sentiment == "" {
		in.Sentiment = "positive"
	}
	if in.Action == "" {
		in.Action = model.ActionNone
	}
	if !validAction(in.Action) {
		return nil, appErrors.NewValidation("action", fmt.Sprintf("unknown action %q", in.Action))
	}

	cc, err := s.CampaignContactRepo.GetByID(ctx, in.CampaignContactID)
	if err != nil {
		return nil, err
	}
	if cc.CampaignID != campaignID {
		return nil, appErrors.NewCampaignContactNotFound(in.CampaignContactID)
	}

	if in.TouchpointID != nil {
		tp, err := s.TouchpointRepo.GetByID(ctx, *in.TouchpointID)
		if err != nil {
			return nil, err
		}
		if tp.CampaignContactID != cc.ID {
			return nil, appErrors.NewTouchpointNotFound(*in.TouchpointID)
		}
	}

	resp := &model.Response{
		CampaignContactID: cc.ID,
		TouchpointID:      in.TouchpointID,
		Content:           in.Content,
		Sentiment:         in.Sentiment,
		Action:            in.Action,
	}
	if err := s.ResponseRepo.Create(ctx, resp); err != nil {
		return nil, err
	}
	s.Metrics.TrackResponse(in.Action)

	out := &ResponseOutcome{Response: resp}
	switch in.Action {
	case model.ActionDemoScheduled:
		out.NewStatus = model.StageDemoBooked
	case model.ActionWon:
		out.NewStatus = model.StageConverted
	case model.ActionLost:
		s.Metrics.TrackAnomalousResponse(in.Action)
		s.log().Warn("lost response handled as reply", zap.String("campaign_contact_id", cc.ID))
		out.NewStatus = model.StageReplied
	default:
		out.NewStatus = model.StageReplied
	}

	// Cancel before the status write so a failed cancel leaves the old stage.
	if out.NewStatus != model.StageDemoBooked {
		if out.Cancelled, err = s.Sequence.CancelPendingSequence(ctx, cc.ID); err != nil {
			return nil, err
		}
	}

	if err := s.CampaignContactRepo.UpdateStatus(ctx, cc.ID, out.NewStatus); err != nil {
		return nil, err
	}
	s.Metrics.TrackTransition(out.NewStatus)

	if out.NewStatus == model.StageConverted {
		s.reportConversion(ctx, campaignID, cc)
	}

	s.log().Info("response logged",
		zap.String("campaign_contact_id", cc.ID),
		zap.String("action", in.Action),
		zap.String("status", out.NewStatus),
		zap.Int("cancelled", out.Cancelled))
	return out, nil
}

// reportConversion queues conversion evidence for a campaign linked to an
// AI-PM project. Failures are logged only.
func (s *FunnelService) reportConversion(ctx context.Context, campaignID string, cc *model.CampaignContact) {
	if s.Queue == nil {
		return
	}
	campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		s.log().Warn("conversion report skipped", zap.String("campaign_id", campaignID), zap.Error(err))
		return
	}
	if !campaign.HasProjectLink() {
		return
	}

	ccs, err := s.CampaignContactRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		s.log().Warn("conversion report skipped", zap.String("campaign_id", campaignID), zap.Error(err))
		return
	}
	st := ComputeStats(ccs)

	evidence := bridge.ConversionEvidence{
		CampaignID:     campaignID,
		TotalContacts:  st.Total,
		Converted:      st.Converted,
		DemoBooked:     st.DemoBooked,
		ReplyRate:      st.ReplyRate,
		ConversionRate: st.ConversionRate,
	}
	for _, c := range ccs {
		if c.ID == cc.ID && c.Contact != nil {
			evidence.FirstCustomer = c.Contact.Name
		}
	}

	report := queue.ConversionReport{ProjectID: *campaign.AipmProjectID, Evidence: evidence}
	if err := s.Queue.Publish(queue.TopicConversionReports, report); err != nil {
		s.Metrics.TrackConversionReport("failed")
		s.log().Warn("conversion report not queued", zap.String("project_id", report.ProjectID), zap.Error(err))
	}
}
