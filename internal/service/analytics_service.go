// internal/service/analytics_service.go
package service

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

// Stages that count toward each funnel level. A later stage implies the
// earlier ones.
var (
	repliedStages = map[string]bool{model.StageReplied: true, model.StageDemoBooked: true, model.StageConverted: true}
	demoStages    = map[string]bool{model.StageDemoBooked: true, model.StageConverted: true}
)

// ComputeStats rolls up a campaign's contacts into funnel counts and rates.
func ComputeStats(contacts []*model.CampaignContact) model.CampaignStats {
	st := model.CampaignStats{Total: len(contacts)}
	for _, cc := range contacts {
		if repliedStages[cc.Status] {
			st.Replied++
		}
		if demoStages[cc.Status] {
			st.DemoBooked++
		}
		if cc.Status == model.StageConverted {
			st.Converted++
		}
	}
	st.ReplyRate = percent(st.Replied, st.Total)
	st.DemoRate = percent(st.DemoBooked, st.Total)
	st.ConversionRate = percent(st.Converted, st.Total)
	return st
}

// percent is n/total as a whole percentage, rounded half up. Zero total gives zero.
func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(total)))
}

type AnalyticsService struct {
	CampaignRepo        repository.CampaignRepositoryInterface
	CampaignContactRepo repository.CampaignContactRepositoryInterface
	Logger              *zap.Logger
}

// CampaignStats returns the funnel stats of one campaign.
func (s *AnalyticsService) CampaignStats(ctx context.Context, campaignID string) (model.CampaignStats, error) {
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return model.CampaignStats{}, err
	}
	return s.statsFor(ctx, campaignID)
}

func (s *AnalyticsService) statsFor(ctx context.Context, campaignID string) (model.CampaignStats, error) {
	ccs, err := s.CampaignContactRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return model.CampaignStats{}, err
	}
	return ComputeStats(ccs), nil
}

// Overview sums per-campaign counts and recomputes the rates from the totals.
func (s *AnalyticsService) Overview(ctx context.Context) (model.Overview, error) {
	campaigns, err := s.CampaignRepo.List(ctx)
	if err != nil {
		return model.Overview{}, err
	}

	var (
		mu sync.Mutex
		ov = model.Overview{TotalCampaigns: len(campaigns)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, c := range campaigns {
		if c.Status == model.CampaignActive {
			ov.ActiveCampaigns++
		}
		c := c
		g.Go(func() error {
			st, err := s.statsFor(gctx, c.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			ov.TotalContacts += st.Total
			ov.TotalReplied += st.Replied
			ov.TotalDemo += st.DemoBooked
			ov.TotalConverted += st.Converted
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Overview{}, err
	}

	ov.ReplyRate = percent(ov.TotalReplied, ov.TotalContacts)
	ov.DemoRate = percent(ov.TotalDemo, ov.TotalContacts)
	ov.ConversionRate = percent(ov.TotalConverted, ov.TotalContacts)
	return ov, nil
}

// StatusBreakdown counts a campaign's contacts per funnel stage.
func (s *AnalyticsService) StatusBreakdown(ctx context.Context, campaignID string) (map[string]int, error) {
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	ccs, err := s.CampaignContactRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, cc := range ccs {
		out[cc.Status]++
	}
	return out, nil
}
