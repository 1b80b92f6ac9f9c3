// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo        repository.CampaignRepositoryInterface
	ContactRepo         repository.ContactRepositoryInterface
	CampaignContactRepo repository.CampaignContactRepositoryInterface
	Analytics           *AnalyticsService
	LeadFinder          bridge.LeadFinder
	Opportunities       bridge.OpportunitySource
	Logger              *zap.Logger
}

// CampaignInput carries the fields accepted on campaign creation.
type CampaignInput struct {
	Name          string
	ProductName   string
	AipmProjectID *string
	DemexCardID   *string
	PitchHeadline string
	PitchBody     string
	TargetSegment string
}

// CampaignPatch holds optional updates; nil fields are left unchanged.
type CampaignPatch struct {
	Name          *string
	ProductName   *string
	PitchHeadline *string
	PitchBody     *string
	TargetSegment *string
	Status        *string
}

type CampaignWithStats struct {
	*model.Campaign
	Stats model.CampaignStats `json:"stats"`
}

type CampaignDetails struct {
	Campaign *model.Campaign          `json:"campaign"`
	Contacts []*model.CampaignContact `json:"contacts"`
	Stats    model.CampaignStats      `json:"stats"`
}

// TargetsResult reports a lead-finder import.
type TargetsResult struct {
	Found    int                      `json:"found"`
	Added    int                      `json:"added"`
	Contacts []*model.CampaignContact `json:"contacts"`
}

func (s *CampaignService) log() *zap.Logger {
	return logger.OrNop(s.Logger)
}

func (s *CampaignService) CreateCampaign(ctx context.Context, in CampaignInput) (*model.Campaign, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, appErrors.NewValidation("name", "name and product_name required")
	}
	if strings.TrimSpace(in.ProductName) == "" {
		return nil, appErrors.NewValidation("product_name", "name and product_name required")
	}

	c := &model.Campaign{
		Name:          strings.TrimSpace(in.Name),
		ProductName:   strings.TrimSpace(in.ProductName),
		AipmProjectID: in.AipmProjectID,
		DemexCardID:   in.DemexCardID,
		PitchHeadline: in.PitchHeadline,
		PitchBody:     in.PitchBody,
		TargetSegment: in.TargetSegment,
		Status:        model.CampaignDraft,
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log().Info("campaign created", zap.String("campaign_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// ListCampaigns returns every campaign, newest first, with its funnel stats.
func (s *CampaignService) ListCampaigns(ctx context.Context) ([]CampaignWithStats, error) {
	campaigns, err := s.CampaignRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CampaignWithStats, 0, len(campaigns))
	for _, c := range campaigns {
		st, err := s.Analytics.statsFor(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CampaignWithStats{Campaign: c, Stats: st})
	}
	return out, nil
}

func (s *CampaignService) GetCampaignDetails(ctx context.Context, id string) (*CampaignDetails, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ccs, err := s.CampaignContactRepo.ListByCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CampaignDetails{Campaign: c, Contacts: ccs, Stats: ComputeStats(ccs)}, nil
}

func (s *CampaignService) UpdateCampaign(ctx context.Context, id string, p CampaignPatch) (*model.Campaign, error) {
	if p.Status != nil && !model.ValidCampaignStatus(*p.Status) {
		return nil, appErrors.NewValidation("status", fmt.Sprintf("invalid status %q", *p.Status))
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, appErrors.NewValidation("name", "name cannot be empty")
	}
	if p.ProductName != nil && strings.TrimSpace(*p.ProductName) == "" {
		return nil, appErrors.NewValidation("product_name", "product_name cannot be empty")
	}

	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.ProductName != nil {
		c.ProductName = strings.TrimSpace(*p.ProductName)
	}
	if p.PitchHeadline != nil {
		c.PitchHeadline = *p.PitchHeadline
	}
	if p.PitchBody != nil {
		c.PitchBody = *p.PitchBody
	}
	if p.TargetSegment != nil {
		c.TargetSegment = *p.TargetSegment
	}
	if p.Status != nil {
		c.Status = *p.Status
	}

	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddContact creates a manual contact and enrolls it in the campaign.
func (s *CampaignService) AddContact(ctx context.Context, campaignID string, in ContactInput) (*model.CampaignContact, error) {
	in.Source = model.SourceManual
	contact, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.enroll(ctx, campaignID, contact)
}

func (s *CampaignService) enroll(ctx context.Context, campaignID string, contact *model.Contact) (*model.CampaignContact, error) {
	if err := s.ContactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	cc := &model.CampaignContact{CampaignID: campaignID, ContactID: contact.ID}
	if err := s.CampaignContactRepo.Create(ctx, cc); err != nil {
		return nil, err
	}
	cc.Contact = contact
	return cc, nil
}

// AddTargets asks the lead finder for decision makers at company and
// enrolls every one found. An unreachable finder adds nothing.
func (s *CampaignService) AddTargets(ctx context.Context, campaignID, company string, roles []string) (*TargetsResult, error) {
	if strings.TrimSpace(company) == "" {
		return nil, appErrors.NewValidation("company", "company required")
	}
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}

	found := s.LeadFinder.FindContactsByCompany(ctx, company, roles)
	res := &TargetsResult{Found: len(found), Contacts: []*model.CampaignContact{}}
	for i := range found {
		contact := found[i]
		if contact.Source == "" {
			contact.Source = model.SourceHeadhunter
		}
		cc, err := s.enroll(ctx, campaignID, &contact)
		if err != nil {
			return res, err
		}
		res.Contacts = append(res.Contacts, cc)
		res.Added++
	}

	s.log().Info("targets added",
		zap.String("campaign_id", campaignID),
		zap.String("company", company),
		zap.Int("found", res.Found),
		zap.Int("added", res.Added))
	return res, nil
}

// ListOpportunities returns GO cards from the opportunity source.
func (s *CampaignService) ListOpportunities(ctx context.Context, minScore int) []bridge.Card {
	return s.Opportunities.ListOpportunities(ctx, minScore)
}

// CreateFromOpportunity starts a draft campaign from a DEMEX card.
func (s *CampaignService) CreateFromOpportunity(ctx context.Context, cardID string) (*model.Campaign, bridge.Card, error) {
	card := s.Opportunities.GetOpportunity(ctx, cardID)
	if card == nil {
		return nil, nil, appErrors.NewNotFound("opportunity card", cardID)
	}

	id := cardID
	c := &model.Campaign{
		Name:          "[DEMEX] " + firstNonEmpty(card.String("domain", "title"), cardID),
		ProductName:   card.String("domain", "title"),
		DemexCardID:   &id,
		PitchHeadline: card.String("opportunity_headline", "summary"),
		PitchBody:     card.String("analysis"),
		TargetSegment: card.String("target_segment"),
		Status:        model.CampaignDraft,
	}
	if c.ProductName == "" {
		c.ProductName = cardID
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, nil, err
	}
	s.log().Info("campaign created from opportunity", zap.String("campaign_id", c.ID), zap.String("card_id", cardID))
	return c, card, nil
}

// ProjectLaunch is the AI-PM launch notification.
type ProjectLaunch struct {
	ProjectID   string
	ProjectName string
	ProductName string
	Stage       string
	Domain      string
	Description string
	DemexCardID string
}

// CreateFromLaunch opens a draft campaign for a project entering the launch
// stage. Other stages are ignored and return nil.
func (s *CampaignService) CreateFromLaunch(ctx context.Context, l ProjectLaunch) (*model.Campaign, error) {
	if l.Stage != "launch" {
		s.log().Debug("project stage ignored", zap.String("project_id", l.ProjectID), zap.String("stage", l.Stage))
		return nil, nil
	}
	if strings.TrimSpace(l.ProjectName) == "" {
		return nil, appErrors.NewValidation("project_name", "project_name required")
	}

	c := &model.Campaign{
		Name:          "[Auto] " + l.ProjectName,
		ProductName:   firstNonEmpty(l.ProductName, l.ProjectName),
		PitchHeadline: l.Description,
		PitchBody:     "Domain: " + l.Domain,
		Status:        model.CampaignDraft,
	}
	if l.ProjectID != "" {
		project := l.ProjectID
		c.AipmProjectID = &project
	}
	if l.DemexCardID != "" {
		card := l.DemexCardID
		c.DemexCardID = &card
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log().Info("campaign created from project launch",
		zap.String("campaign_id", c.ID),
		zap.String("project_id", l.ProjectID))
	return c, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
