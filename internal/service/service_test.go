package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	"github.com/unclebandit/outreach-backend/internal/db/dbtest"
	"github.com/unclebandit/outreach-backend/internal/generator"
	"github.com/unclebandit/outreach-backend/internal/metrics"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/queue"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/sequence"
)

var anchor = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// stubGenerator returns the template bundle, failing for listed names.
type stubGenerator struct {
	failFor map[string]bool
}

func (g stubGenerator) Generate(ctx context.Context, c generator.ContactProfile, p generator.ProductInfo) (model.MessageBundle, error) {
	if g.failFor[c.Name] {
		return model.MessageBundle{}, generator.ErrMalformedOutput
	}
	return generator.TemplateGenerator{}.Generate(ctx, c, p)
}

type published struct {
	topic   string
	payload any
}

type recordingQueue struct {
	mu   sync.Mutex
	msgs []published
}

func (q *recordingQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, published{topic, payload})
	return nil
}

func (q *recordingQueue) Subscribe(string, func(any) error) error { return nil }
func (q *recordingQueue) Close() error                           { return nil }

var _ queue.Queue = (*recordingQueue)(nil)

type fakeLeadFinder struct {
	contacts []model.Contact
}

func (f fakeLeadFinder) FindContactsByCompany(ctx context.Context, company string, roles []string) []model.Contact {
	return f.contacts
}

type fakeOpportunities struct {
	cards map[string]bridge.Card
}

func (f fakeOpportunities) ListOpportunities(ctx context.Context, minScore int) []bridge.Card {
	out := []bridge.Card{}
	for _, c := range f.cards {
		out = append(out, c)
	}
	return out
}

func (f fakeOpportunities) GetOpportunity(ctx context.Context, id string) bridge.Card {
	return f.cards[id]
}

type env struct {
	db        *sql.DB
	repos     repos
	sequence  *SequenceService
	funnel    *FunnelService
	analytics *AnalyticsService
	campaigns *CampaignService
	contacts  *ContactService
	queue     *recordingQueue
	metrics   *metrics.Metrics
}

type repos struct {
	contacts         *repository.ContactRepository
	campaigns        *repository.CampaignRepository
	campaignContacts *repository.CampaignContactRepository
	touchpoints      *repository.TouchpointRepository
	responses        *repository.ResponseRepository
}

func newEnv(t *testing.T, gen generator.Generator) *env {
	t.Helper()
	conn := dbtest.Open(t)
	r := repos{
		contacts:         &repository.ContactRepository{DB: conn},
		campaigns:        &repository.CampaignRepository{DB: conn},
		campaignContacts: &repository.CampaignContactRepository{DB: conn},
		touchpoints:      &repository.TouchpointRepository{DB: conn},
		responses:        &repository.ResponseRepository{DB: conn},
	}
	m := metrics.New()
	q := &recordingQueue{}
	log := zap.NewNop()

	seq := &SequenceService{TouchpointRepo: r.touchpoints, Schedule: sequence.Default(), Metrics: m, Logger: log}
	analytics := &AnalyticsService{CampaignRepo: r.campaigns, CampaignContactRepo: r.campaignContacts, Logger: log}

	return &env{
		db:       conn,
		repos:    r,
		sequence: seq,
		funnel: &FunnelService{
			CampaignRepo:        r.campaigns,
			CampaignContactRepo: r.campaignContacts,
			TouchpointRepo:      r.touchpoints,
			ResponseRepo:        r.responses,
			Sequence:            seq,
			Generator:           gen,
			Queue:               q,
			Metrics:             m,
			Logger:              log,
			Now:                 func() time.Time { return anchor },
		},
		analytics: analytics,
		campaigns: &CampaignService{
			CampaignRepo:        r.campaigns,
			ContactRepo:         r.contacts,
			CampaignContactRepo: r.campaignContacts,
			Analytics:           analytics,
			Logger:              log,
		},
		contacts: &ContactService{
			ContactRepo:         r.contacts,
			CampaignContactRepo: r.campaignContacts,
			ResponseRepo:        r.responses,
			Logger:              log,
		},
		queue:   q,
		metrics: m,
	}
}

func (e *env) campaign(t *testing.T, projectID *string) *model.Campaign {
	t.Helper()
	c, err := e.campaigns.CreateCampaign(context.Background(), CampaignInput{
		Name:          "C",
		ProductName:   "AI-Sales",
		AipmProjectID: projectID,
	})
	require.NoError(t, err)
	return c
}

func (e *env) enroll(t *testing.T, campaignID, name string) *model.CampaignContact {
	t.Helper()
	cc, err := e.campaigns.AddContact(context.Background(), campaignID, ContactInput{Name: name, Company: "Acme"})
	require.NoError(t, err)
	return cc
}

// personalized enrolls name and runs personalization, returning the
// contact's touchpoints by step.
func (e *env) personalized(t *testing.T, campaignID, name string) (*model.CampaignContact, []*model.Touchpoint) {
	t.Helper()
	ctx := context.Background()
	cc := e.enroll(t, campaignID, name)
	_, err := e.funnel.Personalize(ctx, campaignID)
	require.NoError(t, err)
	tps, err := e.repos.touchpoints.ListByCampaignContact(ctx, cc.ID)
	require.NoError(t, err)
	require.Len(t, tps, 4)
	return cc, tps
}

func (e *env) status(t *testing.T, ccID string) string {
	t.Helper()
	cc, err := e.repos.campaignContacts.GetByID(context.Background(), ccID)
	require.NoError(t, err)
	return cc.Status
}

func (e *env) touchpointStatuses(t *testing.T, ccID string) []string {
	t.Helper()
	tps, err := e.repos.touchpoints.ListByCampaignContact(context.Background(), ccID)
	require.NoError(t, err)
	out := make([]string, len(tps))
	for i, tp := range tps {
		out[i] = tp.Status
	}
	return out
}

var errBoom = errors.New("boom")
