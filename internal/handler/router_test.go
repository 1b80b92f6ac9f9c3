package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	"github.com/unclebandit/outreach-backend/internal/controller"
	"github.com/unclebandit/outreach-backend/internal/db/dbtest"
	"github.com/unclebandit/outreach-backend/internal/generator"
	"github.com/unclebandit/outreach-backend/internal/handler"
	"github.com/unclebandit/outreach-backend/internal/metrics"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/service"
)

const secret = "s3cret"

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeSeeder struct {
	err   error
	calls int
}

func (f *fakeSeeder) Seed(ctx context.Context, message string, groups []string) error {
	f.calls++
	return f.err
}

type fakeOpportunities struct{}

func (fakeOpportunities) ListOpportunities(ctx context.Context, minScore int) []bridge.Card {
	return []bridge.Card{{"id": "card-1", "domain": "logistics"}}
}

func (fakeOpportunities) GetOpportunity(ctx context.Context, id string) bridge.Card {
	if id == "card-1" {
		return bridge.Card{"id": "card-1", "domain": "logistics"}
	}
	return nil
}

type fakeLeadFinder struct{}

func (fakeLeadFinder) FindContactsByCompany(ctx context.Context, company string, roles []string) []model.Contact {
	return []model.Contact{{Name: "Carol", Company: company, Source: model.SourceHeadhunter}}
}

type server struct {
	h      http.Handler
	seeder *fakeSeeder
}

func newServer(t *testing.T) *server {
	t.Helper()
	conn := dbtest.Open(t)
	log := zap.NewNop()
	m := metrics.New()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	ccRepo := &repository.CampaignContactRepository{DB: conn}
	tpRepo := &repository.TouchpointRepository{DB: conn}
	respRepo := &repository.ResponseRepository{DB: conn}

	seq := &service.SequenceService{TouchpointRepo: tpRepo, Metrics: m, Logger: log}
	analytics := &service.AnalyticsService{CampaignRepo: campaignRepo, CampaignContactRepo: ccRepo, Logger: log}
	campaigns := &service.CampaignService{
		CampaignRepo:        campaignRepo,
		ContactRepo:         contactRepo,
		CampaignContactRepo: ccRepo,
		Analytics:           analytics,
		LeadFinder:          fakeLeadFinder{},
		Opportunities:       fakeOpportunities{},
		Logger:              log,
	}
	funnel := &service.FunnelService{
		CampaignRepo:        campaignRepo,
		CampaignContactRepo: ccRepo,
		TouchpointRepo:      tpRepo,
		ResponseRepo:        respRepo,
		Sequence:            seq,
		Generator:           generator.TemplateGenerator{},
		Metrics:             m,
		Logger:              log,
		Now:                 func() time.Time { return now },
	}
	contacts := &service.ContactService{ContactRepo: contactRepo, CampaignContactRepo: ccRepo, ResponseRepo: respRepo, Logger: log}
	seeder := &fakeSeeder{}

	rt := &handler.Router{
		Campaigns: &controller.CampaignController{
			CampaignService:  campaigns,
			FunnelService:    funnel,
			SequenceService:  seq,
			AnalyticsService: analytics,
			Logger:           log,
		},
		Contacts: &controller.ContactController{ContactService: contacts, Logger: log},
		Analytics: &controller.AnalyticsController{
			AnalyticsService: analytics,
			SequenceService:  seq,
			Logger:           log,
			Now:              func() time.Time { return now.Add(time.Hour) },
		},
		Opportunities: &controller.OpportunityController{CampaignService: campaigns, Logger: log},
		Webhooks:      &handler.WebhookHandler{CampaignService: campaigns, Seeder: seeder, Secret: secret, Logger: log},
		Metrics:       m,
		Logger:        log,
	}
	return &server{h: rt.Handler(), seeder: seeder}
}

type envelope map[string]any

func (s *server) do(t *testing.T, method, path string, body any, headers ...string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	var out envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func field(t *testing.T, e envelope, keys ...string) any {
	t.Helper()
	var cur any = map[string]any(e)
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		require.True(t, ok, "expected object at %q", k)
		cur = m[k]
	}
	return cur
}

func str(t *testing.T, e envelope, keys ...string) string {
	t.Helper()
	s, ok := field(t, e, keys...).(string)
	require.True(t, ok, "expected string at %v", keys)
	return s
}

func list(t *testing.T, e envelope, key string) []any {
	t.Helper()
	l, ok := field(t, e, key).([]any)
	require.True(t, ok, "expected list at %q", key)
	return l
}

func TestHealthAndNotFound(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = s.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
}

func TestCampaignLifecycle(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/campaigns", map[string]any{"name": "C"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "product_name")

	code, body = s.do(t, http.MethodPost, "/api/campaigns", map[string]any{"name": "C", "product_name": "AI-Sales"})
	require.Equal(t, http.StatusCreated, code)
	campaignID := str(t, body, "campaign", "id")
	assert.Equal(t, model.CampaignDraft, str(t, body, "campaign", "status"))

	code, _ = s.do(t, http.MethodGet, "/api/campaigns/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodGet, "/api/campaigns/6f1c2a8e-58a4-4c1e-9d5b-3f3c2b1a0e9d", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/contacts", map[string]any{"name": "Alice", "email": "alice@acme.test"})
	require.Equal(t, http.StatusCreated, code)
	ccID := str(t, body, "campaign_contact", "id")

	code, _ = s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/contacts", map[string]any{"name": "Bob", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/personalize", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["personalized"])

	code, body = s.do(t, http.MethodGet, "/api/campaigns/"+campaignID+"/queue", nil)
	require.Equal(t, http.StatusOK, code)
	queue := list(t, body, "queue")
	require.Len(t, queue, 4)
	first := queue[0].(map[string]any)
	tpID := first["id"].(string)
	assert.Equal(t, model.ChannelLinkedin, first["channel"])

	approve := "/api/campaigns/" + campaignID + "/queue/" + tpID + "/approve"
	code, body = s.do(t, http.MethodPost, approve, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.TouchpointApproved, str(t, body, "touchpoint", "status"))

	code, _ = s.do(t, http.MethodPost, approve, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(t, http.MethodGet, "/api/queue/due", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["count"])

	code, body = s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/queue/"+tpID+"/sent", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.TouchpointSent, str(t, body, "touchpoint", "status"))

	respond := "/api/campaigns/" + campaignID + "/contacts/" + ccID + "/respond"
	code, _ = s.do(t, http.MethodPost, respond, map[string]any{"content": "hi", "action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPost, respond, map[string]any{"content": "Let's do it", "action": "won"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.StageConverted, body["new_status"])
	assert.Equal(t, 3.0, body["cancelled"])

	code, body = s.do(t, http.MethodGet, "/api/campaigns/"+campaignID+"/stats", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100.0, field(t, body, "stats", "conversion_rate"))

	code, body = s.do(t, http.MethodGet, "/api/campaigns", nil)
	require.Equal(t, http.StatusOK, code)
	campaigns := list(t, body, "campaigns")
	require.Len(t, campaigns, 1)
	assert.Equal(t, 1.0, campaigns[0].(map[string]any)["stats"].(map[string]any)["converted"])

	code, body = s.do(t, http.MethodPatch, "/api/campaigns/"+campaignID, map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, body = s.do(t, http.MethodPatch, "/api/campaigns/"+campaignID, map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.CampaignActive, str(t, body, "campaign", "status"))

	code, body = s.do(t, http.MethodGet, "/api/analytics/overview", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, field(t, body, "overview", "active_campaigns"))

	code, body = s.do(t, http.MethodGet, "/api/analytics/campaign/"+campaignID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, field(t, body, "status_breakdown", model.StageConverted))
}

func TestTargetsAndContacts(t *testing.T) {
	s := newServer(t)

	_, body := s.do(t, http.MethodPost, "/api/campaigns", map[string]any{"name": "C", "product_name": "P"})
	campaignID := str(t, body, "campaign", "id")

	code, _ := s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/targets", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/targets", map[string]any{"company": "Acme"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["added"])

	code, body = s.do(t, http.MethodPost, "/api/contacts", map[string]any{"name": "Solo"})
	require.Equal(t, http.StatusCreated, code)
	contactID := str(t, body, "contact", "id")

	code, body = s.do(t, http.MethodGet, "/api/contacts?limit=10", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, body["count"])

	code, body = s.do(t, http.MethodGet, "/api/contacts/"+contactID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Solo", str(t, body, "contact", "name"))
	assert.Empty(t, list(t, body, "responses"))
}

func TestOpportunities(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodGet, "/api/demex/go-cards?min_score=70", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["count"])

	code, _ = s.do(t, http.MethodPost, "/api/demex/create-campaign", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/demex/create-campaign", map[string]any{"card_id": "card-9"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodPost, "/api/demex/create-campaign", map[string]any{"card_id": "card-1"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "[DEMEX] logistics", str(t, body, "campaign", "name"))
}

func TestAipmWebhook(t *testing.T) {
	s := newServer(t)
	launch := map[string]any{"project_id": "p1", "project_name": "Freight", "stage": "launch"}

	code, _ := s.do(t, http.MethodPost, "/api/webhooks/aipm", launch)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(t, http.MethodPost, "/api/webhooks/aipm", launch, "X-Webhook-Secret", "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := s.do(t, http.MethodPost, "/api/webhooks/aipm",
		map[string]any{"project_id": "p1", "project_name": "Freight", "stage": "build"}, "X-Webhook-Secret", secret)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Stage build ignored", body["message"])

	code, body = s.do(t, http.MethodPost, "/api/webhooks/aipm", launch, "X-Webhook-Secret", secret)
	require.Equal(t, http.StatusOK, code)
	campaignID := str(t, body, "campaign_id")

	_, body = s.do(t, http.MethodGet, "/api/campaigns/"+campaignID, nil)
	assert.Equal(t, "[Auto] Freight", str(t, body, "campaign", "name"))
	assert.Equal(t, "p1", str(t, body, "campaign", "aipm_project_id"))
}

func TestEmailInboundForm(t *testing.T) {
	s := newServer(t)

	form := url.Values{"from": {"alice@acme.test"}, "subject": {"Re: hello"}, "text": {"sure"}}
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/email-inbound", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice@acme.test", body["from"])
	assert.Equal(t, "Re: hello", body["subject"])
}

func TestTelegramSeeding(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/webhooks/telegram-seeding", map[string]any{"message": "hi", "groups": []string{"g"}})
	assert.Equal(t, http.StatusOK, code)

	s.seeder.err = errors.New("bot down")
	code, body := s.do(t, http.MethodPost, "/api/webhooks/telegram-seeding", map[string]any{"message": "hi"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 2, s.seeder.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodGet, "/health", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `outreach_api_requests_total{method="GET",path="/health",status="200"} 1`)
}

func (s *server) campaignWithContacts(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/campaigns", map[string]any{"name": "C", "product_name": "P"})
	require.Equal(t, http.StatusCreated, code)
	campaignID := str(t, body, "campaign", "id")

	var ccIDs []string
	for _, name := range names {
		code, body = s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/contacts", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, code)
		ccIDs = append(ccIDs, str(t, body, "campaign_contact", "id"))
	}
	code, _ = s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/personalize", nil)
	require.Equal(t, http.StatusOK, code)
	return campaignID, ccIDs
}

func (s *server) firstTouchpoint(t *testing.T, campaignID, ccID string) string {
	t.Helper()
	_, body := s.do(t, http.MethodGet, "/api/campaigns/"+campaignID+"/queue", nil)
	for _, item := range list(t, body, "queue") {
		tp := item.(map[string]any)
		if tp["campaign_contact_id"] == ccID && tp["step"] == 1.0 {
			return tp["id"].(string)
		}
	}
	t.Fatalf("no first touchpoint for %s", ccID)
	return ""
}

func TestRespondWithoutContent(t *testing.T) {
	s := newServer(t)
	campaignID, ccs := s.campaignWithContacts(t, "Alice")

	code, body := s.do(t, http.MethodPost, "/api/campaigns/"+campaignID+"/contacts/"+ccs[0]+"/respond", map[string]any{"action": "won"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.StageConverted, body["new_status"])
}

func TestRespondTouchpointReference(t *testing.T) {
	s := newServer(t)
	campaignID, ccs := s.campaignWithContacts(t, "Alice", "Bob")
	respond := "/api/campaigns/" + campaignID + "/contacts/" + ccs[0] + "/respond"

	code, _ := s.do(t, http.MethodPost, respond, map[string]any{
		"content": "hi", "action": "replied", "touchpoint_id": "6f1c2a8e-58a4-4c1e-9d5b-3f3c2b1a0e9d",
	})
	assert.Equal(t, http.StatusNotFound, code)

	bobTp := s.firstTouchpoint(t, campaignID, ccs[1])
	code, _ = s.do(t, http.MethodPost, respond, map[string]any{"content": "hi", "action": "replied", "touchpoint_id": bobTp})
	assert.Equal(t, http.StatusNotFound, code)

	aliceTp := s.firstTouchpoint(t, campaignID, ccs[0])
	code, body := s.do(t, http.MethodPost, respond, map[string]any{"content": "hi", "action": "replied", "touchpoint_id": aliceTp})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, aliceTp, str(t, body, "response", "touchpoint_id"))
}

func TestQueueActionsScopedToCampaign(t *testing.T) {
	s := newServer(t)
	campaignA, ccs := s.campaignWithContacts(t, "Alice")
	campaignB, _ := s.campaignWithContacts(t)
	tpID := s.firstTouchpoint(t, campaignA, ccs[0])

	code, _ := s.do(t, http.MethodPost, "/api/campaigns/"+campaignB+"/queue/"+tpID+"/approve", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodPost, "/api/campaigns/"+campaignB+"/queue/"+tpID+"/sent", nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, body := s.do(t, http.MethodGet, "/api/campaigns/"+campaignA+"/queue", nil)
	assert.Len(t, list(t, body, "queue"), 4)

	code, _ = s.do(t, http.MethodPost, "/api/campaigns/"+campaignA+"/queue/"+tpID+"/approve", nil)
	assert.Equal(t, http.StatusOK, code)
}
