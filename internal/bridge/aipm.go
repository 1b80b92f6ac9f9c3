package bridge

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ConversionEvidence is what the project tracker receives when a campaign
// wins a customer.
type ConversionEvidence struct {
	CampaignID     string `json:"campaign_id"`
	TotalContacts  int    `json:"total_contacts"`
	Converted      int    `json:"converted"`
	DemoBooked     int    `json:"demo_booked"`
	ReplyRate      int    `json:"reply_rate"`
	ConversionRate int    `json:"conversion_rate"`
	FirstCustomer  string `json:"first_customer,omitempty"`
}

// ProjectReporter moves an upstream project forward on conversion.
type ProjectReporter interface {
	ReportConversion(ctx context.Context, projectID string, evidence ConversionEvidence) error
}

// AipmClient is the HTTP client for the AI-PM project tracker.
type AipmClient struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func NewAipmClient(baseURL string, timeout time.Duration, logger *zap.Logger) *AipmClient {
	return &AipmClient{BaseURL: baseURL, HTTP: newHTTPClient(timeout), Logger: logger}
}

// ReportConversion moves the project to the validate stage with the
// campaign's evidence attached.
func (c *AipmClient) ReportConversion(ctx context.Context, projectID string, evidence ConversionEvidence) error {
	endpoint := joinURL(c.BaseURL, "/api/projects/"+url.PathEscape(projectID)+"/stage")
	body := map[string]any{"stage": "validate", "evidence": evidence}

	if err := doJSON(ctx, c.HTTP, http.MethodPost, endpoint, body, nil); err != nil {
		c.Logger.Warn("failed to report validation", zap.String("project_id", projectID), zap.Error(err))
		return err
	}
	c.Logger.Info("project moved to validate", zap.String("project_id", projectID))
	return nil
}

// GetProject fetches a project record; nil when unavailable.
func (c *AipmClient) GetProject(ctx context.Context, projectID string) map[string]any {
	var out map[string]any
	endpoint := joinURL(c.BaseURL, "/api/projects/"+url.PathEscape(projectID))
	if err := doJSON(ctx, c.HTTP, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil
	}
	return out
}

var _ ProjectReporter = (*AipmClient)(nil)
