package bridge

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// DefaultRoles are searched when the caller gives none.
var DefaultRoles = []string{"CEO", "CTO", "VP", "General Manager", "CIO", "IT Director"}

// LeadFinder finds decision makers at a company.
type LeadFinder interface {
	FindContactsByCompany(ctx context.Context, company string, roles []string) []model.Contact
}

// ChainReactionClient calls the ChainReaction headhunter endpoint.
type ChainReactionClient struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func NewChainReactionClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ChainReactionClient {
	return &ChainReactionClient{BaseURL: baseURL, HTTP: newHTTPClient(timeout), Logger: logger}
}

type foundContact struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	LinkedinURL string `json:"linkedin_url"`
	Email       string `json:"email"`
}

// FindContactsByCompany returns an empty slice when the finder is unavailable.
func (c *ChainReactionClient) FindContactsByCompany(ctx context.Context, company string, roles []string) []model.Contact {
	if len(roles) == 0 {
		roles = DefaultRoles
	}

	var out struct {
		Contacts []foundContact `json:"contacts"`
	}
	body := map[string]any{"company": company, "roles": roles}
	if err := doJSON(ctx, c.HTTP, http.MethodPost, joinURL(c.BaseURL, "/api/headhunter"), body, &out); err != nil {
		c.Logger.Warn("headhunter unavailable", zap.String("company", company), zap.Error(err))
		return []model.Contact{}
	}

	contacts := make([]model.Contact, 0, len(out.Contacts))
	for _, fc := range out.Contacts {
		if fc.Name == "" {
			continue
		}
		contacts = append(contacts, model.Contact{
			Name:        fc.Name,
			Title:       fc.Title,
			Company:     fc.Company,
			LinkedinURL: fc.LinkedinURL,
			Email:       fc.Email,
			Source:      model.SourceHeadhunter,
		})
	}
	return contacts
}

var _ LeadFinder = (*ChainReactionClient)(nil)
