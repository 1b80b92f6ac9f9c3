package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Card is an opportunity card as DEMEX returns it. Its fields are owned
// upstream, so it stays a loose map.
type Card map[string]any

// String returns the first non-empty string among keys.
func (c Card) String(keys ...string) string {
	for _, k := range keys {
		if v, ok := c[k]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// OpportunitySource lists scored opportunities.
type OpportunitySource interface {
	ListOpportunities(ctx context.Context, minScore int) []Card
	GetOpportunity(ctx context.Context, id string) Card
}

// DemexClient calls the DEMEX opportunity API.
type DemexClient struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func NewDemexClient(baseURL string, timeout time.Duration, logger *zap.Logger) *DemexClient {
	return &DemexClient{BaseURL: baseURL, HTTP: newHTTPClient(timeout), Logger: logger}
}

// ListOpportunities returns GO-verdict cards; minScore 0 means no floor.
func (c *DemexClient) ListOpportunities(ctx context.Context, minScore int) []Card {
	params := url.Values{"verdict": {"GO"}}
	if minScore > 0 {
		params.Set("min_score", strconv.Itoa(minScore))
	}

	var out struct {
		Cards []Card `json:"cards"`
	}
	endpoint := joinURL(c.BaseURL, "/api/opportunities?"+params.Encode())
	if err := doJSON(ctx, c.HTTP, http.MethodGet, endpoint, nil, &out); err != nil {
		c.Logger.Warn("DEMEX unavailable", zap.Error(err))
		return []Card{}
	}
	if out.Cards == nil {
		return []Card{}
	}
	return out.Cards
}

// GetOpportunity returns nil when the card is missing or DEMEX is down.
func (c *DemexClient) GetOpportunity(ctx context.Context, id string) Card {
	var out struct {
		Card Card `json:"card"`
	}
	endpoint := joinURL(c.BaseURL, "/api/opportunity/"+url.PathEscape(id))
	if err := doJSON(ctx, c.HTTP, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil
	}
	return out.Card
}

var _ OpportunitySource = (*DemexClient)(nil)
