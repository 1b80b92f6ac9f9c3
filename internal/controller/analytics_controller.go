package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/service"
)

// AnalyticsController serves funnel roll-ups and the cross-campaign queue.
type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	SequenceService  *service.SequenceService
	Logger           *zap.Logger
	Now              func() time.Time
}

// Routes mounts under /api/analytics.
func (c *AnalyticsController) Routes(r chi.Router) {
	r.Get("/overview", c.Overview)
	r.Get("/campaign/{id}", c.Campaign)
}

// QueueRoutes mounts under /api/queue.
func (c *AnalyticsController) QueueRoutes(r chi.Router) {
	r.Get("/", c.AllQueued)
	r.Get("/due", c.Due)
}

func (c *AnalyticsController) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := c.AnalyticsService.Overview(r.Context())
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "overview": ov})
}

func (c *AnalyticsController) Campaign(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := c.AnalyticsService.CampaignStats(r.Context(), id)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	breakdown, err := c.AnalyticsService.StatusBreakdown(r.Context(), id)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats, "status_breakdown": breakdown})
}

func (c *AnalyticsController) AllQueued(w http.ResponseWriter, r *http.Request) {
	queue, err := c.SequenceService.ListQueue(r.Context(), "")
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(queue), "queue": queue})
}

func (c *AnalyticsController) Due(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	due, err := c.SequenceService.ListDue(r.Context(), now())
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(due), "due": due})
}
