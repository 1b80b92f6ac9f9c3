package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/service"
)

// OpportunityController exposes DEMEX opportunity cards.
type OpportunityController struct {
	CampaignService *service.CampaignService
	Logger          *zap.Logger
}

// Routes mounts under /api/demex.
func (c *OpportunityController) Routes(r chi.Router) {
	r.Get("/go-cards", c.ListCards)
	r.Post("/create-campaign", c.CreateCampaign)
}

func (c *OpportunityController) ListCards(w http.ResponseWriter, r *http.Request) {
	minScore, _ := strconv.Atoi(r.URL.Query().Get("min_score"))
	cards := c.CampaignService.ListOpportunities(r.Context(), minScore)
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(cards), "cards": cards})
}

type createFromCardRequest struct {
	CardID string `json:"card_id" validate:"required"`
}

func (c *OpportunityController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body createFromCardRequest
	if err := DecodeBody(r, &body); err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	campaign, card, err := c.CampaignService.CreateFromOpportunity(r.Context(), body.CardID)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "campaign": campaign, "source_card": card})
}
