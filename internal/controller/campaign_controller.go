// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/service"
)

type CampaignController struct {
	CampaignService  *service.CampaignService
	FunnelService    *service.FunnelService
	SequenceService  *service.SequenceService
	AnalyticsService *service.AnalyticsService
	Logger           *zap.Logger
}

// Routes mounts under /api/campaigns.
func (c *CampaignController) Routes(r chi.Router) {
	r.Get("/", c.ListCampaigns)
	r.Post("/", c.CreateCampaign)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", c.GetCampaignDetails)
		r.Patch("/", c.UpdateCampaign)
		r.Post("/contacts", c.AddContact)
		r.Post("/targets", c.AddTargets)
		r.Post("/personalize", c.Personalize)
		r.Get("/queue", c.Queue)
		r.Post("/queue/{touchpointID}/approve", c.Approve)
		r.Post("/queue/{touchpointID}/sent", c.MarkSent)
		r.Post("/contacts/{ccID}/respond", c.Respond)
		r.Get("/stats", c.Stats)
	})
}

type createCampaignRequest struct {
	Name          string  `json:"name" validate:"required"`
	ProductName   string  `json:"product_name" validate:"required"`
	AipmProjectID *string `json:"aipm_project_id"`
	DemexCardID   *string `json:"demex_card_id"`
	PitchHeadline string  `json:"pitch_headline"`
	PitchBody     string  `json:"pitch_body"`
	TargetSegment string  `json:"target_segment"`
}

type updateCampaignRequest struct {
	Name          *string `json:"name" validate:"omitnil,min=1"`
	ProductName   *string `json:"product_name" validate:"omitnil,min=1"`
	PitchHeadline *string `json:"pitch_headline"`
	PitchBody     *string `json:"pitch_body"`
	TargetSegment *string `json:"target_segment"`
	Status        *string `json:"status" validate:"omitnil,oneof=draft active paused ended"`
}

type contactRequest struct {
	Name        string `json:"name" validate:"required"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	LinkedinURL string `json:"linkedin_url" validate:"omitempty,url"`
	Email       string `json:"email" validate:"omitempty,email"`
	Notes       string `json:"notes"`
}

func (req contactRequest) input() service.ContactInput {
	return service.ContactInput{
		Name:        req.Name,
		Title:       req.Title,
		Company:     req.Company,
		LinkedinURL: req.LinkedinURL,
		Email:       req.Email,
		Notes:       req.Notes,
	}
}

type targetsRequest struct {
	Company string   `json:"company" validate:"required"`
	Roles   []string `json:"roles"`
}

type respondRequest struct {
	Content      string  `json:"content"`
	Sentiment    string  `json:"sentiment"`
	Action       string  `json:"action" validate:"omitempty,oneof=replied demo_scheduled won lost none"`
	TouchpointID *string `json:"touchpoint_id" validate:"omitnil,uuid"`
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.CampaignService.ListCampaigns(r.Context())
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "campaigns": campaigns})
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body createCampaignRequest
	if err := DecodeBody(r, &body); err != nil {
		WriteError(w, c.Logger, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), service.CampaignInput{
		Name:          body.Name,
		ProductName:   body.ProductName,
		AipmProjectID: body.AipmProjectID,
		DemexCardID:   body.DemexCardID,
		PitchHeadline: body.PitchHeadline,
		PitchBody:     body.PitchBody,
		TargetSegment: body.TargetSegment,
	})
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "campaign": campaign})
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	details, err := c.CampaignService.GetCampaignDetails(r.Context(), id)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"campaign": details.Campaign,
		"contacts": details.Contacts,
		"stats":    details.Stats,
	})
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	var body updateCampaignRequest
	if err := DecodeBody(r, &body); err != nil {
		WriteError(w, c.Logger, err)
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(r.Context(), id, service.CampaignPatch{
		Name:          body.Name,
		ProductName:   body.ProductName,
		PitchHeadline: body.PitchHeadline,
		PitchBody:     body.PitchBody,
		TargetSegment: body.TargetSegment,
		Status:        body.Status,
	})
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "campaign": campaign})
}

func (c *CampaignController) AddContact(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	var body contactRequest
	if err := DecodeBody(r, &body); err != nil {
		WriteError(w, c.Logger, err)
		return
	}

	cc, err := c.CampaignService.AddContact(r.Context(), id, body.input())
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	contact := cc.Contact
	cc.Contact = nil
	WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "contact": contact, "campaign_contact": cc})
}

func (c *CampaignController) AddTargets(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	var body targetsRequest
	if err := DecodeBody(r, &body); err != nil {
		WriteError(w, c.Logger, err)
		return
	}

	res, err := c.CampaignService.AddTargets(r.Context(), id, body.Company, body.Roles)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "found": res.Found, "added": res.Added, "contacts": res.Contacts})
}

func (c *CampaignController) Personalize(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	sum, err := c.FunnelService.Personalize(r.Context(), id)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"processed":    len(sum.Results),
		"personalized": sum.Personalized,
		"failed":       sum.Failed,
		"results":      sum.Results,
	})
}

func (c *CampaignController) Queue(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	queue, err := c.SequenceService.ListQueue(r.Context(), id)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(queue), "queue": queue})
}

func (c *CampaignController) Approve(w http.ResponseWriter, r *http.Request) {
	c.advance(w, r, c.FunnelService.Approve)
}

func (c *CampaignController) MarkSent(w http.ResponseWriter, r *http.Request) {
	c.advance(w, r, c.FunnelService.MarkSent)
}

func (c *CampaignController) advance(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, id string) (*model.Touchpoint, error)) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	tpID, ok := PathID(w, r, "touchpointID")
	if !ok {
		return
	}
	if err := c.FunnelService.CheckTouchpointCampaign(r.Context(), id, tpID); err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	tp, err := step(r.Context(), tpID)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "touchpoint": tp})
}

func (c *CampaignController) Respond(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	ccID, ok := PathID(w, r, "ccID")
	if !ok {
		return
	}
	var body respondRequest
	if err := DecodeBody(r, &body); err != nil {
		WriteError(w, c.Logger, err)
		return
	}

	out, err := c.FunnelService.LogResponse(r.Context(), id, service.ResponseInput{
		CampaignContactID: ccID,
		TouchpointID:      body.TouchpointID,
		Content:           body.Content,
		Sentiment:         body.Sentiment,
		Action:            body.Action,
	})
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"response":   out.Response,
		"new_status": out.NewStatus,
		"cancelled":  out.Cancelled,
	})
}

func (c *CampaignController) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := c.AnalyticsService.CampaignStats(r.Context(), id)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}
