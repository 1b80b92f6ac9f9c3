// internal/handler/webhook_handler.go
package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/controller"
	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/service"
)

// Seeder forwards a seeding request to the Telegram bot.
type Seeder interface {
	Seed(ctx context.Context, message string, groups []string) error
}

// WebhookHandler receives calls from upstream systems.
type WebhookHandler struct {
	CampaignService *service.CampaignService
	Seeder          Seeder
	Secret          string
	Logger          *zap.Logger
}

// Routes mounts under /api/webhooks.
func (h *WebhookHandler) Routes(r chi.Router) {
	r.Post("/aipm", h.AipmLaunch)
	r.Post("/email-inbound", h.EmailInbound)
	r.Post("/telegram-seeding", h.TelegramSeeding)
}

type aipmPayload struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	ProductName string `json:"product_name"`
	Stage       string `json:"stage"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	DemexCardID string `json:"demex_card_id"`
}

func (h *WebhookHandler) log() *zap.Logger {
	return logger.OrNop(h.Logger)
}

// authorized compares the shared secret header. An unset secret rejects
// every call.
func (h *WebhookHandler) authorized(r *http.Request) bool {
	got := r.Header.Get("X-Webhook-Secret")
	if h.Secret == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) == 1
}

// AipmLaunch creates a draft campaign when an AI-PM project reaches launch.
func (h *WebhookHandler) AipmLaunch(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		controller.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body aipmPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		controller.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := h.CampaignService.CreateFromLaunch(r.Context(), service.ProjectLaunch{
		ProjectID:   body.ProjectID,
		ProjectName: body.ProjectName,
		ProductName: body.ProductName,
		Stage:       body.Stage,
		Domain:      body.Domain,
		Description: body.Description,
		DemexCardID: body.DemexCardID,
	})
	if err != nil {
		controller.WriteError(w, h.Logger, err)
		return
	}
	if campaign == nil {
		controller.WriteMessage(w, http.StatusOK, "Stage "+body.Stage+" ignored")
		return
	}

	h.log().Info("AI-PM launch trigger",
		zap.String("project_id", body.ProjectID),
		zap.String("campaign_id", campaign.ID))
	controller.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Campaign created",
		"campaign_id": campaign.ID,
	})
}

type inboundEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// EmailInbound acknowledges inbound email from the mail provider's parse
// hook. The message is logged only; nothing is matched to contacts.
func (h *WebhookHandler) EmailInbound(w http.ResponseWriter, r *http.Request) {
	var msg inboundEmail
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			controller.WriteMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseMultipartForm(10 << 20); err != nil && err != http.ErrNotMultipart {
			controller.WriteMessage(w, http.StatusBadRequest, "invalid form body")
			return
		}
		msg = inboundEmail{
			From:    r.FormValue("from"),
			To:      r.FormValue("to"),
			Subject: r.FormValue("subject"),
			Text:    r.FormValue("text"),
		}
	}

	h.log().Info("inbound email", zap.String("from", msg.From), zap.String("subject", msg.Subject))
	controller.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email received",
		"from":    msg.From,
		"subject": msg.Subject,
	})
}

type seedingRequest struct {
	Message string   `json:"message"`
	Groups  []string `json:"groups"`
}

// TelegramSeeding forwards a seeding request to the bot.
func (h *WebhookHandler) TelegramSeeding(w http.ResponseWriter, r *http.Request) {
	var body seedingRequest
	if err := controller.DecodeBody(r, &body); err != nil {
		controller.WriteError(w, h.Logger, err)
		return
	}

	if err := h.Seeder.Seed(r.Context(), body.Message, body.Groups); err != nil {
		h.log().Warn("telegram seeding failed", zap.Error(err))
		controller.WriteMessage(w, http.StatusBadGateway, "tg-claude-bot seeding failed")
		return
	}
	controller.WriteMessage(w, http.StatusOK, "Seeding request sent")
}

// Health reports liveness.
func Health(name, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		controller.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"service": name,
			"version": version,
			"ts":      time.Now().UTC().Format(time.RFC3339),
		})
	}
}
