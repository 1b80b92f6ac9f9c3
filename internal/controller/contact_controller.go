package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/service"
)

type ContactController struct {
	ContactService *service.ContactService
	Logger         *zap.Logger
}

// Routes mounts under /api/contacts.
func (c *ContactController) Routes(r chi.Router) {
	r.Get("/", c.ListContacts)
	r.Post("/", c.CreateContact)
	r.Get("/{id}", c.GetContact)
}

func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	contacts, err := c.ContactService.ListContacts(r.Context(), limit)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(contacts), "contacts": contacts})
}

func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	var body contactRequest
	if err := DecodeBody(r, &body); err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	contact, err := c.ContactService.CreateContact(r.Context(), body.input())
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "contact": contact})
}

func (c *ContactController) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(w, r, "id")
	if !ok {
		return
	}
	details, err := c.ContactService.GetContact(r.Context(), id)
	if err != nil {
		WriteError(w, c.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"contact":   details.Contact,
		"campaigns": details.Campaigns,
		"responses": details.Responses,
	})
}
