// internal/service/contact_service.go
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

const (
	defaultContactLimit = 100
	maxContactLimit     = 500
)

type ContactService struct {
	ContactRepo         repository.ContactRepositoryInterface
	CampaignContactRepo repository.CampaignContactRepositoryInterface
	ResponseRepo        repository.ResponseRepositoryInterface
	Logger              *zap.Logger
}

// ContactInput carries the writable fields of a contact.
type ContactInput struct {
	Name        string
	Title       string
	Company     string
	LinkedinURL string
	Email       string
	Notes       string
	Source      string
}

func (in ContactInput) toModel() (*model.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErrors.NewValidation("name", "name required")
	}
	source := in.Source
	if source == "" {
		source = model.SourceManual
	}
	return &model.Contact{
		Name:        name,
		Title:       in.Title,
		Company:     in.Company,
		LinkedinURL: in.LinkedinURL,
		Email:       in.Email,
		Notes:       in.Notes,
		Source:      source,
	}, nil
}

// ContactDetails is a contact with its campaign memberships and the
// responses logged against them.
type ContactDetails struct {
	Contact   *model.Contact           `json:"contact"`
	Campaigns []*model.CampaignContact `json:"campaigns"`
	Responses []*model.Response        `json:"responses"`
}

func (s *ContactService) CreateContact(ctx context.Context, in ContactInput) (*model.Contact, error) {
	c, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.ContactRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListContacts returns the newest contacts first. limit falls back to 100
// and is capped at 500.
func (s *ContactService) ListContacts(ctx context.Context, limit int) ([]*model.Contact, error) {
	if limit < 1 {
		limit = defaultContactLimit
	}
	if limit > maxContactLimit {
		limit = maxContactLimit
	}
	return s.ContactRepo.List(ctx, limit)
}

func (s *ContactService) GetContact(ctx context.Context, id string) (*ContactDetails, error) {
	c, err := s.ContactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ccs, err := s.CampaignContactRepo.ListByContact(ctx, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.ResponseRepo.ListByContact(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, cc := range ccs {
		cc.Contact = nil
	}
	return &ContactDetails{Contact: c, Campaigns: ccs, Responses: responses}, nil
}
