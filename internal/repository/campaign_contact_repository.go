package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/model"
)

type CampaignContactRepositoryInterface interface {
	Create(ctx context.Context, cc *model.CampaignContact) error
	GetByID(ctx context.Context, id string) (*model.CampaignContact, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.CampaignContact, error)
	ListByContact(ctx context.Context, contactID string) ([]*model.CampaignContact, error)
	UpdateStatus(ctx context.Context, id, status string) error
	TransitionStatus(ctx context.Context, id, from, to string, currentStep int) (bool, error)
}

type CampaignContactRepository struct {
	DB *sql.DB
}

const campaignContactColumns = `id, campaign_id, contact_id, status, current_step, added_at, updated_at`

func (r *CampaignContactRepository) Create(ctx context.Context, cc *model.CampaignContact) error {
	cc.ID = uuid.New().String()
	cc.AddedAt = time.Now().UTC()
	cc.UpdatedAt = cc.AddedAt
	if cc.Status == "" {
		cc.Status = model.StagePending
	}

	query := `
		INSERT INTO sales_campaign_contacts (` + campaignContactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		cc.ID, cc.CampaignID, cc.ContactID, cc.Status, cc.CurrentStep, cc.AddedAt, cc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add contact %s to campaign %s: %w", cc.ContactID, cc.CampaignID, err)
	}
	return nil
}

func (r *CampaignContactRepository) GetByID(ctx context.Context, id string) (*model.CampaignContact, error) {
	query := `SELECT ` + campaignContactColumns + ` FROM sales_campaign_contacts WHERE id=$1`

	var cc model.CampaignContact
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&cc.ID, &cc.CampaignID, &cc.ContactID, &cc.Status, &cc.CurrentStep, &cc.AddedAt, &cc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignContactNotFound(id)
		}
		return nil, err
	}
	return &cc, nil
}

// ListByCampaign returns the campaign's contacts with the contact embedded,
// oldest enrollment first.
func (r *CampaignContactRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.CampaignContact, error) {
	query := `
		SELECT cc.id, cc.campaign_id, cc.contact_id, cc.status, cc.current_step, cc.added_at, cc.updated_at,
			c.id, c.name, c.title, c.company, c.linkedin_url, c.email, c.source, c.notes, c.created_at, c.updated_at
		FROM sales_campaign_contacts cc
		JOIN sales_contacts c ON c.id = cc.contact_id
		WHERE cc.campaign_id = $1
		ORDER BY cc.added_at ASC
	`
	return r.listWithContact(ctx, query, campaignID)
}

func (r *CampaignContactRepository) ListByContact(ctx context.Context, contactID string) ([]*model.CampaignContact, error) {
	query := `
		SELECT cc.id, cc.campaign_id, cc.contact_id, cc.status, cc.current_step, cc.added_at, cc.updated_at,
			c.id, c.name, c.title, c.company, c.linkedin_url, c.email, c.source, c.notes, c.created_at, c.updated_at
		FROM sales_campaign_contacts cc
		JOIN sales_contacts c ON c.id = cc.contact_id
		WHERE cc.contact_id = $1
		ORDER BY cc.added_at ASC
	`
	return r.listWithContact(ctx, query, contactID)
}

func (r *CampaignContactRepository) listWithContact(ctx context.Context, query string, arg string) ([]*model.CampaignContact, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.CampaignContact{}
	for rows.Next() {
		var cc model.CampaignContact
		var c model.Contact
		if err := rows.Scan(
			&cc.ID, &cc.CampaignID, &cc.ContactID, &cc.Status, &cc.CurrentStep, &cc.AddedAt, &cc.UpdatedAt,
			&c.ID, &c.Name, &c.Title, &c.Company, &c.LinkedinURL, &c.Email, &c.Source, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cc.Contact = &c
		out = append(out, &cc)
	}
	return out, rows.Err()
}

func (r *CampaignContactRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE sales_campaign_contacts SET status=$1, updated_at=$2 WHERE id=$3`
	res, err := r.DB.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, appErrors.NewCampaignContactNotFound(id))
}

// TransitionStatus moves the row from one status to another only if it is
// still in the expected one. It reports whether this call won the update.
func (r *CampaignContactRepository) TransitionStatus(ctx context.Context, id, from, to string, currentStep int) (bool, error) {
	query := `
		UPDATE sales_campaign_contacts
		SET status=$1, current_step=$2, updated_at=$3
		WHERE id=$4 AND status=$5
	`
	res, err := r.DB.ExecContext(ctx, query, to, currentStep, time.Now().UTC(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

var _ CampaignContactRepositoryInterface = (*CampaignContactRepository)(nil)
