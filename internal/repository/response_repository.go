package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// ResponseRepositoryInterface is append-only: responses are never updated.
type ResponseRepositoryInterface interface {
	Create(ctx context.Context, resp *model.Response) error
	ListByCampaignContact(ctx context.Context, campaignContactID string) ([]*model.Response, error)
	ListByContact(ctx context.Context, contactID string) ([]*model.Response, error)
}

type ResponseRepository struct {
	DB *sql.DB
}

const responseColumns = `id, campaign_contact_id, touchpoint_id, content, sentiment, action, received_at`

func (r *ResponseRepository) Create(ctx context.Context, resp *model.Response) error {
	resp.ID = uuid.New().String()
	if resp.ReceivedAt.IsZero() {
		resp.ReceivedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sales_responses (` + responseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		resp.ID, resp.CampaignContactID, resp.TouchpointID, resp.Content, resp.Sentiment, resp.Action, resp.ReceivedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to log response: %w", err)
	}
	return nil
}

func (r *ResponseRepository) ListByCampaignContact(ctx context.Context, campaignContactID string) ([]*model.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM sales_responses WHERE campaign_contact_id=$1 ORDER BY received_at ASC`
	return r.list(ctx, query, campaignContactID)
}

// ListByContact returns responses across every campaign the contact is in.
func (r *ResponseRepository) ListByContact(ctx context.Context, contactID string) ([]*model.Response, error) {
	query := `
		SELECT r.id, r.campaign_contact_id, r.touchpoint_id, r.content, r.sentiment, r.action, r.received_at
		FROM sales_responses r
		JOIN sales_campaign_contacts cc ON cc.id = r.campaign_contact_id
		WHERE cc.contact_id=$1
		ORDER BY r.received_at ASC
	`
	return r.list(ctx, query, contactID)
}

func (r *ResponseRepository) list(ctx context.Context, query, arg string) ([]*model.Response, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Response{}
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.ID, &resp.CampaignContactID, &resp.TouchpointID, &resp.Content, &resp.Sentiment, &resp.Action, &resp.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, &resp)
	}
	return out, rows.Err()
}

var _ ResponseRepositoryInterface = (*ResponseRepository)(nil)
