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

type TouchpointRepositoryInterface interface {
	Create(ctx context.Context, t *model.Touchpoint) error
	GetByID(ctx context.Context, id string) (*model.Touchpoint, error)
	ListByCampaignContact(ctx context.Context, campaignContactID string) ([]*model.Touchpoint, error)
	UpdateStatus(ctx context.Context, id, status string, sentAt *time.Time) error
	ListQueued(ctx context.Context, campaignID string) ([]*model.QueuedTouchpoint, error)
	ListDue(ctx context.Context, now time.Time) ([]*model.QueuedTouchpoint, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

type TouchpointRepository struct {
	DB *sql.DB
}

const touchpointColumns = `id, campaign_contact_id, channel, step, scheduled_at, sent_at, content, status, created_at`

// Create inserts one touchpoint. Batches are built by the caller out of
// independent Create calls.
func (r *TouchpointRepository) Create(ctx context.Context, t *model.Touchpoint) error {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()
	if t.Status == "" {
		t.Status = model.TouchpointPending
	}

	query := `
		INSERT INTO sales_touchpoints (` + touchpointColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.CampaignContactID, t.Channel, t.Step, t.ScheduledAt.UTC(), t.SentAt, t.Content, t.Status, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create touchpoint step %d: %w", t.Step, err)
	}
	return nil
}

func (r *TouchpointRepository) GetByID(ctx context.Context, id string) (*model.Touchpoint, error) {
	query := `SELECT ` + touchpointColumns + ` FROM sales_touchpoints WHERE id=$1`

	t, err := scanTouchpoint(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTouchpointNotFound(id)
		}
		return nil, err
	}
	return t, nil
}

// ListByCampaignContact returns the sequence ordered by step
func (r *TouchpointRepository) ListByCampaignContact(ctx context.Context, campaignContactID string) ([]*model.Touchpoint, error) {
	query := `SELECT ` + touchpointColumns + ` FROM sales_touchpoints WHERE campaign_contact_id=$1 ORDER BY step, created_at`

	rows, err := r.DB.QueryContext(ctx, query, campaignContactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Touchpoint{}
	for rows.Next() {
		t, err := scanTouchpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateStatus sets status and, when sentAt is non-nil, sent_at.
func (r *TouchpointRepository) UpdateStatus(ctx context.Context, id, status string, sentAt *time.Time) error {
	var (
		res sql.Result
		err error
	)
	if sentAt != nil {
		res, err = r.DB.ExecContext(ctx, `UPDATE sales_touchpoints SET status=$1, sent_at=$2 WHERE id=$3`, status, sentAt.UTC(), id)
	} else {
		res, err = r.DB.ExecContext(ctx, `UPDATE sales_touchpoints SET status=$1 WHERE id=$2`, status, id)
	}
	if err != nil {
		return err
	}
	return requireAffected(res, appErrors.NewTouchpointNotFound(id))
}

const queuedSelect = `
	SELECT t.id, t.campaign_contact_id, t.channel, t.step, t.scheduled_at, t.sent_at, t.content, t.status, t.created_at,
		cc.id, cc.campaign_id, cc.contact_id, cc.status, cc.current_step, cc.added_at, cc.updated_at,
		c.id, c.name, c.title, c.company, c.linkedin_url, c.email, c.source, c.notes, c.created_at, c.updated_at,
		cp.id, cp.name, cp.product_name, cp.aipm_project_id, cp.demex_card_id, cp.pitch_headline, cp.pitch_body,
		cp.target_segment, cp.status, cp.created_at, cp.updated_at
	FROM sales_touchpoints t
	JOIN sales_campaign_contacts cc ON cc.id = t.campaign_contact_id
	JOIN sales_contacts c ON c.id = cc.contact_id
	JOIN sales_campaigns cp ON cp.id = cc.campaign_id
`

// ListQueued returns pending touchpoints with their contact and campaign,
// earliest first. An empty campaignID means every campaign.
func (r *TouchpointRepository) ListQueued(ctx context.Context, campaignID string) ([]*model.QueuedTouchpoint, error) {
	query := queuedSelect + ` WHERE t.status = $1`
	args := []any{model.TouchpointPending}
	if campaignID != "" {
		query += ` AND cc.campaign_id = $2`
		args = append(args, campaignID)
	}
	query += ` ORDER BY t.scheduled_at ASC, t.step ASC`
	return r.listQueued(ctx, query, args...)
}

// ListDue returns approved touchpoints whose scheduled time has passed.
func (r *TouchpointRepository) ListDue(ctx context.Context, now time.Time) ([]*model.QueuedTouchpoint, error) {
	query := queuedSelect + ` WHERE t.status = $1 AND t.scheduled_at <= $2 ORDER BY t.scheduled_at ASC, t.step ASC`
	return r.listQueued(ctx, query, model.TouchpointApproved, now.UTC())
}

func (r *TouchpointRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales_touchpoints WHERE status=$1`, status).Scan(&count)
	return count, err
}

func (r *TouchpointRepository) listQueued(ctx context.Context, query string, args ...any) ([]*model.QueuedTouchpoint, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.QueuedTouchpoint{}
	for rows.Next() {
		var (
			q  model.QueuedTouchpoint
			cc model.CampaignContact
			c  model.Contact
			cp model.Campaign
		)
		t := &q.Touchpoint
		if err := rows.Scan(
			&t.ID, &t.CampaignContactID, &t.Channel, &t.Step, &t.ScheduledAt, &t.SentAt, &t.Content, &t.Status, &t.CreatedAt,
			&cc.ID, &cc.CampaignID, &cc.ContactID, &cc.Status, &cc.CurrentStep, &cc.AddedAt, &cc.UpdatedAt,
			&c.ID, &c.Name, &c.Title, &c.Company, &c.LinkedinURL, &c.Email, &c.Source, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
			&cp.ID, &cp.Name, &cp.ProductName, &cp.AipmProjectID, &cp.DemexCardID, &cp.PitchHeadline, &cp.PitchBody,
			&cp.TargetSegment, &cp.Status, &cp.CreatedAt, &cp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		q.CampaignContact = &cc
		q.Contact = &c
		q.Campaign = &cp
		out = append(out, &q)
	}
	return out, rows.Err()
}

func scanTouchpoint(row rowScanner) (*model.Touchpoint, error) {
	var t model.Touchpoint
	err := row.Scan(&t.ID, &t.CampaignContactID, &t.Channel, &t.Step, &t.ScheduledAt, &t.SentAt, &t.Content, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var _ TouchpointRepositoryInterface = (*TouchpointRepository)(nil)
