// internal/model/campaign.go
package model

import "time"

const (
	CampaignDraft  = "draft"
	CampaignActive = "active"
	CampaignPaused = "paused"
	CampaignEnded  = "ended"
)

// ValidCampaignStatus reports whether s is one of the campaign statuses.
func ValidCampaignStatus(s string) bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignPaused, CampaignEnded:
		return true
	}
	return false
}

type Campaign struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	ProductName   string    `db:"product_name" json:"product_name"`
	AipmProjectID *string   `db:"aipm_project_id" json:"aipm_project_id,omitempty"`
	DemexCardID   *string   `db:"demex_card_id" json:"demex_card_id,omitempty"`
	PitchHeadline string    `db:"pitch_headline" json:"pitch_headline"`
	PitchBody     string    `db:"pitch_body" json:"pitch_body"`
	TargetSegment string    `db:"target_segment" json:"target_segment"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// HasProjectLink reports whether the campaign is tied to an upstream AI-PM project.
func (c *Campaign) HasProjectLink() bool {
	return c.AipmProjectID != nil && *c.AipmProjectID != ""
}
