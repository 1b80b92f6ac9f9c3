// internal/model/campaign_contact.go
package model

import "time"

// Funnel stages of a CampaignContact.
const (
	StagePending    = "pending"
	StageInSequence = "in_sequence"
	StageReplied    = "replied"
	StageDemoBooked = "demo_booked"
	StageConverted  = "converted"
	StageLost       = "lost"
)

type CampaignContact struct {
	ID          string    `db:"id" json:"id"`
	CampaignID  string    `db:"campaign_id" json:"campaign_id"`
	ContactID   string    `db:"contact_id" json:"contact_id"`
	Status      string    `db:"status" json:"status"`
	CurrentStep int       `db:"current_step" json:"current_step"`
	AddedAt     time.Time `db:"added_at" json:"added_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Contact is filled by the join query only.
	Contact *Contact `json:"contact,omitempty"`
}

// IsTerminal reports whether the stage can no longer change through the funnel.
func IsTerminal(stage string) bool {
	return stage == StageConverted || stage == StageLost
}
