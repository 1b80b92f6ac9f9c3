// internal/model/response.go
package model

import "time"

const (
	ActionReplied       = "replied"
	ActionDemoScheduled = "demo_scheduled"
	ActionWon           = "won"
	ActionLost          = "lost"
	ActionNone          = "none"
)

type Response struct {
	ID                string    `db:"id" json:"id"`
	CampaignContactID string    `db:"campaign_contact_id" json:"campaign_contact_id"`
	TouchpointID      *string   `db:"touchpoint_id" json:"touchpoint_id,omitempty"`
	Content           string    `db:"content" json:"content"`
	Sentiment         string    `db:"sentiment" json:"sentiment"`
	Action            string    `db:"action" json:"action"`
	ReceivedAt        time.Time `db:"received_at" json:"received_at"`
}
