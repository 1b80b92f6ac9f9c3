// internal/model/touchpoint.go
package model

import (
	"strings"
	"time"
)

const (
	ChannelLinkedin = "linkedin"
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

const (
	TouchpointPending   = "pending"
	TouchpointApproved  = "approved"
	TouchpointSent      = "sent"
	TouchpointCancelled = "cancelled"
)

const subjectPrefix = "Subject: "

type Touchpoint struct {
	ID                string     `db:"id" json:"id"`
	CampaignContactID string     `db:"campaign_contact_id" json:"campaign_contact_id"`
	Channel           string     `db:"channel" json:"channel"`
	Step              int        `db:"step" json:"step"`
	ScheduledAt       time.Time  `db:"scheduled_at" json:"scheduled_at"`
	SentAt            *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	Content           string     `db:"content" json:"content"`
	Status            string     `db:"status" json:"status"` // pending, approved, sent, cancelled
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// QueuedTouchpoint is a touchpoint enriched for the approval queue.
type QueuedTouchpoint struct {
	Touchpoint
	CampaignContact *CampaignContact `json:"campaign_contact"`
	Contact         *Contact         `json:"contact"`
	Campaign        *Campaign        `json:"campaign"`
}

// Open reports whether the touchpoint can still be cancelled.
func (t *Touchpoint) Open() bool {
	return t.Status == TouchpointPending || t.Status == TouchpointApproved
}

// EmailContent joins a subject and body the way email touchpoints are stored.
func EmailContent(subject, body string) string {
	return subjectPrefix + subject + "\n\n" + body
}

// SplitEmailContent recovers the subject and body of an email touchpoint.
// Content without a subject header comes back as body only.
func SplitEmailContent(content string) (subject, body string) {
	head, rest, found := strings.Cut(content, "\n\n")
	if !found || !strings.HasPrefix(head, subjectPrefix) {
		return "", content
	}
	return strings.TrimPrefix(head, subjectPrefix), rest
}
