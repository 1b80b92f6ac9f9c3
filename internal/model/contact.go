// internal/model/contact.go
package model

import "time"

const (
	SourceManual     = "manual"
	SourceHeadhunter = "headhunter"
)

type Contact struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Title       string    `db:"title" json:"title"`
	Company     string    `db:"company" json:"company"`
	LinkedinURL string    `db:"linkedin_url" json:"linkedin_url"`
	Email       string    `db:"email" json:"email"`
	Source      string    `db:"source" json:"source"`
	Notes       string    `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
