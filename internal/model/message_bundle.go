// internal/model/message_bundle.go
package model

import "fmt"

// EmailMessage is one generated email.
type EmailMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MessageBundle is the fixed-shape output of the message generator for one
// contact: a LinkedIn opener and three emails.
type MessageBundle struct {
	Linkedin string       `json:"linkedin"`
	Email1   EmailMessage `json:"email1"`
	Email2   EmailMessage `json:"email2"`
	Email3   EmailMessage `json:"email3"`
}

// Keys naming the parts of a bundle.
const (
	PartLinkedin = "linkedin"
	PartEmail1   = "email1"
	PartEmail2   = "email2"
	PartEmail3   = "email3"
)

// Content returns the stored touchpoint content for a bundle part. Email parts
// carry their subject line.
func (b MessageBundle) Content(part string) (string, error) {
	switch part {
	case PartLinkedin:
		return b.Linkedin, nil
	case PartEmail1:
		return EmailContent(b.Email1.Subject, b.Email1.Body), nil
	case PartEmail2:
		return EmailContent(b.Email2.Subject, b.Email2.Body), nil
	case PartEmail3:
		return EmailContent(b.Email3.Subject, b.Email3.Body), nil
	}
	return "", fmt.Errorf("unknown message part %q", part)
}

// Complete reports whether every part of the bundle has text.
func (b MessageBundle) Complete() bool {
	return b.Linkedin != "" &&
		b.Email1.Subject != "" && b.Email1.Body != "" &&
		b.Email2.Subject != "" && b.Email2.Body != "" &&
		b.Email3.Subject != "" && b.Email3.Body != ""
}
