// Package generator produces the personalized message bundle for a contact.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// ErrMalformedOutput is returned when the model's reply cannot be read as a
// complete bundle.
var ErrMalformedOutput = errors.New("malformed generator output")

// ContactProfile is what the generator knows about the recipient.
type ContactProfile struct {
	Name    string
	Title   string
	Company string
	Notes   string
}

// ProductInfo is what the generator knows about the offer.
type ProductInfo struct {
	Name          string
	PitchHeadline string
	PitchBody     string
	TargetSegment string
}

// Generator turns a profile and a product into a message bundle.
type Generator interface {
	Generate(ctx context.Context, contact ContactProfile, product ProductInfo) (model.MessageBundle, error)
}

// ProfileFromContact maps a stored contact to a generator profile.
func ProfileFromContact(c *model.Contact) ContactProfile {
	if c == nil {
		return ContactProfile{}
	}
	return ContactProfile{Name: c.Name, Title: c.Title, Company: c.Company, Notes: c.Notes}
}

// ProductFromCampaign maps a campaign to the product the generator pitches.
func ProductFromCampaign(c *model.Campaign) ProductInfo {
	return ProductInfo{
		Name:          c.ProductName,
		PitchHeadline: c.PitchHeadline,
		PitchBody:     c.PitchBody,
		TargetSegment: c.TargetSegment,
	}
}

// wireBundle is the JSON shape the model is asked to return.
type wireBundle struct {
	Linkedin      string `json:"linkedin"`
	EmailSubject1 string `json:"email_subject1"`
	Email1        string `json:"email1"`
	EmailSubject2 string `json:"email_subject2"`
	Email2        string `json:"email2"`
	EmailSubject3 string `json:"email_subject3"`
	Email3        string `json:"email3"`
}

var (
	codeFence  = regexp.MustCompile("(?s)```(?:json)?\\n?(.*?)```")
	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseBundle extracts a bundle from raw model text. Markdown fences and
// surrounding prose are tolerated; a missing part is not.
func ParseBundle(text string) (model.MessageBundle, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, "$1"))
	raw := jsonObject.FindString(cleaned)
	if raw == "" {
		return model.MessageBundle{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedOutput)
	}

	var w wireBundle
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return model.MessageBundle{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	b := model.MessageBundle{
		Linkedin: strings.TrimSpace(w.Linkedin),
		Email1:   model.EmailMessage{Subject: strings.TrimSpace(w.EmailSubject1), Body: strings.TrimSpace(w.Email1)},
		Email2:   model.EmailMessage{Subject: strings.TrimSpace(w.EmailSubject2), Body: strings.TrimSpace(w.Email2)},
		Email3:   model.EmailMessage{Subject: strings.TrimSpace(w.EmailSubject3), Body: strings.TrimSpace(w.Email3)},
	}
	if !b.Complete() {
		return model.MessageBundle{}, fmt.Errorf("%w: bundle is missing parts", ErrMalformedOutput)
	}
	return b, nil
}
