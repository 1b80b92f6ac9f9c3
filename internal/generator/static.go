package generator

import (
	"context"
	"fmt"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// TemplateGenerator fills a fixed bundle from the profile without calling a
// model. It is used when no API key is configured.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(_ context.Context, c ContactProfile, p ProductInfo) (model.MessageBundle, error) {
	company := orUnknown(c.Company)
	return model.MessageBundle{
		Linkedin: fmt.Sprintf("Hi %s, how is %s handling outreach prep today?", c.Name, company),
		Email1: model.EmailMessage{
			Subject: fmt.Sprintf("45 minutes per prospect at %s?", company),
			Body:    fmt.Sprintf("%s, most %s teams spend 45 minutes researching each prospect. Is that true for you?", c.Name, orUnknown(c.Title)),
		},
		Email2: model.EmailMessage{
			Subject: fmt.Sprintf("We cut it to 2 minutes. Can %s?", company),
			Body:    fmt.Sprintf("%s: %s", p.Name, p.PitchHeadline),
		},
		Email3: model.EmailMessage{
			Subject: "Last note from me",
			Body:    "Let me run a free simulation for your company first. If the numbers miss, we stop there. Reply and you get results in three days.",
		},
	}, nil
}

var _ Generator = TemplateGenerator{}
