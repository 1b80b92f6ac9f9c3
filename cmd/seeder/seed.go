package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/service"
)

type seedOptions struct {
	Contacts    int
	Name        string
	ProductName string
	Seed        int64
	Logger      *zap.Logger
}

type seedResult struct {
	CampaignID string
	Contacts   int
}

var seedTitles = []string{"CEO", "CTO", "VP Sales", "Head of Growth", "Operations Director"}

// seedDemo creates one campaign and enrolls opts.Contacts fake contacts in
// it through the campaign service.
func seedDemo(ctx context.Context, conn *sql.DB, opts seedOptions) (seedResult, error) {
	log := logger.OrNop(opts.Logger)
	faker := gofakeit.New(opts.Seed)

	campaigns := &service.CampaignService{
		CampaignRepo:        &repository.CampaignRepository{DB: conn},
		ContactRepo:         &repository.ContactRepository{DB: conn},
		CampaignContactRepo: &repository.CampaignContactRepository{DB: conn},
		Logger:              log,
	}

	campaign, err := campaigns.CreateCampaign(ctx, service.CampaignInput{
		Name:          opts.Name,
		ProductName:   opts.ProductName,
		PitchHeadline: faker.HipsterSentence(6),
		PitchBody:     faker.Paragraph(1, 3, 12, " "),
		TargetSegment: faker.JobDescriptor() + " " + faker.BuzzWord() + " teams",
	})
	if err != nil {
		return seedResult{}, fmt.Errorf("create campaign: %w", err)
	}

	res := seedResult{CampaignID: campaign.ID}
	for i := 0; i < opts.Contacts; i++ {
		name := faker.Name()
		company := faker.Company()
		_, err := campaigns.AddContact(ctx, campaign.ID, service.ContactInput{
			Name:        name,
			Title:       seedTitles[faker.Number(0, len(seedTitles)-1)],
			Company:     company,
			LinkedinURL: "https://www.linkedin.com/in/" + strings.ToLower(faker.Username()),
			Email:       faker.Email(),
		})
		if err != nil {
			return res, fmt.Errorf("add contact %d: %w", i+1, err)
		}
		res.Contacts++
	}

	log.Info("seeded demo campaign",
		zap.String("campaign_id", res.CampaignID),
		zap.Int("contacts", res.Contacts))
	return res, nil
}
