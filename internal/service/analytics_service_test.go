package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	appErrors "github.com/unclebandit/outreach-backend/internal/errors"
	"github.com/unclebandit/outreach-backend/internal/generator"
	"github.com/unclebandit/outreach-backend/internal/model"
)

func contactsWith(statuses map[string]int) []*model.CampaignContact {
	var out []*model.CampaignContact
	for st, n := range statuses {
		for i := 0; i < n; i++ {
			out = append(out, &model.CampaignContact{Status: st})
		}
	}
	return out
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, model.CampaignStats{}, ComputeStats(nil))
}

func TestComputeStats_CumulativeFunnel(t *testing.T) {
	st := ComputeStats(contactsWith(map[string]int{
		model.StagePending:    2,
		model.StageInSequence: 2,
		model.StageReplied:    3,
		model.StageDemoBooked: 2,
		model.StageConverted:  1,
	}))

	assert.Equal(t, model.CampaignStats{
		Total:          10,
		Replied:        6,
		DemoBooked:     3,
		Converted:      1,
		ReplyRate:      60,
		DemoRate:       30,
		ConversionRate: 10,
	}, st)
}

func TestPercentRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 13, percent(1, 8)) // 12.5
	assert.Equal(t, 0, percent(5, 0))
}

func TestComputeStats_Properties(t *testing.T) {
	stages := []string{
		model.StagePending, model.StageInSequence, model.StageReplied,
		model.StageDemoBooked, model.StageConverted, model.StageLost,
	}
	rapid.Check(t, func(t *rapid.T) {
		picked := rapid.SliceOf(rapid.SampledFrom(stages)).Draw(t, "stages")
		ccs := make([]*model.CampaignContact, len(picked))
		for i, st := range picked {
			ccs[i] = &model.CampaignContact{Status: st}
		}

		st := ComputeStats(ccs)
		if st.Total != len(ccs) {
			t.Fatalf("total %d, want %d", st.Total, len(ccs))
		}
		if !(st.Total >= st.Replied && st.Replied >= st.DemoBooked && st.DemoBooked >= st.Converted) {
			t.Fatalf("funnel not monotone: %+v", st)
		}
		for _, r := range []int{st.ReplyRate, st.DemoRate, st.ConversionRate} {
			if r < 0 || r > 100 {
				t.Fatalf("rate out of range: %+v", st)
			}
		}
		if !(st.ReplyRate >= st.DemoRate && st.DemoRate >= st.ConversionRate) {
			t.Fatalf("rates not monotone: %+v", st)
		}
	})
}

func TestOverviewAndBreakdown(t *testing.T) {
	e := newEnv(t, generator.TemplateGenerator{})
	ctx := context.Background()

	c1 := e.campaign(t, nil)
	c2 := e.campaign(t, nil)
	active := model.CampaignActive
	_, err := e.campaigns.UpdateCampaign(ctx, c2.ID, CampaignPatch{Status: &active})
	require.NoError(t, err)

	a, _ := e.personalized(t, c1.ID, "Alice")
	e.enroll(t, c1.ID, "Bob")
	d, _ := e.personalized(t, c2.ID, "Dana")
	e.enroll(t, c2.ID, "Eve")

	_, err = e.funnel.LogResponse(ctx, c1.ID, ResponseInput{CampaignContactID: a.ID, Content: "yes", Action: model.ActionWon})
	require.NoError(t, err)
	_, err = e.funnel.LogResponse(ctx, c2.ID, ResponseInput{CampaignContactID: d.ID, Content: "demo", Action: model.ActionDemoScheduled})
	require.NoError(t, err)

	ov, err := e.analytics.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Overview{
		TotalCampaigns:  2,
		ActiveCampaigns: 1,
		TotalContacts:   4,
		TotalReplied:    2,
		TotalDemo:       2,
		TotalConverted:  1,
		ReplyRate:       50,
		DemoRate:        50,
		ConversionRate:  25,
	}, ov)

	breakdown, err := e.analytics.StatusBreakdown(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{model.StageDemoBooked: 1, model.StagePending: 1}, breakdown)

	st, err := e.analytics.CampaignStats(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, st.ConversionRate)

	_, err = e.analytics.CampaignStats(ctx, "missing")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestOverview_NoCampaigns(t *testing.T) {
	e := newEnv(t, generator.TemplateGenerator{})
	ov, err := e.analytics.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Overview{}, ov)
}
