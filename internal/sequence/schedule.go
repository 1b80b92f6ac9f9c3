// Package sequence holds the outreach schedule and turns a generated message
// bundle into the touchpoints of one contact's sequence.
package sequence

import (
	"fmt"
	"time"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// Slot is one row of a schedule.
type Slot struct {
	Step       int
	Channel    string
	OffsetDays int
	Part       string // which part of the message bundle fills this slot
}

type Schedule []Slot

// Default is the standard four-touch sequence: LinkedIn on day 0, then
// three emails three days apart.
func Default() Schedule {
	return Schedule{
		{Step: 1, Channel: model.ChannelLinkedin, OffsetDays: 0, Part: model.PartLinkedin},
		{Step: 2, Channel: model.ChannelEmail, OffsetDays: 3, Part: model.PartEmail1},
		{Step: 3, Channel: model.ChannelEmail, OffsetDays: 6, Part: model.PartEmail2},
		{Step: 4, Channel: model.ChannelEmail, OffsetDays: 9, Part: model.PartEmail3},
	}
}

// Validate checks that steps are dense from 1 and that every slot names a
// known channel and bundle part.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schedule is empty")
	}
	var probe model.MessageBundle
	for i, slot := range s {
		if slot.Step != i+1 {
			return fmt.Errorf("slot %d has step %d, want %d", i, slot.Step, i+1)
		}
		switch slot.Channel {
		case model.ChannelLinkedin, model.ChannelEmail, model.ChannelTelegram:
		default:
			return fmt.Errorf("slot %d has unknown channel %q", i, slot.Channel)
		}
		if slot.OffsetDays < 0 {
			return fmt.Errorf("slot %d has negative offset", i)
		}
		if _, err := probe.Content(slot.Part); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return nil
}

// Build materializes the touchpoints for one campaign contact. It does not
// persist anything.
func (s Schedule) Build(campaignContactID string, bundle model.MessageBundle, start time.Time) ([]*model.Touchpoint, error) {
	out := make([]*model.Touchpoint, 0, len(s))
	for _, slot := range s {
		content, err := bundle.Content(slot.Part)
		if err != nil {
			return nil, err
		}
		out = append(out, &model.Touchpoint{
			CampaignContactID: campaignContactID,
			Channel:           slot.Channel,
			Step:              slot.Step,
			ScheduledAt:       start.AddDate(0, 0, slot.OffsetDays),
			Content:           content,
			Status:            model.TouchpointPending,
		})
	}
	return out, nil
}
