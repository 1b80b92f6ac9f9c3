// internal/model/stats.go
package model

// CampaignStats is the funnel roll-up for one campaign.
type CampaignStats struct {
	Total          int `json:"total"`
	Replied        int `json:"replied"`
	DemoBooked     int `json:"demo_booked"`
	Converted      int `json:"converted"`
	ReplyRate      int `json:"reply_rate"`
	DemoRate       int `json:"demo_rate"`
	ConversionRate int `json:"conversion_rate"`
}

type Overview struct {
	TotalCampaigns  int `json:"total_campaigns"`
	ActiveCampaigns int `json:"active_campaigns"`
	TotalContacts   int `json:"total_contacts"`
	TotalReplied    int `json:"total_replied"`
	TotalDemo       int `json:"total_demo"`
	TotalConverted  int `json:"total_converted"`
	ReplyRate       int `json:"reply_rate"`
	DemoRate        int `json:"demo_rate"`
	ConversionRate  int `json:"conversion_rate"`
}
