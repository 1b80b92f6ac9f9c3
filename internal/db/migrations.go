package db

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sales_contacts (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		linkedin_url TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'manual',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales_campaigns (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		product_name TEXT NOT NULL,
		aipm_project_id TEXT,
		demex_card_id TEXT,
		pitch_headline TEXT NOT NULL DEFAULT '',
		pitch_body TEXT NOT NULL DEFAULT '',
		target_segment TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales_campaign_contacts (
		id UUID PRIMARY KEY,
		campaign_id UUID NOT NULL REFERENCES sales_campaigns(id) ON DELETE CASCADE,
		contact_id UUID NOT NULL REFERENCES sales_contacts(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'pending',
		current_step INTEGER NOT NULL DEFAULT 0,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (campaign_id, contact_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sales_touchpoints (
		id UUID PRIMARY KEY,
		campaign_contact_id UUID NOT NULL REFERENCES sales_campaign_contacts(id) ON DELETE CASCADE,
		channel TEXT NOT NULL,
		step INTEGER NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		sent_at TIMESTAMPTZ,
		content TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_touchpoints_status_scheduled
		ON sales_touchpoints (status, scheduled_at)`,
	`CREATE TABLE IF NOT EXISTS sales_responses (
		id UUID PRIMARY KEY,
		touchpoint_id UUID REFERENCES sales_touchpoints(id) ON DELETE CASCADE,
		campaign_contact_id UUID NOT NULL REFERENCES sales_campaign_contacts(id) ON DELETE CASCADE,
		content TEXT NOT NULL DEFAULT '',
		sentiment TEXT NOT NULL DEFAULT 'neutral',
		action TEXT NOT NULL DEFAULT 'none',
		received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
