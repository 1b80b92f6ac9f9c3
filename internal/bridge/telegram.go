package bridge

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrSeedingUnconfigured is returned when no bot URL is set.
var ErrSeedingUnconfigured = errors.New("telegram seeding bot is not configured")

// TelegramSeeder forwards group seeding requests to the Telegram bot.
type TelegramSeeder struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTelegramSeeder(baseURL string, timeout time.Duration) *TelegramSeeder {
	return &TelegramSeeder{BaseURL: baseURL, HTTP: newHTTPClient(timeout)}
}

func (s *TelegramSeeder) Seed(ctx context.Context, message string, groups []string) error {
	if s.BaseURL == "" {
		return ErrSeedingUnconfigured
	}
	body := map[string]any{"message": message, "groups": groups}
	return doJSON(ctx, s.HTTP, http.MethodPost, joinURL(s.BaseURL, "/seeding"), body, nil)
}
