package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/cache"
)

// JSONCache is the subset of the Redis client the opportunity cache needs.
type JSONCache interface {
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, out any) error
}

// CachedOpportunities keeps DEMEX card listings for a TTL. Empty results are
// not cached so an outage does not stick.
type CachedOpportunities struct {
	Source OpportunitySource
	Cache  JSONCache
	TTL    time.Duration
	Logger *zap.Logger
}

func (c *CachedOpportunities) ListOpportunities(ctx context.Context, minScore int) []Card {
	key := fmt.Sprintf("demex:cards:%d", minScore)

	var cards []Card
	err := c.Cache.GetJSON(ctx, key, &cards)
	if err == nil {
		return cards
	}
	if !errors.Is(err, cache.ErrMiss) {
		c.Logger.Warn("opportunity cache read failed", zap.Error(err))
	}

	cards = c.Source.ListOpportunities(ctx, minScore)
	if len(cards) > 0 {
		if err := c.Cache.SetJSON(ctx, key, cards, c.TTL); err != nil {
			c.Logger.Warn("opportunity cache write failed", zap.Error(err))
		}
	}
	return cards
}

func (c *CachedOpportunities) GetOpportunity(ctx context.Context, id string) Card {
	key := "demex:card:" + id

	var card Card
	if err := c.Cache.GetJSON(ctx, key, &card); err == nil {
		return card
	}

	card = c.Source.GetOpportunity(ctx, id)
	if card != nil {
		if err := c.Cache.SetJSON(ctx, key, card, c.TTL); err != nil {
			c.Logger.Warn("opportunity cache write failed", zap.Error(err))
		}
	}
	return card
}

var _ OpportunitySource = (*CachedOpportunities)(nil)
