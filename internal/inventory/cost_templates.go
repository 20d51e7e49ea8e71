package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-workers/internal/common/database"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/models"
)

const costTemplateKeyPrefix = "booking:cost-template:"

// CostTemplateSource loads a lead's tax and fee template. *salesapi.Client satisfies it.
type CostTemplateSource interface {
	GetCostTemplate(ctx context.Context, leadID string) (*models.CostTemplate, error)
}

// CostTemplates is a read-through Redis cache in front of the sales API. Cache errors are
// logged and never fail a lookup.
type CostTemplates struct {
	source CostTemplateSource
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCostTemplates(source CostTemplateSource, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CostTemplates {
	return &CostTemplates{source: source, redis: redis, ttl: ttl, logger: log}
}

func CostTemplateKey(leadID string) string {
	return costTemplateKeyPrefix + leadID
}

// Get returns the lead's cost template and whether it was served from cache.
func (c *CostTemplates) Get(ctx context.Context, leadID string) (*models.CostTemplate, bool, error) {
	key := CostTemplateKey(leadID)

	var cached models.CostTemplate
	err := c.redis.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, true, nil
	}
	if !errors.Is(err, database.ErrCacheMiss) {
		c.logger.Warn("Cost template cache read failed", map[string]interface{}{
			"leadId": leadID,
			"error":  err.Error(),
		})
	}

	tmpl, err := c.source.GetCostTemplate(ctx, leadID)
	if err != nil {
		return nil, false, fmt.Errorf("load cost template for lead %s: %w", leadID, err)
	}

	if err := c.redis.SetJSON(ctx, key, tmpl, c.ttl); err != nil {
		c.logger.Warn("Cost template cache write failed", map[string]interface{}{
			"leadId": leadID,
			"error":  err.Error(),
		})
	}
	return tmpl, false, nil
}

// Invalidate drops the cached template for leadID.
func (c *CostTemplates) Invalidate(ctx context.Context, leadID string) error {
	return c.redis.Del(ctx, CostTemplateKey(leadID))
}
