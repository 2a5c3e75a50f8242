package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pairlens/internal/model"
)

// ReportCache handles Redis operations for final reports
type ReportCache interface {
	Get(ctx context.Context, partnershipID string) (*model.FinalReport, error)
	Set(ctx context.Context, report *model.FinalReport) error
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a new report cache
func NewReportCache(client *redis.Client) ReportCache {
	return &reportCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *reportCache) key(partnershipID string) string {
	return fmt.Sprintf("report:%s", partnershipID)
}

func (c *reportCache) Get(ctx context.Context, partnershipID string) (*model.FinalReport, error) {
	data, err := c.client.Get(ctx, c.key(partnershipID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report model.FinalReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *reportCache) Set(ctx context.Context, report *model.FinalReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(report.PartnershipID), data, c.ttl).Err()
}
