// Package events publishes crawl events to a Redis stream for downstream
// consumers (alerting, enrichment). Publishing is best effort: failures are
// logged and never reach the crawl.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/minwoopark/infomore/internal/crawler"
	"github.com/minwoopark/infomore/internal/models"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeNewProductDetected is published when a product is seen for
	// the first time ever.
	EventTypeNewProductDetected EventType = "NEW_PRODUCT_DETECTED"
	// EventTypeRunCompleted is published once per finished crawl run.
	EventTypeRunCompleted EventType = "CRAWL_RUN_COMPLETED"
)

// NewProductDetectedPayload is the NEW_PRODUCT_DETECTED event body.
type NewProductDetectedPayload struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
	NaverProductID string    `json:"naver_product_id"`
	Name           string    `json:"name"`
	Price          int       `json:"price"`
	CategoryID     string    `json:"naver_category_id"`
	DetailURL      string    `json:"detail_url,omitempty"`
	MallName       string    `json:"mall_name,omitempty"`
}

// RunCompletedPayload is the CRAWL_RUN_COMPLETED event body.
type RunCompletedPayload struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Timestamp time.Time          `json:"timestamp"`
	Summary   crawler.RunSummary `json:"summary"`
}

// Publisher writes events onto one Redis stream.
type Publisher struct {
	rdb    *redis.Client
	stream string
	logger *slog.Logger
}

func NewPublisher(ctx context.Context, addr, stream string, logger *slog.Logger) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Publisher{
		rdb:    rdb,
		stream: stream,
		logger: logger.With("component", "events"),
	}, nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}

// ProductDetected publishes a first-sighting event for a product.
func (p *Publisher) ProductDetected(ctx context.Context, rec models.ProductRecord) {
	payload := NewProductDetectedPayload{
		EventID:        uuid.New().String(),
		EventType:      string(EventTypeNewProductDetected),
		Timestamp:      time.Now(),
		NaverProductID: rec.ExternalID,
		Name:           rec.Name,
		Price:          rec.Price,
		CategoryID:     rec.Category.GoverningID(),
		DetailURL:      rec.DetailURL,
		MallName:       rec.MallName,
	}
	p.publish(ctx, EventTypeNewProductDetected, payload)
}

// RunCompleted publishes the run summary.
func (p *Publisher) RunCompleted(ctx context.Context, summary crawler.RunSummary) {
	payload := RunCompletedPayload{
		EventID:   uuid.New().String(),
		EventType: string(EventTypeRunCompleted),
		Timestamp: time.Now(),
		Summary:   summary,
	}
	p.publish(ctx, EventTypeRunCompleted, payload)
}

func (p *Publisher) publish(ctx context.Context, eventType EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal event", "event_type", eventType, "error", err)
		return
	}

	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": string(eventType),
			"payload":    string(data),
		},
	}).Err()
	if err != nil {
		p.logger.Error("failed to publish event", "event_type", eventType, "error", err)
	}
}
