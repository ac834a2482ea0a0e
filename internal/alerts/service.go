package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/farmgate/storefront/internal/kafka"
	"github.com/farmgate/storefront/internal/redisx"
	"github.com/farmgate/storefront/internal/shop"
)

// StockReader reports current stock for a set of products.
type StockReader interface {
	StockLevels(ctx context.Context, ids []int64) (map[int64]int, error)
}

// Service watches order traffic and raises low-stock alerts. It never
// mutates stock: the checkout transaction already did, this only observes.
type Service struct {
	Repo        StockReader
	Redis       *redis.Client
	Producer    *kafkax.Producer // publishes shop.stock.low
	ServiceName string
	Threshold   int
}

// HandleOrderPlaced is the consumer handler for shop.order.placed.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != shop.EventOrderPlaced {
		return nil
	}

	// Dedup by event id so redelivered messages do not re-alert.
	dkey := fmt.Sprintf(redisx.KeyDedup, "stockwatch", env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[shop.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.ProductID)
	}
	levels, err := s.Repo.StockLevels(ctx, ids)
	if err != nil {
		return err
	}

	for _, alert := range Evaluate(ids, levels, s.Threshold) {
		slog.Warn("stock low",
			slog.Int64("product_id", alert.ProductID),
			slog.Int("remaining", alert.Remaining),
			slog.Int("threshold", alert.Threshold))
		_ = s.Redis.Set(ctx, fmt.Sprintf(redisx.KeyStockLow, alert.ProductID), alert.Remaining, redisx.TTLStockLow).Err()
		s.publish(alert, env.TraceID, env.CorrelationID)
	}
	return nil
}

// Evaluate picks the products at or below the threshold, in the order they
// appeared on the order. Products missing from levels were deleted
// mid-flight and are skipped.
func Evaluate(ids []int64, levels map[int64]int, threshold int) []shop.StockLowPayload {
	var out []shop.StockLowPayload
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		remaining, ok := levels[id]
		if !ok || remaining > threshold {
			continue
		}
		out = append(out, shop.StockLowPayload{ProductID: id, Remaining: remaining, Threshold: threshold})
	}
	return out
}

func (s *Service) publish(p shop.StockLowPayload, trace, correlation string) {
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventStockLow,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: correlation,
		Payload:       kafkax.MustMarshal(p),
	}
	s.Producer.Publish(shop.PartitionKey(p.ProductID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
