package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"todo-bills/internal/cache"
	"todo-bills/internal/models"
	"todo-bills/internal/queue"
	"todo-bills/pkg/logger"
)

// TodoLister and BillLister are the store reads the warmer needs.
type TodoLister interface {
	List(ctx context.Context, ownerID string) ([]models.Todo, error)
}

type BillLister interface {
	List(ctx context.Context, ownerID string) ([]models.Bill, error)
}

// Warmer rebuilds an owner's cached list after a change event.
type Warmer struct {
	Todos TodoLister
	Bills BillLister
	Cache *cache.Lists
}

// Handle decodes one event payload and refreshes the matching cached list.
func (w *Warmer) Handle(ctx context.Context, payload []byte) error {
	var ev models.ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if ev.OwnerID == "" {
		return fmt.Errorf("event %s/%s has no owner", ev.Kind, ev.ID)
	}
	gen, cacheable := w.Cache.Version(ctx, ev.Kind, ev.OwnerID)
	if !cacheable {
		return nil
	}
	var (
		list any
		err  error
	)
	switch ev.Kind {
	case models.KindTodo:
		list, err = w.Todos.List(ctx, ev.OwnerID)
	case models.KindBill:
		list, err = w.Bills.List(ctx, ev.OwnerID)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload %s list: %w", ev.Kind, err)
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	// A later change bumps the generation; its own event warms the list then.
	w.Cache.Set(ctx, ev.Kind, ev.OwnerID, gen, b)
	return nil
}

// Reader is the part of *kafka.Reader the consume loop uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Run consumes the change-event topic until ctx is done. Replicas share the
// partitions through the consumer group, so each event warms one process.
func Run(ctx context.Context, w *Warmer) {
	brokers := queue.Brokers()
	if len(brokers) == 0 {
		logger.Info(ctx, "Cache warmer disabled (no Kafka brokers)")
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    queue.Topic(),
		GroupID:  consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Cache warmer started", "topic", queue.Topic(), "group", consumerGroup)
	n := Consume(ctx, reader, w)
	logger.Info(ctx, "Cache warmer stopped", "processed", n)
}

const consumerGroup = "cache-warmers"

// Fetch retries back off between these bounds while the broker is unreachable.
var (
	minFetchBackoff = 250 * time.Millisecond
	maxFetchBackoff = 10 * time.Second
)

// Consume handles messages from r until ctx is done and returns how many were
// handled. A message that cannot be handled is still committed so it does not
// block its partition.
func Consume(ctx context.Context, r Reader, w *Warmer) int64 {
	var processed atomic.Int64
	backoff := minFetchBackoff
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return processed.Load()
			}
			logger.Error(ctx, "Cache warmer fetch failed", "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return processed.Load()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxFetchBackoff)
			continue
		}
		backoff = minFetchBackoff
		if err := w.Handle(ctx, msg.Value); err != nil {
			logger.Warn(ctx, "Cache warm skipped", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		} else {
			processed.Add(1)
		}
		if err := r.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "Cache warmer commit failed", "error", err)
		}
	}
}
