package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"todo-bills/internal/config"
	"todo-bills/internal/models"
	"todo-bills/pkg/logger"
)

// EnsureTopic makes sure the change-event topic exists. Failures are logged
// and ignored: without the topic events are dropped, the API still works.
func EnsureTopic(ctx context.Context) {
	cfg := config.Get()
	if len(cfg.KafkaBrokers) == 0 {
		return
	}
	topic := kafka.TopicConfig{
		Topic:             cfg.KafkaTopic,
		NumPartitions:     cfg.KafkaPartitions,
		ReplicationFactor: 1,
	}
	if err := createTopic(ctx, cfg.KafkaBrokers[0], topic); err != nil {
		logger.Debug(ctx, "Kafka topic not created (it may already exist)", "error", err, "topic", topic.Topic)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", topic.Topic, "partitions", topic.NumPartitions)
}

// createTopic asks the cluster controller, found through broker, to create tc.
func createTopic(ctx context.Context, broker string, tc kafka.TopicConfig) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("dial %s: %w", broker, err)
	}
	defer conn.Close()
	ctrl, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	ctrlAddr := net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port))
	ctrlConn, err := kafka.DialContext(ctx, "tcp", ctrlAddr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", ctrlAddr, err)
	}
	defer ctrlConn.Close()
	return ctrlConn.CreateTopics(tc)
}

var (
	writer *kafka.Writer
	wOnce  sync.Once
)

// Producer returns the shared async writer for change events, or nil when no
// brokers are configured. Messages are hashed by key so each owner's events
// land on one partition in order.
func Producer(ctx context.Context) *kafka.Writer {
	wOnce.Do(func() {
		cfg := config.Get()
		if len(cfg.KafkaBrokers) == 0 {
			logger.Info(ctx, "Kafka disabled (no brokers)")
			return
		}
		writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			Async:        true,
			RequiredAcks: kafka.RequireOne,
			Completion:   logFailedBatch,
		}
		logger.Info(ctx, "Kafka producer initialized", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	})
	return writer
}

// logFailedBatch reports async write failures; the writer has no caller to return them to.
func logFailedBatch(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	logger.Warn(context.Background(), "Kafka async write failed", "error", err, "messages", len(msgs))
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher emits change events. A Publisher without a writer drops events.
type Publisher struct {
	w MessageWriter
}

// NewPublisher returns a publisher over w; w may be nil.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

// Publish writes ev keyed by owner so one owner's events stay ordered on a
// single partition.
func (p *Publisher) Publish(ctx context.Context, ev models.ChangeEvent) error {
	if p == nil || p.w == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OwnerID),
		Value: payload,
	})
}

// Topic returns the change-event topic name.
func Topic() string {
	return config.Get().KafkaTopic
}

// Brokers returns Kafka broker addresses.
func Brokers() []string {
	return config.Get().KafkaBrokers
}

// DefaultPublisher wraps the global producer; it drops events when Kafka is disabled.
func DefaultPublisher(ctx context.Context) *Publisher {
	if w := Producer(ctx); w != nil {
		return NewPublisher(w)
	}
	return NewPublisher(nil)
}
