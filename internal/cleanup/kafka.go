package cleanup

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fraccaro/event-calendar-backend/config"
	"github.com/fraccaro/event-calendar-backend/internal/media"
)

const consumerGroup = "media-cleanup-worker"

// deleteRequest is the message published for every dropped gallery reference
type deleteRequest struct {
	Ref         string    `json:"ref"`
	RequestedAt time.Time `json:"requested_at"`
}

// kafkaQueue publishes one message per reference to the cleanup topic.
// Deletions then happen out-of-band in the consumer, which bounds the
// orphaned-blob window without blocking request handling.
type kafkaQueue struct {
	writer *kafka.Writer
}

func NewKafkaQueue(cfg *config.Config) Queue {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaCleanupTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	log.Printf("✅ Kafka cleanup queue initialized (topic %s)", cfg.KafkaCleanupTopic)
	return &kafkaQueue{writer: writer}
}

func (q *kafkaQueue) Submit(ctx context.Context, refs ...string) {
	msgs := make([]kafka.Message, 0, len(refs))
	for _, ref := range refs {
		payload, err := json.Marshal(deleteRequest{Ref: ref, RequestedAt: time.Now()})
		if err != nil {
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(ref), Value: payload})
	}
	if len(msgs) == 0 {
		return
	}

	if err := q.writer.WriteMessages(ctx, msgs...); err != nil {
		log.Printf("⚠️ Failed to enqueue %d media deletions: %v", len(msgs), err)
	}
}

// StartConsumer runs the cleanup consumer loop until ctx is cancelled.
// Each deletion is retried a few times with backoff; exhausted messages are
// logged and dropped (the blob is orphaned, not the update).
func StartConsumer(ctx context.Context, cfg *config.Config, store media.Store) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: consumerGroup,
		Topic:   cfg.KafkaCleanupTopic,
	})

	go func() {
		defer reader.Close()
		log.Println("✅ Media cleanup consumer started")

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("⚠️ Cleanup consumer read error: %v", err)
				continue
			}

			var req deleteRequest
			if err := json.Unmarshal(msg.Value, &req); err != nil {
				log.Printf("⚠️ Cleanup consumer skipping malformed message: %v", err)
				continue
			}

			deleteWithRetry(ctx, store, req.Ref)
		}
	}()
}

func deleteWithRetry(ctx context.Context, store media.Store, ref string) {
	const maxAttempts = 3

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := store.Delete(ctx, ref); err == nil {
			return
		} else if attempt == maxAttempts {
			log.Printf("⚠️ Giving up deleting media %s after %d attempts: %v", ref, maxAttempts, err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
}
