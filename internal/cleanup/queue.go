package cleanup

import (
	"context"
	"log"

	"github.com/fraccaro/event-calendar-backend/internal/media"
)

// Queue accepts gallery references whose remote blobs should be removed.
// Submission is best-effort by contract: a failed deletion is logged and
// dropped, never surfaced to the caller, so user-facing operations cannot
// block on cleanup.
type Queue interface {
	Submit(ctx context.Context, refs ...string)
}

// inlineQueue deletes synchronously, one reference at a time. Used when no
// Kafka brokers are configured.
type inlineQueue struct {
	store media.Store
}

func NewInlineQueue(store media.Store) Queue {
	return &inlineQueue{store: store}
}

func (q *inlineQueue) Submit(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if err := q.store.Delete(ctx, ref); err != nil {
			log.Printf("⚠️ Failed to delete media %s: %v", ref, err)
		}
	}
}
