package account

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"screenrent/backend/internal/ids"
)

// EventLog deduplicates webhook deliveries. The processor retries events
// at least once; a guard document keyed by event id makes the second
// delivery a no-op.
type EventLog struct {
	fs *firestore.Client
}

func NewEventLog(fs *firestore.Client) *EventLog {
	return &EventLog{fs: fs}
}

// MarkProcessed records the event id. Returns false when the event was
// already seen, without error.
func (l *EventLog) MarkProcessed(ctx context.Context, eventID ids.EventID, eventType string) (bool, error) {
	ref := l.fs.Collection("stripeEvents").Doc(eventID.String())
	_, err := ref.Create(ctx, map[string]any{
		"type":       eventType,
		"receivedAt": time.Now().UTC(),
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
