package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"screenrent/backend/internal/ids"
)

var ErrBadRequest = errors.New("bad request")

func IsErrBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }

type Service struct {
	fs *firestore.Client
}

func NewService(fs *firestore.Client) *Service {
	return &Service{fs: fs}
}

func docID(ownerID ids.UserID, day string) string {
	return fmt.Sprintf("%s_%s", ownerID, day)
}

// RecordCapture folds one captured booking into the owner's rollup for the
// day. Field increments keep concurrent captures additive.
func (s *Service) RecordCapture(ctx context.Context, ownerID ids.UserID, day string, gross, fee int64, bookings int64) error {
	_, err := s.fs.Collection("analytics_daily").Doc(docID(ownerID, day)).Set(ctx, map[string]any{
		"ownerId":    ownerID.String(),
		"date":       day,
		"grossCents": firestore.Increment(gross),
		"feeCents":   firestore.Increment(fee),
		"netCents":   firestore.Increment(gross - fee),
		"bookings":   firestore.Increment(bookings),
		"updatedAt":  time.Now().UTC(),
	}, firestore.MergeAll)
	return err
}

// ListRange returns the owner's rollups for [from, to], inclusive, ordered
// by date.
func (s *Service) ListRange(ctx context.Context, ownerID ids.UserID, from, to string) ([]DailyRollup, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to are required", ErrBadRequest)
	}
	if from > to {
		return nil, fmt.Errorf("%w: from must not be after to", ErrBadRequest)
	}

	iter := s.fs.Collection("analytics_daily").
		Where("ownerId", "==", ownerID.String()).
		Where("date", ">=", from).
		Where("date", "<=", to).
		OrderBy("date", firestore.Asc).
		Documents(ctx)

	out := []DailyRollup{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var r DailyRollup
		if err := doc.DataTo(&r); err != nil {
			return nil, err
		}
		r.ID = doc.Ref.ID
		out = append(out, r)
	}
	return out, nil
}
