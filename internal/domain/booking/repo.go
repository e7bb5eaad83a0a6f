package booking

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"screenrent/backend/internal/ids"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection("bookings")
}

func (r *Repo) Create(ctx context.Context, b Booking) (*Booking, error) {
	ref := r.col().NewDoc()
	b.ID = ids.BookingID(ref.ID)

	if _, err := ref.Set(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return &b, nil
}

func (r *Repo) Get(ctx context.Context, id ids.BookingID) (*Booking, error) {
	doc, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
		}
		return nil, err
	}
	var b Booking
	if err := doc.DataTo(&b); err != nil {
		return nil, err
	}
	b.ID = id
	return &b, nil
}

// UpdateIfStatus applies updates only if the stored status still equals
// expect at write time. The read-check-write runs inside a Firestore
// transaction, so two racing transitions cannot both win; the loser gets
// ErrConflict.
func (r *Repo) UpdateIfStatus(ctx context.Context, id ids.BookingID, expect Status, updates map[string]any) error {
	ref := r.col().Doc(id.String())
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: booking %s", ErrNotFound, id)
			}
			return err
		}

		cur, _ := doc.Data()["status"].(string)
		if Status(cur) != expect {
			return fmt.Errorf("%w: booking is %s, expected %s", ErrConflict, cur, expect)
		}

		us := make([]firestore.Update, 0, len(updates))
		for path, value := range updates {
			us = append(us, firestore.Update{Path: path, Value: value})
		}
		return tx.Update(ref, us)
	})
}

// SetPaymentConfirmed stamps webhook confirmation of a hold. Idempotent by
// construction: the same event writes the same intent id.
func (r *Repo) SetPaymentConfirmed(ctx context.Context, id ids.BookingID, updates map[string]any) error {
	us := make([]firestore.Update, 0, len(updates))
	for path, value := range updates {
		us = append(us, firestore.Update{Path: path, Value: value})
	}
	_, err := r.col().Doc(id.String()).Update(ctx, us)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return err
}

func (r *Repo) ListForUser(ctx context.Context, uid ids.UserID, role string, limit int) ([]Booking, error) {
	field := "renterId"
	if role == "owner" {
		field = "ownerId"
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	iter := r.col().
		Where(field, "==", uid.String()).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	out := []Booking{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var b Booking
		if err := doc.DataTo(&b); err != nil {
			return nil, err
		}
		b.ID = ids.BookingID(doc.Ref.ID)
		out = append(out, b)
	}
	return out, nil
}
