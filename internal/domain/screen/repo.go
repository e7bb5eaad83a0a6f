package screen

import (
	"context"
	"fmt"
	"time"

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
	return r.fs.Collection("screens")
}

func (r *Repo) Create(ctx context.Context, s Screen) (*Screen, error) {
	ref := r.col().NewDoc()
	s.ID = ids.ScreenID(ref.ID)

	if _, err := ref.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return &s, nil
}

func (r *Repo) Get(ctx context.Context, id ids.ScreenID) (*Screen, error) {
	doc, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: screen %s", ErrNotFound, id)
		}
		return nil, err
	}
	var s Screen
	if err := doc.DataTo(&s); err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

func (r *Repo) Update(ctx context.Context, id ids.ScreenID, updates map[string]any) (*Screen, error) {
	updates["updatedAt"] = time.Now().UTC()
	if _, err := r.col().Doc(id.String()).Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update screen: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Repo) List(ctx context.Context, in ListScreensInput) ([]Screen, error) {
	q := r.col().Query
	if in.OwnerID != "" {
		q = q.Where("ownerId", "==", in.OwnerID.String())
	}
	if in.ActiveOnly {
		q = q.Where("isActive", "==", true)
	}
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q = q.Limit(int(limit))

	return r.collect(q.Documents(ctx))
}

// Search matches listings by search token, the array-contains pattern used
// for name lookup.
func (r *Repo) Search(ctx context.Context, token string, limit int64) ([]Screen, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.col().
		Where("isActive", "==", true).
		Where("searchTokens", "array-contains", token).
		Limit(int(limit))

	return r.collect(q.Documents(ctx))
}

func (r *Repo) collect(iter *firestore.DocumentIterator) ([]Screen, error) {
	out := []Screen{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var s Screen
		if err := doc.DataTo(&s); err != nil {
			return nil, err
		}
		s.ID = ids.ScreenID(doc.Ref.ID)
		out = append(out, s)
	}
	return out, nil
}

// ApplyRating folds one new rating into the aggregate inside a transaction,
// so two concurrent reviews cannot lose each other's contribution.
func (r *Repo) ApplyRating(ctx context.Context, id ids.ScreenID, rating int) error {
	ref := r.col().Doc(id.String())
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: screen %s", ErrNotFound, id)
			}
			return err
		}
		var s Screen
		if err := doc.DataTo(&s); err != nil {
			return err
		}

		count := s.RatingCount + 1
		avg := (s.RatingAvg*float64(s.RatingCount) + float64(rating)) / float64(count)

		return tx.Update(ref, []firestore.Update{
			{Path: "ratingAvg", Value: avg},
			{Path: "ratingCount", Value: count},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
}
