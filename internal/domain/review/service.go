package review

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"screenrent/backend/internal/domain/screen"
	"screenrent/backend/internal/ids"
)

type Service struct {
	fs      *firestore.Client
	screens *screen.Repo
}

func NewService(fs *firestore.Client, screens *screen.Repo) *Service {
	return &Service{fs: fs, screens: screens}
}

// Create stores one review per renter per screen (deterministic doc id) and
// folds the rating into the screen aggregate. Rating math never touches the
// payment core.
func (s *Service) Create(ctx context.Context, renterUID ids.UserID, screenID ids.ScreenID, in CreateReviewInput) (*Review, error) {
	in.Trim()

	if screenID == "" {
		return nil, fmt.Errorf("%w: screenId is required", ErrBadRequest)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1-5", ErrBadRequest)
	}

	sc, err := s.screens.Get(ctx, screenID)
	if err != nil {
		if screen.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: screen %s", ErrNotFound, screenID)
		}
		return nil, err
	}
	if sc.OwnerID == renterUID {
		return nil, fmt.Errorf("%w: owners cannot review their own screen", ErrUnauthorized)
	}

	now := time.Now().UTC()
	rv := Review{
		ID:        ids.ReviewID(fmt.Sprintf("%s_%s", screenID, renterUID)),
		ScreenID:  screenID,
		RenterID:  renterUID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.fs.Collection("reviews").Doc(rv.ID.String()).Create(ctx, rv)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, fmt.Errorf("%w: you already reviewed this screen", ErrBadRequest)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.screens.ApplyRating(ctx, screenID, in.Rating); err != nil {
		return nil, fmt.Errorf("failed to update rating aggregate: %w", err)
	}

	return &rv, nil
}

func (s *Service) ListByScreen(ctx context.Context, screenID ids.ScreenID, limit int) ([]Review, error) {
	if screenID == "" {
		return nil, fmt.Errorf("%w: screenId is required", ErrBadRequest)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	iter := s.fs.Collection("reviews").
		Where("screenId", "==", screenID.String()).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	out := []Review{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var rv Review
		if err := doc.DataTo(&rv); err != nil {
			return nil, err
		}
		rv.ID = ids.ReviewID(doc.Ref.ID)
		out = append(out, rv)
	}
	return out, nil
}

// WeightedAverage is the aggregate update applied per new rating.
func WeightedAverage(avg float64, count int64, rating int) (float64, int64) {
	newCount := count + 1
	return (avg*float64(count) + float64(rating)) / float64(newCount), newCount
}
