// Package like implements per-user wishlists with pure set semantics:
// a membership document under likes/{uid}/screens/{sid} means liked.
package like

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

func (s *Service) col(uid ids.UserID) *firestore.CollectionRef {
	return s.fs.Collection("likes").Doc(uid.String()).Collection("screens")
}

// Like is idempotent; re-liking rewrites the same membership document.
func (s *Service) Like(ctx context.Context, uid ids.UserID, screenID ids.ScreenID) error {
	if screenID == "" {
		return fmt.Errorf("%w: screenId is required", ErrBadRequest)
	}
	_, err := s.col(uid).Doc(screenID.String()).Set(ctx, map[string]any{
		"screenId":  screenID.String(),
		"createdAt": time.Now().UTC(),
	})
	return err
}

// Unlike is idempotent; deleting an absent membership is not an error.
func (s *Service) Unlike(ctx context.Context, uid ids.UserID, screenID ids.ScreenID) error {
	if screenID == "" {
		return fmt.Errorf("%w: screenId is required", ErrBadRequest)
	}
	_, err := s.col(uid).Doc(screenID.String()).Delete(ctx)
	return err
}

func (s *Service) List(ctx context.Context, uid ids.UserID) ([]ids.ScreenID, error) {
	iter := s.col(uid).Documents(ctx)

	out := []ids.ScreenID{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ids.ScreenID(doc.Ref.ID))
	}
	return out, nil
}
