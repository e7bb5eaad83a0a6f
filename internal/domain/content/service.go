package content

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

type Service struct {
	fs *firestore.Client
}

func NewService(fs *firestore.Client) *Service {
	return &Service{fs: fs}
}

func (s *Service) col() *firestore.CollectionRef {
	return s.fs.Collection("content")
}

func (s *Service) Create(ctx context.Context, ownerUID ids.UserID, in CreateContentInput) (*Content, error) {
	in.Trim()

	if in.Kind != KindImage && in.Kind != KindVideo {
		return nil, fmt.Errorf("%w: kind must be image or video", ErrBadRequest)
	}
	if in.StoragePath == "" {
		return nil, fmt.Errorf("%w: storagePath is required", ErrBadRequest)
	}

	now := time.Now().UTC()
	ref := s.col().NewDoc()
	c := Content{
		ID:              ids.ContentID(ref.ID),
		OwnerID:         ownerUID,
		Kind:            in.Kind,
		Title:           in.Title,
		StoragePath:     in.StoragePath,
		DurationSeconds: in.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := ref.Set(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}
	return &c, nil
}

func (s *Service) Get(ctx context.Context, callerUID ids.UserID, id ids.ContentID) (*Content, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: contentId is required", ErrBadRequest)
	}
	doc, err := s.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: content %s", ErrNotFound, id)
		}
		return nil, err
	}
	var c Content
	if err := doc.DataTo(&c); err != nil {
		return nil, err
	}
	c.ID = id
	if c.OwnerID != callerUID {
		return nil, fmt.Errorf("%w: not your content", ErrUnauthorized)
	}
	return &c, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUID ids.UserID, limit int) ([]Content, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	iter := s.col().
		Where("ownerId", "==", ownerUID.String()).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	out := []Content{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c Content
		if err := doc.DataTo(&c); err != nil {
			return nil, err
		}
		c.ID = ids.ContentID(doc.Ref.ID)
		out = append(out, c)
	}
	return out, nil
}
