package content

import (
	"strings"
	"time"

	"screenrent/backend/internal/ids"
)

const (
	KindImage = "image"
	KindVideo = "video"
)

type Content struct {
	ID              ids.ContentID `firestore:"-" json:"id"`
	OwnerID         ids.UserID    `firestore:"ownerId" json:"ownerId"`
	Kind            string        `firestore:"kind" json:"kind"`
	Title           string        `firestore:"title,omitempty" json:"title,omitempty"`
	StoragePath     string        `firestore:"storagePath" json:"storagePath"`
	DurationSeconds int           `firestore:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	CreatedAt       time.Time     `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `firestore:"updatedAt" json:"updatedAt"`
}

type CreateContentInput struct {
	Kind            string `json:"kind"`
	Title           string `json:"title"`
	StoragePath     string `json:"storagePath"`
	DurationSeconds int    `json:"durationSeconds"`
}

func (i *CreateContentInput) Trim() {
	i.Kind = strings.TrimSpace(i.Kind)
	i.Title = strings.TrimSpace(i.Title)
	i.StoragePath = strings.TrimSpace(i.StoragePath)
}
