package review

import (
	"strings"
	"time"

	"screenrent/backend/internal/ids"
)

type Review struct {
	ID        ids.ReviewID `firestore:"-" json:"id"`
	ScreenID  ids.ScreenID `firestore:"screenId" json:"screenId"`
	RenterID  ids.UserID   `firestore:"renterId" json:"renterId"`
	Rating    int          `firestore:"rating" json:"rating"` // 1-5
	Comment   string       `firestore:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time    `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `firestore:"updatedAt" json:"updatedAt"`
}

type CreateReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (i *CreateReviewInput) Trim() {
	i.Comment = strings.TrimSpace(i.Comment)
}
