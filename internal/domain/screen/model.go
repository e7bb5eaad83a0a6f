package screen

import (
	"strings"
	"time"

	"screenrent/backend/internal/ids"
)

// TimeRange is a same-day slot in "HH:MM" wall-clock time, interpreted in
// the screen's timezone. Start < End always.
type TimeRange struct {
	Start string `firestore:"start" json:"start"`
	End   string `firestore:"end" json:"end"`
}

// Availability maps weekday (0=Sunday .. 6=Saturday, as a string key because
// Firestore maps are string-keyed) to sorted non-overlapping ranges.
type Availability map[string][]TimeRange

type GeoPoint struct {
	Lat float64 `firestore:"lat" json:"lat"`
	Lng float64 `firestore:"lng" json:"lng"`
}

type Screen struct {
	ID           ids.ScreenID `firestore:"-" json:"id"`
	OwnerID      ids.UserID   `firestore:"ownerId" json:"ownerId"`
	Name         string       `firestore:"name" json:"name"`
	NameLower    string       `firestore:"nameLower" json:"nameLower"`
	Slug         string       `firestore:"slug" json:"slug"`
	Description  string       `firestore:"description,omitempty" json:"description,omitempty"`
	DayPrice     int64        `firestore:"dayPrice" json:"dayPrice"` // minor currency units per calendar day
	Currency     string       `firestore:"currency" json:"currency"`
	Location     GeoPoint     `firestore:"location" json:"location"`
	Address      string       `firestore:"address,omitempty" json:"address,omitempty"`
	Timezone     string       `firestore:"timezone" json:"timezone"` // IANA name
	Availability Availability `firestore:"availability,omitempty" json:"availability,omitempty"`
	IsActive     bool         `firestore:"isActive" json:"isActive"`
	RatingAvg    float64      `firestore:"ratingAvg" json:"ratingAvg"`
	RatingCount  int64        `firestore:"ratingCount" json:"ratingCount"`
	SearchTokens []string     `firestore:"searchTokens,omitempty" json:"searchTokens,omitempty"`
	CreatedAt    time.Time    `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `firestore:"updatedAt" json:"updatedAt"`
}

type CreateScreenInput struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	DayPrice     int64        `json:"dayPrice"`
	Currency     string       `json:"currency"`
	Location     GeoPoint     `json:"location"`
	Address      string       `json:"address"`
	Timezone     string       `json:"timezone"`
	Availability Availability `json:"availability"`
}

func (i *CreateScreenInput) Trim() {
	i.Name = strings.TrimSpace(i.Name)
	i.Description = strings.TrimSpace(i.Description)
	i.Currency = strings.ToLower(strings.TrimSpace(i.Currency))
	i.Address = strings.TrimSpace(i.Address)
	i.Timezone = strings.TrimSpace(i.Timezone)
}

type UpdateScreenInput struct {
	Name         *string       `json:"name"`
	Description  *string       `json:"description"`
	DayPrice     *int64        `json:"dayPrice"`
	Location     *GeoPoint     `json:"location"`
	Address      *string       `json:"address"`
	Timezone     *string       `json:"timezone"`
	Availability *Availability `json:"availability"`
	IsActive     *bool         `json:"isActive"`
}

type ListScreensInput struct {
	OwnerID    ids.UserID
	ActiveOnly bool
	Limit      int64
}
