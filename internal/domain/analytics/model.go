package analytics

import (
	"time"

	"screenrent/backend/internal/ids"
)

// DailyRollup is one owner's revenue for one calendar day. Written when an
// accepted booking captures its hold; read by the owner dashboard.
type DailyRollup struct {
	ID         string     `firestore:"-" json:"id"`
	OwnerID    ids.UserID `firestore:"ownerId" json:"ownerId"`
	Date       string     `firestore:"date" json:"date"` // YYYY-MM-DD
	GrossCents int64      `firestore:"grossCents" json:"grossCents"`
	FeeCents   int64      `firestore:"feeCents" json:"feeCents"`
	NetCents   int64      `firestore:"netCents" json:"netCents"`
	Bookings   int64      `firestore:"bookings" json:"bookings"`
	UpdatedAt  time.Time  `firestore:"updatedAt" json:"updatedAt"`
}
