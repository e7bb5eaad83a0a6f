package booking

import (
	"strings"
	"time"

	"screenrent/backend/internal/ids"
)

// Status is the booking lifecycle state. live and completed are owned by an
// out-of-band fulfillment job; nothing in this service transitions into them.
type Status string

const (
	StatusRequested Status = "requested"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

// PaymentStatus tracks the hold independently of the booking status.
// A refund leaves the booking status at cancelled; refunded exists only here.
type PaymentStatus string

const (
	PaymentNone          PaymentStatus = ""
	PaymentIntentCreated PaymentStatus = "payment_intent_created"
	PaymentCaptured      PaymentStatus = "captured"
	PaymentCancelled     PaymentStatus = "cancelled"
	PaymentRefunded      PaymentStatus = "refunded"
)

type Booking struct {
	ID       ids.BookingID `firestore:"-" json:"id"`
	ScreenID ids.ScreenID  `firestore:"screenId" json:"screenId"`
	// OwnerID is denormalized for display; authorization always reloads
	// the screen instead of trusting it.
	OwnerID  ids.UserID `firestore:"ownerId" json:"ownerId"`
	RenterID ids.UserID `firestore:"renterId" json:"renterId"`

	Status        Status        `firestore:"status" json:"status"`
	PaymentStatus PaymentStatus `firestore:"paymentStatus,omitempty" json:"paymentStatus,omitempty"`

	Dates       []string `firestore:"dates" json:"dates"` // sorted unique ISO calendar days
	AmountTotal int64    `firestore:"amountTotal" json:"amountTotal"`
	Currency    string   `firestore:"currency" json:"currency"`

	PaymentIntentID ids.IntentID `firestore:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	TransferID      string       `firestore:"transferId,omitempty" json:"transferId,omitempty"`
	RefundID        ids.RefundID `firestore:"refundId,omitempty" json:"refundId,omitempty"`

	ContentID           ids.ContentID `firestore:"contentId,omitempty" json:"contentId,omitempty"`
	SpecialInstructions string        `firestore:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`

	AcceptedAt         *time.Time `firestore:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	DeclinedAt         *time.Time `firestore:"declinedAt,omitempty" json:"declinedAt,omitempty"`
	CancelledAt        *time.Time `firestore:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy        ids.UserID `firestore:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancellationReason string     `firestore:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	PaymentConfirmedAt *time.Time `firestore:"paymentConfirmedAt,omitempty" json:"paymentConfirmedAt,omitempty"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type CreateBookingInput struct {
	ScreenID            string   `json:"screenId"`
	Dates               []string `json:"dates"`
	ContentID           string   `json:"contentId"`
	SpecialInstructions string   `json:"specialInstructions"`
}

func (i *CreateBookingInput) Trim() {
	i.ScreenID = strings.TrimSpace(i.ScreenID)
	i.ContentID = strings.TrimSpace(i.ContentID)
	i.SpecialInstructions = strings.TrimSpace(i.SpecialInstructions)
}

type CreateIntentInput struct {
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	ConnectedAccountID string `json:"connectedAccountId"`
	ApplicationFee     int64  `json:"applicationFeeAmount"`
	BookingID          string `json:"bookingId"`
}

func (i *CreateIntentInput) Trim() {
	i.Currency = strings.ToLower(strings.TrimSpace(i.Currency))
	i.ConnectedAccountID = strings.TrimSpace(i.ConnectedAccountID)
	i.BookingID = strings.TrimSpace(i.BookingID)
}

type CreateIntentOutput struct {
	PaymentIntentID ids.IntentID `json:"paymentIntentId"`
	ClientSecret    string       `json:"clientSecret"`
}
