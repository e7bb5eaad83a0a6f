package user

import (
	"time"

	"screenrent/backend/internal/ids"
)

// User types. "both" covers people who list screens and also book them.
const (
	TypeOwner   = "owner"
	TypeCreator = "creator"
	TypeBoth    = "both"
)

func IsValidUserType(t string) bool {
	return t == TypeOwner || t == TypeCreator || t == TypeBoth
}

type Profile struct {
	UID         ids.UserID `firestore:"uid" json:"uid"`
	Email       string     `firestore:"email,omitempty" json:"email,omitempty"`
	DisplayName string     `firestore:"displayName,omitempty" json:"displayName,omitempty"`
	UserType    string     `firestore:"userType,omitempty" json:"userType,omitempty"`
	IsVerified  bool       `firestore:"isVerified" json:"isVerified"`

	// Connected-account mirror, written by onboarding and by webhook
	// reconciliation. Display-only for clients.
	StripeAccountID          ids.AccountID `firestore:"stripeAccountId,omitempty" json:"stripeAccountId,omitempty"`
	StripeOnboardingComplete bool          `firestore:"stripeOnboardingComplete" json:"stripeOnboardingComplete"`
	StripeChargesEnabled     bool          `firestore:"stripeChargesEnabled" json:"stripeChargesEnabled"`
	StripePayoutsEnabled     bool          `firestore:"stripePayoutsEnabled" json:"stripePayoutsEnabled"`

	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
