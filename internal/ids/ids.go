// Package ids defines distinct identifier types so that a screen id can
// never be passed where a booking id is expected.
package ids

import "strings"

type UserID string
type ScreenID string
type BookingID string
type ContentID string
type ReviewID string

// AccountID is a Stripe connected-account id (acct_...).
type AccountID string

// IntentID is a Stripe payment-intent id (pi_...), used as the hold handle.
type IntentID string

// RefundID is a Stripe refund id (re_...).
type RefundID string

// EventID is a Stripe webhook event id (evt_...).
type EventID string

func NewUserID(s string) UserID       { return UserID(strings.TrimSpace(s)) }
func NewScreenID(s string) ScreenID   { return ScreenID(strings.TrimSpace(s)) }
func NewBookingID(s string) BookingID { return BookingID(strings.TrimSpace(s)) }
func NewContentID(s string) ContentID { return ContentID(strings.TrimSpace(s)) }
func NewReviewID(s string) ReviewID   { return ReviewID(strings.TrimSpace(s)) }
func NewAccountID(s string) AccountID { return AccountID(strings.TrimSpace(s)) }
func NewIntentID(s string) IntentID   { return IntentID(strings.TrimSpace(s)) }
func NewEventID(s string) EventID     { return EventID(strings.TrimSpace(s)) }

func (id UserID) String() string    { return string(id) }
func (id ScreenID) String() string  { return string(id) }
func (id BookingID) String() string { return string(id) }
func (id ContentID) String() string { return string(id) }
func (id ReviewID) String() string  { return string(id) }
func (id AccountID) String() string { return string(id) }
func (id IntentID) String() string  { return string(id) }
func (id RefundID) String() string  { return string(id) }
func (id EventID) String() string   { return string(id) }
