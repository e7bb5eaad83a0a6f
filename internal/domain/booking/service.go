package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"screenrent/backend/internal/domain/screen"
	"screenrent/backend/internal/domain/user"
	"screenrent/backend/internal/ids"
	"screenrent/backend/internal/payments"
)

// Store is the booking persistence surface; *Repo implements it.
type Store interface {
	Create(ctx context.Context, b Booking) (*Booking, error)
	Get(ctx context.Context, id ids.BookingID) (*Booking, error)
	UpdateIfStatus(ctx context.Context, id ids.BookingID, expect Status, updates map[string]any) error
	ListForUser(ctx context.Context, uid ids.UserID, role string, limit int) ([]Booking, error)
}

// ScreenDirectory loads listings for authorization. Ownership is always
// derived from the freshly loaded screen, never from booking.ownerId.
type ScreenDirectory interface {
	Get(ctx context.Context, id ids.ScreenID) (*screen.Screen, error)
}

// UserDirectory resolves the owner's payable account before money is held.
type UserDirectory interface {
	Get(ctx context.Context, uid ids.UserID) (*user.Profile, error)
}

// CaptureRecorder receives per-owner daily revenue rollups. Failures are
// logged, never surfaced: analytics must not block a capture.
type CaptureRecorder interface {
	RecordCapture(ctx context.Context, ownerID ids.UserID, day string, gross, fee int64, bookings int64) error
}

type Service struct {
	store    Store
	screens  ScreenDirectory
	users    UserDirectory
	gateway  payments.Gateway
	recorder CaptureRecorder
}

func NewService(store Store, screens ScreenDirectory, users UserDirectory, gw payments.Gateway) *Service {
	return &Service{store: store, screens: screens, users: users, gateway: gw}
}

// SetCaptureRecorder wires the analytics rollup sink.
func (s *Service) SetCaptureRecorder(r CaptureRecorder) {
	s.recorder = r
}

// Create registers a booking request. No money moves here; the client calls
// CreatePaymentIntent afterwards.
func (s *Service) Create(ctx context.Context, renterUID ids.UserID, in CreateBookingInput) (*Booking, error) {
	in.Trim()

	if in.ScreenID == "" {
		return nil, fmt.Errorf("%w: screenId is required", ErrBadRequest)
	}
	dates, err := NormalizeDates(in.Dates)
	if err != nil {
		return nil, err
	}

	sc, err := s.screens.Get(ctx, ids.NewScreenID(in.ScreenID))
	if err != nil {
		if screen.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: screen %s", ErrNotFound, in.ScreenID)
		}
		return nil, err
	}
	if !sc.IsActive {
		return nil, fmt.Errorf("%w: screen is not active", ErrFailedPrecondition)
	}
	if sc.OwnerID == renterUID {
		return nil, fmt.Errorf("%w: cannot book your own screen", ErrBadRequest)
	}

	amount := sc.DayPrice * int64(len(dates))
	if amount <= 0 {
		return nil, fmt.Errorf("%w: booking amount must be positive", ErrBadRequest)
	}

	now := time.Now().UTC()
	b := Booking{
		ScreenID:            sc.ID,
		OwnerID:             sc.OwnerID,
		RenterID:            renterUID,
		Status:              StatusRequested,
		Dates:               dates,
		AmountTotal:         amount,
		Currency:            sc.Currency,
		ContentID:           ids.NewContentID(in.ContentID),
		SpecialInstructions: in.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	return s.store.Create(ctx, b)
}

// CreatePaymentIntent places a manual-capture hold for a requested booking.
// The booking document is touched only after the gateway call succeeds.
func (s *Service) CreatePaymentIntent(ctx context.Context, callerUID ids.UserID, in CreateIntentInput) (*CreateIntentOutput, error) {
	in.Trim()

	if in.BookingID == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}
	if in.Currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrBadRequest)
	}
	if in.ConnectedAccountID == "" {
		return nil, fmt.Errorf("%w: connectedAccountId is required", ErrBadRequest)
	}

	b, err := s.store.Get(ctx, ids.NewBookingID(in.BookingID))
	if err != nil {
		return nil, err
	}
	if b.RenterID != callerUID {
		return nil, fmt.Errorf("%w: only the renter can fund a booking", ErrUnauthorized)
	}
	if b.Status != StatusRequested {
		return nil, fmt.Errorf("%w: booking is %s, only requested bookings can be funded", ErrFailedPrecondition, b.Status)
	}
	if b.PaymentIntentID != "" {
		return nil, fmt.Errorf("%w: a payment hold already exists for this booking", ErrFailedPrecondition)
	}
	if in.Amount != b.AmountTotal {
		return nil, fmt.Errorf("%w: amount %d does not match booking total %d", ErrBadRequest, in.Amount, b.AmountTotal)
	}
	if in.Currency != b.Currency {
		return nil, fmt.Errorf("%w: currency %s does not match booking currency %s", ErrBadRequest, in.Currency, b.Currency)
	}

	// The destination must be the screen owner's connected account, not
	// whatever the client claims.
	sc, err := s.screens.Get(ctx, b.ScreenID)
	if err != nil {
		return nil, fmt.Errorf("%w: screen %s", ErrNotFound, b.ScreenID)
	}
	owner, err := s.users.Get(ctx, sc.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: screen owner", ErrNotFound)
	}
	if owner.StripeAccountID == "" {
		return nil, fmt.Errorf("%w: screen owner has no payout account", ErrFailedPrecondition)
	}
	if owner.StripeAccountID.String() != in.ConnectedAccountID {
		return nil, fmt.Errorf("%w: connectedAccountId does not belong to the screen owner", ErrBadRequest)
	}

	hold, err := s.gateway.CreateHold(ctx, payments.HoldInput{
		Amount:         in.Amount,
		Currency:       in.Currency,
		Destination:    owner.StripeAccountID,
		ApplicationFee: in.ApplicationFee,
		BookingID:      b.ID,
	})
	if err != nil {
		log.Printf("booking %s: create hold failed: %v", b.ID, err)
		return nil, fmt.Errorf("%w: could not create payment hold", ErrPayment)
	}

	err = s.store.UpdateIfStatus(ctx, b.ID, StatusRequested, map[string]any{
		"paymentIntentId": hold.ID.String(),
		"paymentStatus":   string(PaymentIntentCreated),
		"updatedAt":       time.Now().UTC(),
	})
	if err != nil {
		// The booking moved underneath us; release the orphaned hold so
		// the processor and the store stay consistent.
		if cErr := s.gateway.CancelHold(ctx, hold.ID); cErr != nil {
			log.Printf("booking %s: failed to release orphaned hold %s: %v", b.ID, hold.ID, cErr)
		}
		return nil, err
	}

	return &CreateIntentOutput{PaymentIntentID: hold.ID, ClientSecret: hold.ClientSecret}, nil
}

// Accept captures the hold and moves requested → accepted. Exactly one of
// two racing accepts can win: the capture is idempotency-keyed and the
// status write is conditional.
func (s *Service) Accept(ctx context.Context, callerUID ids.UserID, bookingID ids.BookingID) (*Booking, error) {
	b, _, err := s.loadForOwner(ctx, callerUID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusRequested {
		return nil, fmt.Errorf("%w: booking is %s, only requested bookings can be accepted", ErrFailedPrecondition, b.Status)
	}
	if b.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: no payment hold recorded for booking %s", ErrNotFound, b.ID)
	}

	if _, err := s.gateway.CaptureHold(ctx, b.PaymentIntentID); err != nil {
		log.Printf("booking %s: capture of %s failed: %v", b.ID, b.PaymentIntentID, err)
		return nil, fmt.Errorf("%w: could not capture payment hold", ErrPayment)
	}

	now := time.Now().UTC()
	err = s.store.UpdateIfStatus(ctx, b.ID, StatusRequested, map[string]any{
		"status":        string(StatusAccepted),
		"paymentStatus": string(PaymentCaptured),
		"acceptedAt":    now,
		"updatedAt":     now,
	})
	if err != nil {
		return nil, err
	}

	s.recordCapture(ctx, b)

	b.Status = StatusAccepted
	b.PaymentStatus = PaymentCaptured
	b.AcceptedAt = &now
	b.UpdatedAt = now
	return b, nil
}

// Decline releases the hold (if any) and moves requested → declined.
func (s *Service) Decline(ctx context.Context, callerUID ids.UserID, bookingID ids.BookingID) (*Booking, error) {
	b, _, err := s.loadForOwner(ctx, callerUID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusRequested {
		return nil, fmt.Errorf("%w: booking is %s, only requested bookings can be declined", ErrFailedPrecondition, b.Status)
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":     string(StatusDeclined),
		"declinedAt": now,
		"updatedAt":  now,
	}

	if b.PaymentIntentID != "" {
		if err := s.gateway.CancelHold(ctx, b.PaymentIntentID); err != nil {
			log.Printf("booking %s: cancel of hold %s failed: %v", b.ID, b.PaymentIntentID, err)
			return nil, fmt.Errorf("%w: could not release payment hold", ErrPayment)
		}
		updates["paymentStatus"] = string(PaymentCancelled)
	}

	if err := s.store.UpdateIfStatus(ctx, b.ID, StatusRequested, updates); err != nil {
		return nil, err
	}

	b.Status = StatusDeclined
	if b.PaymentIntentID != "" {
		b.PaymentStatus = PaymentCancelled
	}
	b.DeclinedAt = &now
	b.UpdatedAt = now
	return b, nil
}

// Cancel is available to the screen owner and the renter while the booking
// is requested or accepted. Captured funds are refunded, an uncaptured hold
// is released, and a booking without a hold just changes status.
func (s *Service) Cancel(ctx context.Context, callerUID ids.UserID, bookingID ids.BookingID, reason string) (*Booking, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}

	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	sc, err := s.screens.Get(ctx, b.ScreenID)
	if err != nil {
		return nil, fmt.Errorf("%w: screen %s", ErrNotFound, b.ScreenID)
	}
	if callerUID != sc.OwnerID && callerUID != b.RenterID {
		return nil, fmt.Errorf("%w: only the screen owner or the renter can cancel", ErrUnauthorized)
	}

	switch b.Status {
	case StatusLive, StatusCompleted:
		return nil, fmt.Errorf("%w: booking is %s and can no longer be cancelled", ErrFailedPrecondition, b.Status)
	case StatusCancelled, StatusDeclined:
		return nil, fmt.Errorf("%w: booking is already %s", ErrFailedPrecondition, b.Status)
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":             string(StatusCancelled),
		"cancelledAt":        now,
		"cancelledBy":        callerUID.String(),
		"cancellationReason": reason,
		"updatedAt":          now,
	}

	var refundID ids.RefundID
	switch {
	case b.PaymentStatus == PaymentCaptured:
		refundID, err = s.gateway.CreateRefund(ctx, b.PaymentIntentID, "requested_by_customer")
		if err != nil {
			log.Printf("booking %s: refund of %s failed: %v", b.ID, b.PaymentIntentID, err)
			return nil, fmt.Errorf("%w: could not refund captured payment", ErrPayment)
		}
		updates["paymentStatus"] = string(PaymentRefunded)
		updates["refundId"] = refundID.String()
	case b.PaymentIntentID != "":
		if err := s.gateway.CancelHold(ctx, b.PaymentIntentID); err != nil {
			log.Printf("booking %s: cancel of hold %s failed: %v", b.ID, b.PaymentIntentID, err)
			return nil, fmt.Errorf("%w: could not release payment hold", ErrPayment)
		}
		updates["paymentStatus"] = string(PaymentCancelled)
	}

	if err := s.store.UpdateIfStatus(ctx, b.ID, b.Status, updates); err != nil {
		return nil, err
	}

	b.Status = StatusCancelled
	if refundID != "" {
		b.PaymentStatus = PaymentRefunded
		b.RefundID = refundID
	} else if b.PaymentIntentID != "" {
		b.PaymentStatus = PaymentCancelled
	}
	b.CancelledAt = &now
	b.CancelledBy = callerUID
	b.CancellationReason = reason
	b.UpdatedAt = now
	return b, nil
}

// Get returns a booking to its owner or renter.
func (s *Service) Get(ctx context.Context, callerUID ids.UserID, bookingID ids.BookingID) (*Booking, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if callerUID != b.RenterID && callerUID != b.OwnerID {
		return nil, fmt.Errorf("%w: not a participant of this booking", ErrUnauthorized)
	}
	return b, nil
}

func (s *Service) ListForUser(ctx context.Context, uid ids.UserID, role string, limit int) ([]Booking, error) {
	if role != "owner" && role != "renter" {
		return nil, fmt.Errorf("%w: role must be owner or renter", ErrBadRequest)
	}
	return s.store.ListForUser(ctx, uid, role, limit)
}

// loadForOwner loads the booking plus its screen and verifies the caller
// owns the screen.
func (s *Service) loadForOwner(ctx context.Context, callerUID ids.UserID, bookingID ids.BookingID) (*Booking, *screen.Screen, error) {
	if bookingID == "" {
		return nil, nil, fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	sc, err := s.screens.Get(ctx, b.ScreenID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: screen %s", ErrNotFound, b.ScreenID)
	}
	if sc.OwnerID != callerUID {
		return nil, nil, fmt.Errorf("%w: only the screen owner may decide on this booking", ErrUnauthorized)
	}
	return b, sc, nil
}

func (s *Service) recordCapture(ctx context.Context, b *Booking) {
	if s.recorder == nil {
		return
	}
	fee := payments.DefaultApplicationFee(b.AmountTotal)
	day := time.Now().UTC().Format(dateLayout)
	if err := s.recorder.RecordCapture(ctx, b.OwnerID, day, b.AmountTotal, fee, 1); err != nil {
		log.Printf("booking %s: failed to record capture rollup: %v", b.ID, err)
	}
}
