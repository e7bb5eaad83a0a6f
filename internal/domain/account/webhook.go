package account

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v78"

	"screenrent/backend/internal/domain/booking"
	"screenrent/backend/internal/domain/user"
	"screenrent/backend/internal/ids"
	"screenrent/backend/internal/payments"
)

// UserFlagStore mirrors processor-side account state onto user documents.
type UserFlagStore interface {
	FindByStripeAccount(ctx context.Context, accountID ids.AccountID) (*user.Profile, error)
	UpdateAccountFlags(ctx context.Context, uid ids.UserID, detailsSubmitted, chargesEnabled, payoutsEnabled bool) error
}

// BookingConfirmStore stamps webhook-confirmed holds onto bookings.
type BookingConfirmStore interface {
	Get(ctx context.Context, id ids.BookingID) (*booking.Booking, error)
	SetPaymentConfirmed(ctx context.Context, id ids.BookingID, updates map[string]any) error
}

// ProcessedLog answers "have we applied this event before?".
type ProcessedLog interface {
	MarkProcessed(ctx context.Context, eventID ids.EventID, eventType string) (bool, error)
}

// Webhook reconciles asynchronous processor events into the document store.
// Delivery is at-least-once and unordered relative to the synchronous call
// path, so every application must be idempotent.
type Webhook struct {
	secret   string
	users    UserFlagStore
	bookings BookingConfirmStore
	events   ProcessedLog
}

func NewWebhook(secret string, users UserFlagStore, bookings BookingConfirmStore, events ProcessedLog) *Webhook {
	return &Webhook{secret: secret, users: users, bookings: bookings, events: events}
}

// HandleWebhook verifies the signature, deduplicates by event id, and
// applies the event. Verified events are always acknowledged with 200 so the
// processor does not retry deliveries we already understood.
func (h *Webhook) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("webhook: error reading request body: %v", err)
		http.Error(w, "error reading request body", http.StatusServiceUnavailable)
		return
	}

	event, err := payments.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	log.Printf("webhook: received event type=%s id=%s", event.Type, event.ID)

	fresh, err := h.events.MarkProcessed(ctx, ids.NewEventID(event.ID), string(event.Type))
	if err != nil {
		log.Printf("webhook: event log failed for %s: %v", event.ID, err)
		// Fall through and process anyway; a double-apply of these
		// handlers is harmless, a dropped event is not.
		fresh = true
	}
	if !fresh {
		log.Printf("webhook: event %s already processed, acknowledging", event.ID)
		ack(w)
		return
	}

	switch event.Type {
	case "account.updated":
		var acct stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
			log.Printf("webhook: error parsing account: %v", err)
			http.Error(w, "error parsing webhook JSON", http.StatusBadRequest)
			return
		}
		if err := h.handleAccountUpdated(ctx, &acct); err != nil {
			// Acknowledge anyway: the next account.updated carries the
			// full current state again.
			log.Printf("webhook: error handling account.updated: %v", err)
		}

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Printf("webhook: error parsing payment intent: %v", err)
			http.Error(w, "error parsing webhook JSON", http.StatusBadRequest)
			return
		}
		if err := h.handlePaymentIntentSucceeded(ctx, &pi); err != nil {
			log.Printf("webhook: error handling payment_intent.succeeded: %v", err)
		}

	default:
		log.Printf("webhook: unhandled event type: %s", event.Type)
	}

	ack(w)
}

func ack(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received": true}`))
}

// handleAccountUpdated mirrors onboarding flags onto the one user owning
// this connected account. Zero or multiple matches are logged and skipped.
func (h *Webhook) handleAccountUpdated(ctx context.Context, acct *stripe.Account) error {
	p, err := h.users.FindByStripeAccount(ctx, ids.NewAccountID(acct.ID))
	if err != nil {
		if user.IsErrNotFound(err) || user.IsErrAmbiguous(err) {
			log.Printf("webhook: account.updated %s: %v, skipping", acct.ID, err)
			return nil
		}
		return err
	}

	return h.users.UpdateAccountFlags(ctx, p.UID, acct.DetailsSubmitted, acct.ChargesEnabled, acct.PayoutsEnabled)
}

// handlePaymentIntentSucceeded stamps the confirmation time onto the
// booking named in the hold's metadata. Status transitions stay with the
// synchronous call path.
func (h *Webhook) handlePaymentIntentSucceeded(ctx context.Context, pi *stripe.PaymentIntent) error {
	bookingID := ids.NewBookingID(pi.Metadata["bookingId"])
	if bookingID == "" {
		log.Printf("webhook: payment_intent.succeeded %s has no bookingId metadata", pi.ID)
		return nil
	}

	b, err := h.bookings.Get(ctx, bookingID)
	if err != nil {
		if booking.IsErrNotFound(err) {
			log.Printf("webhook: no booking %s for intent %s, skipping", bookingID, pi.ID)
			return nil
		}
		return err
	}
	if b.PaymentIntentID.String() != pi.ID {
		log.Printf("webhook: intent %s does not match booking %s hold %s, skipping", pi.ID, bookingID, b.PaymentIntentID)
		return nil
	}

	return h.bookings.SetPaymentConfirmed(ctx, bookingID, map[string]any{
		"paymentConfirmedAt": time.Now().UTC(),
		"updatedAt":          time.Now().UTC(),
	})
}
