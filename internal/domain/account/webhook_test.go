package account

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"

	"screenrent/backend/internal/domain/booking"
	"screenrent/backend/internal/domain/user"
	"screenrent/backend/internal/ids"
)

const testSecret = "whsec_test_secret"

type fakeFlags struct {
	profiles    map[ids.AccountID]*user.Profile
	updates     int
	lastCharges bool
	lastPayouts bool
}

func (f *fakeFlags) FindByStripeAccount(_ context.Context, id ids.AccountID) (*user.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: no user for account %s", user.ErrNotFound, id)
	}
	return p, nil
}

func (f *fakeFlags) UpdateAccountFlags(_ context.Context, _ ids.UserID, _, charges, payouts bool) error {
	f.updates++
	f.lastCharges = charges
	f.lastPayouts = payouts
	return nil
}

type fakeBookings struct {
	bookings  map[ids.BookingID]*booking.Booking
	confirmed int
}

func (f *fakeBookings) Get(_ context.Context, id ids.BookingID) (*booking.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", booking.ErrNotFound, id)
	}
	return b, nil
}

func (f *fakeBookings) SetPaymentConfirmed(_ context.Context, _ ids.BookingID, _ map[string]any) error {
	f.confirmed++
	return nil
}

type fakeLog struct {
	seen map[ids.EventID]bool
}

func (f *fakeLog) MarkProcessed(_ context.Context, eventID ids.EventID, _ string) (bool, error) {
	if f.seen == nil {
		f.seen = map[ids.EventID]bool{}
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func signPayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"api_version":%q,"type":%q,"data":{"object":%s}}`,
		id, stripe.APIVersion, eventType, object,
	))
}

func deliver(h *Webhook, payload []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/stripe/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", sig)
	w := httptest.NewRecorder()
	h.HandleWebhook(w, req)
	return w
}

func newWebhookFixture() (*Webhook, *fakeFlags, *fakeBookings) {
	flags := &fakeFlags{profiles: map[ids.AccountID]*user.Profile{
		"acct_owner": {UID: "owner-1", StripeAccountID: "acct_owner"},
	}}
	bookings := &fakeBookings{bookings: map[ids.BookingID]*booking.Booking{
		"bk_1": {ID: "bk_1", PaymentIntentID: "pi_1"},
	}}
	return NewWebhook(testSecret, flags, bookings, &fakeLog{}), flags, bookings
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, flags, bookings := newWebhookFixture()

	payload := eventPayload("evt_1", "account.updated", `{"id":"acct_owner","charges_enabled":true}`)
	w := deliver(h, payload, "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, flags.updates, "no writes on unverified payloads")
	assert.Zero(t, bookings.confirmed)
}

func TestWebhookMirrorsAccountFlags(t *testing.T) {
	h, flags, _ := newWebhookFixture()

	payload := eventPayload("evt_2", "account.updated",
		`{"id":"acct_owner","details_submitted":true,"charges_enabled":true,"payouts_enabled":false}`)
	w := deliver(h, payload, signPayload(payload))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())
	assert.Equal(t, 1, flags.updates)
	assert.True(t, flags.lastCharges)
	assert.False(t, flags.lastPayouts)
}

func TestWebhookSkipsUnknownAccount(t *testing.T) {
	h, flags, _ := newWebhookFixture()

	payload := eventPayload("evt_3", "account.updated", `{"id":"acct_nobody","charges_enabled":true}`)
	w := deliver(h, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code, "unknown accounts are acknowledged, not retried")
	assert.Zero(t, flags.updates)
}

func TestWebhookDeduplicatesReplays(t *testing.T) {
	h, flags, _ := newWebhookFixture()

	payload := eventPayload("evt_4", "account.updated",
		`{"id":"acct_owner","details_submitted":true,"charges_enabled":true,"payouts_enabled":true}`)

	first := deliver(h, payload, signPayload(payload))
	second := deliver(h, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, flags.updates, "replayed event must not re-apply")
}

func TestWebhookConfirmsMatchingIntent(t *testing.T) {
	h, _, bookings := newWebhookFixture()

	payload := eventPayload("evt_5", "payment_intent.succeeded",
		`{"id":"pi_1","metadata":{"bookingId":"bk_1"}}`)
	w := deliver(h, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, bookings.confirmed)
}

func TestWebhookIgnoresMismatchedIntent(t *testing.T) {
	h, _, bookings := newWebhookFixture()

	payload := eventPayload("evt_6", "payment_intent.succeeded",
		`{"id":"pi_other","metadata":{"bookingId":"bk_1"}}`)
	w := deliver(h, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, bookings.confirmed, "intent not matching the recorded hold is skipped")
}

func TestWebhookIgnoresMissingBooking(t *testing.T) {
	h, _, bookings := newWebhookFixture()

	payload := eventPayload("evt_7", "payment_intent.succeeded",
		`{"id":"pi_9","metadata":{"bookingId":"bk_gone"}}`)
	w := deliver(h, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, bookings.confirmed)
}

func TestWebhookAcknowledgesUnhandledTypes(t *testing.T) {
	h, flags, bookings := newWebhookFixture()

	payload := eventPayload("evt_8", "charge.refunded", `{"id":"ch_1"}`)
	w := deliver(h, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())
	assert.Zero(t, flags.updates)
	assert.Zero(t, bookings.confirmed)
}
