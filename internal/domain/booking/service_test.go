package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenrent/backend/internal/domain/screen"
	"screenrent/backend/internal/domain/user"
	"screenrent/backend/internal/ids"
	"screenrent/backend/internal/payments"
)

type fakeStore struct {
	bookings    map[ids.BookingID]*Booking
	nextID      int
	conflictOnce bool
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[ids.BookingID]*Booking{}}
}

func (f *fakeStore) Create(_ context.Context, b Booking) (*Booking, error) {
	f.nextID++
	b.ID = ids.BookingID(fmt.Sprintf("bk_%d", f.nextID))
	f.bookings[b.ID] = &b
	out := b
	return &out, nil
}

func (f *fakeStore) Get(_ context.Context, id ids.BookingID) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	out := *b
	return &out, nil
}

func (f *fakeStore) UpdateIfStatus(_ context.Context, id ids.BookingID, expect Status, updates map[string]any) error {
	f.updateCalls++
	b, ok := f.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	if f.conflictOnce {
		f.conflictOnce = false
		return fmt.Errorf("%w: booking %s status changed", ErrConflict, id)
	}
	if b.Status != expect {
		return fmt.Errorf("%w: booking %s is %s, expected %s", ErrConflict, id, b.Status, expect)
	}
	if v, ok := updates["status"]; ok {
		b.Status = Status(v.(string))
	}
	if v, ok := updates["paymentStatus"]; ok {
		b.PaymentStatus = PaymentStatus(v.(string))
	}
	if v, ok := updates["paymentIntentId"]; ok {
		b.PaymentIntentID = ids.IntentID(v.(string))
	}
	if v, ok := updates["refundId"]; ok {
		b.RefundID = ids.RefundID(v.(string))
	}
	return nil
}

func (f *fakeStore) ListForUser(_ context.Context, uid ids.UserID, role string, _ int) ([]Booking, error) {
	out := []Booking{}
	for _, b := range f.bookings {
		if (role == "renter" && b.RenterID == uid) || (role == "owner" && b.OwnerID == uid) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeScreens struct {
	screens map[ids.ScreenID]*screen.Screen
}

func (f *fakeScreens) Get(_ context.Context, id ids.ScreenID) (*screen.Screen, error) {
	sc, ok := f.screens[id]
	if !ok {
		return nil, fmt.Errorf("%w: screen %s", screen.ErrNotFound, id)
	}
	out := *sc
	return &out, nil
}

type fakeUsers struct {
	users map[ids.UserID]*user.Profile
}

func (f *fakeUsers) Get(_ context.Context, uid ids.UserID) (*user.Profile, error) {
	p, ok := f.users[uid]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", user.ErrNotFound, uid)
	}
	out := *p
	return &out, nil
}

type fakeGateway struct {
	holds    int
	captures int
	cancels  int
	refunds  int

	lastHold   payments.HoldInput
	captureErr error
	refundErr  error
}

func (f *fakeGateway) CreateAccount(context.Context, string, string) (ids.AccountID, error) {
	return "acct_test", nil
}

func (f *fakeGateway) CreateAccountLink(context.Context, ids.AccountID, string, string) (string, error) {
	return "https://connect.example/onboard", nil
}

func (f *fakeGateway) RetrieveAccount(_ context.Context, id ids.AccountID) (*payments.AccountStatus, error) {
	return &payments.AccountStatus{AccountID: id}, nil
}

func (f *fakeGateway) CreateHold(_ context.Context, in payments.HoldInput) (*payments.Hold, error) {
	f.holds++
	f.lastHold = in
	return &payments.Hold{ID: "pi_test_1", ClientSecret: "pi_test_1_secret"}, nil
}

func (f *fakeGateway) CaptureHold(_ context.Context, id ids.IntentID) (ids.IntentID, error) {
	f.captures++
	if f.captureErr != nil {
		return "", f.captureErr
	}
	return id, nil
}

func (f *fakeGateway) CancelHold(context.Context, ids.IntentID) error {
	f.cancels++
	return nil
}

func (f *fakeGateway) CreateRefund(context.Context, ids.IntentID, string) (ids.RefundID, error) {
	f.refunds++
	if f.refundErr != nil {
		return "", f.refundErr
	}
	return "re_test_1", nil
}

type fakeRecorder struct {
	calls int
	gross int64
	fee   int64
}

func (f *fakeRecorder) RecordCapture(_ context.Context, _ ids.UserID, _ string, gross, fee int64, _ int64) error {
	f.calls++
	f.gross = gross
	f.fee = fee
	return nil
}

const (
	ownerUID  = ids.UserID("owner-1")
	renterUID = ids.UserID("renter-1")
	otherUID  = ids.UserID("stranger-1")
	screenID  = ids.ScreenID("scr-1")
)

func newFixture() (*Service, *fakeStore, *fakeGateway, *fakeRecorder) {
	store := newFakeStore()
	screens := &fakeScreens{screens: map[ids.ScreenID]*screen.Screen{
		screenID: {
			ID:       screenID,
			OwnerID:  ownerUID,
			Name:     "Times Square East",
			DayPrice: 1000,
			Currency: "usd",
			IsActive: true,
		},
	}}
	users := &fakeUsers{users: map[ids.UserID]*user.Profile{
		ownerUID:  {UID: ownerUID, StripeAccountID: "acct_owner"},
		renterUID: {UID: renterUID},
	}}
	gw := &fakeGateway{}
	svc := NewService(store, screens, users, gw)
	rec := &fakeRecorder{}
	svc.SetCaptureRecorder(rec)
	return svc, store, gw, rec
}

func seedBooking(store *fakeStore, status Status, paymentStatus PaymentStatus, intentID ids.IntentID) *Booking {
	b := &Booking{
		ID:              "bk_seed",
		ScreenID:        screenID,
		OwnerID:         ownerUID,
		RenterID:        renterUID,
		Status:          status,
		PaymentStatus:   paymentStatus,
		Dates:           []string{"2026-09-01", "2026-09-02"},
		AmountTotal:     2000,
		Currency:        "usd",
		PaymentIntentID: intentID,
	}
	store.bookings[b.ID] = b
	return b
}

func TestCreateComputesAmountFromUniqueDates(t *testing.T) {
	svc, _, _, _ := newFixture()

	b, err := svc.Create(context.Background(), renterUID, CreateBookingInput{
		ScreenID: string(screenID),
		Dates:    []string{"2026-09-02", "2026-09-01", "2026-09-02"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRequested, b.Status)
	assert.Equal(t, []string{"2026-09-01", "2026-09-02"}, b.Dates)
	assert.Equal(t, int64(2000), b.AmountTotal)
	assert.Equal(t, "usd", b.Currency)
	assert.Equal(t, ownerUID, b.OwnerID)
}

func TestCreateRejectsOwnScreen(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.Create(context.Background(), ownerUID, CreateBookingInput{
		ScreenID: string(screenID),
		Dates:    []string{"2026-09-01"},
	})
	assert.True(t, IsErrBadRequest(err))
}

func TestCreateRejectsInactiveScreen(t *testing.T) {
	screens := &fakeScreens{screens: map[ids.ScreenID]*screen.Screen{
		screenID: {ID: screenID, OwnerID: ownerUID, DayPrice: 1000, Currency: "usd", IsActive: false},
	}}
	svc := NewService(newFakeStore(), screens, &fakeUsers{users: map[ids.UserID]*user.Profile{}}, &fakeGateway{})

	_, err := svc.Create(context.Background(), renterUID, CreateBookingInput{
		ScreenID: string(screenID),
		Dates:    []string{"2026-09-01"},
	})
	assert.True(t, IsErrFailedPrecondition(err))
}

func TestCreatePaymentIntentHappyPath(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	out, err := svc.CreatePaymentIntent(context.Background(), renterUID, CreateIntentInput{
		BookingID:          b.ID.String(),
		Amount:             2000,
		Currency:           "usd",
		ConnectedAccountID: "acct_owner",
	})
	require.NoError(t, err)

	assert.Equal(t, ids.IntentID("pi_test_1"), out.PaymentIntentID)
	assert.NotEmpty(t, out.ClientSecret)
	assert.Equal(t, 1, gw.holds)
	assert.Equal(t, ids.AccountID("acct_owner"), gw.lastHold.Destination)
	assert.Equal(t, b.ID, gw.lastHold.BookingID)

	stored := store.bookings[b.ID]
	assert.Equal(t, ids.IntentID("pi_test_1"), stored.PaymentIntentID)
	assert.Equal(t, PaymentIntentCreated, stored.PaymentStatus)
	assert.Equal(t, StatusRequested, stored.Status)
}

func TestCreatePaymentIntentOnlyRenter(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	_, err := svc.CreatePaymentIntent(context.Background(), ownerUID, CreateIntentInput{
		BookingID:          b.ID.String(),
		Amount:             2000,
		Currency:           "usd",
		ConnectedAccountID: "acct_owner",
	})
	assert.True(t, IsErrUnauthorized(err))
	assert.Zero(t, gw.holds)
}

func TestCreatePaymentIntentAmountMustMatch(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	_, err := svc.CreatePaymentIntent(context.Background(), renterUID, CreateIntentInput{
		BookingID:          b.ID.String(),
		Amount:             1500,
		Currency:           "usd",
		ConnectedAccountID: "acct_owner",
	})
	assert.True(t, IsErrBadRequest(err))
	assert.Zero(t, gw.holds)
}

func TestCreatePaymentIntentRejectsForeignDestination(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	_, err := svc.CreatePaymentIntent(context.Background(), renterUID, CreateIntentInput{
		BookingID:          b.ID.String(),
		Amount:             2000,
		Currency:           "usd",
		ConnectedAccountID: "acct_attacker",
	})
	assert.True(t, IsErrBadRequest(err))
	assert.Zero(t, gw.holds)
}

func TestCreatePaymentIntentRejectsSecondHold(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentIntentCreated, "pi_existing")

	_, err := svc.CreatePaymentIntent(context.Background(), renterUID, CreateIntentInput{
		BookingID:          b.ID.String(),
		Amount:             2000,
		Currency:           "usd",
		ConnectedAccountID: "acct_owner",
	})
	assert.True(t, IsErrFailedPrecondition(err))
	assert.Zero(t, gw.holds)
}

func TestCreatePaymentIntentReleasesOrphanedHoldOnConflict(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")
	store.conflictOnce = true

	_, err := svc.CreatePaymentIntent(context.Background(), renterUID, CreateIntentInput{
		BookingID:          b.ID.String(),
		Amount:             2000,
		Currency:           "usd",
		ConnectedAccountID: "acct_owner",
	})
	assert.True(t, IsErrConflict(err))
	assert.Equal(t, 1, gw.holds)
	assert.Equal(t, 1, gw.cancels, "orphaned hold must be released")
}

func TestAcceptCapturesAndRecords(t *testing.T) {
	svc, store, gw, rec := newFixture()
	b := seedBooking(store, StatusRequested, PaymentIntentCreated, "pi_1")

	out, err := svc.Accept(context.Background(), ownerUID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, out.Status)
	assert.Equal(t, PaymentCaptured, out.PaymentStatus)
	assert.NotNil(t, out.AcceptedAt)
	assert.Equal(t, 1, gw.captures)

	stored := store.bookings[b.ID]
	assert.Equal(t, StatusAccepted, stored.Status)
	assert.Equal(t, PaymentCaptured, stored.PaymentStatus)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, int64(2000), rec.gross)
	assert.Equal(t, int64(100), rec.fee)
}

func TestAcceptRequiresOwner(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentIntentCreated, "pi_1")

	_, err := svc.Accept(context.Background(), renterUID, b.ID)
	assert.True(t, IsErrUnauthorized(err))
	assert.Zero(t, gw.captures)
}

func TestAcceptRequiresRequestedStatus(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusAccepted, PaymentCaptured, "pi_1")

	_, err := svc.Accept(context.Background(), ownerUID, b.ID)
	assert.True(t, IsErrFailedPrecondition(err))
	assert.Zero(t, gw.captures, "no gateway call when precondition fails")
}

func TestAcceptRequiresHold(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	_, err := svc.Accept(context.Background(), ownerUID, b.ID)
	assert.True(t, IsErrNotFound(err))
	assert.Zero(t, gw.captures)
}

func TestAcceptLosesRace(t *testing.T) {
	svc, store, gw, rec := newFixture()
	b := seedBooking(store, StatusRequested, PaymentIntentCreated, "pi_1")
	store.conflictOnce = true

	_, err := svc.Accept(context.Background(), ownerUID, b.ID)
	assert.True(t, IsErrConflict(err))
	assert.Equal(t, 1, gw.captures, "capture is idempotency-keyed, safe to have fired")
	assert.Zero(t, rec.calls, "losing side records nothing")
}

func TestAcceptCaptureFailureSurfacesPaymentError(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentIntentCreated, "pi_1")
	gw.captureErr = errors.New("card declined on capture")

	_, err := svc.Accept(context.Background(), ownerUID, b.ID)
	assert.True(t, IsErrPayment(err))
	assert.NotContains(t, err.Error(), "card declined", "processor detail stays out of client errors")

	stored := store.bookings[b.ID]
	assert.Equal(t, StatusRequested, stored.Status, "status unchanged on capture failure")
}

func TestDeclineReleasesHold(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentIntentCreated, "pi_1")

	out, err := svc.Decline(context.Background(), ownerUID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusDeclined, out.Status)
	assert.Equal(t, PaymentCancelled, out.PaymentStatus)
	assert.Equal(t, 1, gw.cancels)
}

func TestDeclineWithoutHold(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	out, err := svc.Decline(context.Background(), ownerUID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusDeclined, out.Status)
	assert.Equal(t, PaymentNone, out.PaymentStatus)
	assert.Zero(t, gw.cancels)
}

func TestDeclineRequiresRequestedStatus(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusAccepted, PaymentCaptured, "pi_1")

	_, err := svc.Decline(context.Background(), ownerUID, b.ID)
	assert.True(t, IsErrFailedPrecondition(err))
	assert.Zero(t, gw.cancels)
}

func TestCancelRefundsCapturedPayment(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusAccepted, PaymentCaptured, "pi_1")

	out, err := svc.Cancel(context.Background(), renterUID, b.ID, "schedule change")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, out.Status)
	assert.Equal(t, PaymentRefunded, out.PaymentStatus)
	assert.Equal(t, ids.RefundID("re_test_1"), out.RefundID)
	assert.Equal(t, 1, gw.refunds)
	assert.Zero(t, gw.cancels)

	stored := store.bookings[b.ID]
	assert.Equal(t, StatusCancelled, stored.Status, "refunded lives only on paymentStatus")
	assert.Equal(t, PaymentRefunded, stored.PaymentStatus)
}

func TestCancelReleasesUncapturedHold(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentIntentCreated, "pi_1")

	out, err := svc.Cancel(context.Background(), ownerUID, b.ID, "")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, out.Status)
	assert.Equal(t, PaymentCancelled, out.PaymentStatus)
	assert.Equal(t, 1, gw.cancels)
	assert.Zero(t, gw.refunds)
}

func TestCancelWithoutHoldChangesStatusOnly(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	out, err := svc.Cancel(context.Background(), renterUID, b.ID, "")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, out.Status)
	assert.Equal(t, PaymentNone, out.PaymentStatus)
	assert.Zero(t, gw.cancels)
	assert.Zero(t, gw.refunds)
}

func TestCancelRejectsLiveAndCompleted(t *testing.T) {
	svc, store, gw, _ := newFixture()

	for _, st := range []Status{StatusLive, StatusCompleted} {
		b := seedBooking(store, st, PaymentCaptured, "pi_1")
		_, err := svc.Cancel(context.Background(), renterUID, b.ID, "")
		assert.True(t, IsErrFailedPrecondition(err), "status %s", st)
	}
	assert.Zero(t, gw.refunds)
}

func TestCancelRejectsAlreadyTerminal(t *testing.T) {
	svc, store, _, _ := newFixture()

	for _, st := range []Status{StatusCancelled, StatusDeclined} {
		b := seedBooking(store, st, PaymentCancelled, "pi_1")
		_, err := svc.Cancel(context.Background(), renterUID, b.ID, "")
		assert.True(t, IsErrFailedPrecondition(err), "status %s", st)
	}
}

func TestCancelRequiresParticipant(t *testing.T) {
	svc, store, gw, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	_, err := svc.Cancel(context.Background(), otherUID, b.ID, "")
	assert.True(t, IsErrUnauthorized(err))
	assert.Zero(t, gw.cancels)
}

func TestGetRequiresParticipant(t *testing.T) {
	svc, store, _, _ := newFixture()
	b := seedBooking(store, StatusRequested, PaymentNone, "")

	_, err := svc.Get(context.Background(), otherUID, b.ID)
	assert.True(t, IsErrUnauthorized(err))

	got, err := svc.Get(context.Background(), renterUID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestListForUserValidatesRole(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.ListForUser(context.Background(), renterUID, "admin", 10)
	assert.True(t, IsErrBadRequest(err))
}
