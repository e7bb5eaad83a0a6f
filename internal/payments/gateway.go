// Package payments wraps the Stripe SDK behind a small gateway interface.
// No business rules live here; callers decide when to hold, capture,
// release or refund.
package payments

import (
	"context"
	"fmt"
	"sync"

	"screenrent/backend/internal/ids"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// feePercent is the platform's cut of every hold, in percent, floored.
const feePercent = 5

// DefaultApplicationFee returns the platform fee for a hold amount in
// minor currency units.
func DefaultApplicationFee(amount int64) int64 {
	return amount * feePercent / 100
}

type AccountStatus struct {
	AccountID       ids.AccountID `json:"accountId"`
	ChargesEnabled  bool          `json:"chargesEnabled"`
	PayoutsEnabled  bool          `json:"payoutsEnabled"`
	DetailsSubmitted bool         `json:"detailsSubmitted"`
	RequirementsDue []string      `json:"requirements"`
}

type HoldInput struct {
	Amount         int64
	Currency       string
	Destination    ids.AccountID
	ApplicationFee int64 // 0 means "use the default"
	BookingID      ids.BookingID
}

type Hold struct {
	ID           ids.IntentID
	ClientSecret string
}

// Gateway is the payment-processor surface the domain services depend on.
type Gateway interface {
	CreateAccount(ctx context.Context, email, country string) (ids.AccountID, error)
	CreateAccountLink(ctx context.Context, accountID ids.AccountID, returnURL, refreshURL string) (string, error)
	RetrieveAccount(ctx context.Context, accountID ids.AccountID) (*AccountStatus, error)
	CreateHold(ctx context.Context, in HoldInput) (*Hold, error)
	CaptureHold(ctx context.Context, intentID ids.IntentID) (ids.IntentID, error)
	CancelHold(ctx context.Context, intentID ids.IntentID) error
	CreateRefund(ctx context.Context, intentID ids.IntentID, reason string) (ids.RefundID, error)
}

// StripeGateway holds one shared API client, constructed on first use and
// reused across concurrent requests. The client carries no per-request state.
type StripeGateway struct {
	key  string
	once sync.Once
	api  *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{key: secretKey}
}

func (g *StripeGateway) client() *client.API {
	g.once.Do(func() {
		api := &client.API{}
		api.Init(g.key, nil)
		g.api = api
	})
	return g.api
}

func (g *StripeGateway) CreateAccount(ctx context.Context, email, country string) (ids.AccountID, error) {
	if country == "" {
		country = "US"
	}
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Email:   stripe.String(email),
		Country: stripe.String(country),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx

	acct, err := g.client().Accounts.New(params)
	if err != nil {
		return "", classify(err)
	}
	return ids.AccountID(acct.ID), nil
}

func (g *StripeGateway) CreateAccountLink(ctx context.Context, accountID ids.AccountID, returnURL, refreshURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID.String()),
		ReturnURL:  stripe.String(returnURL),
		RefreshURL: stripe.String(refreshURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := g.client().AccountLinks.New(params)
	if err != nil {
		return "", classify(err)
	}
	return link.URL, nil
}

func (g *StripeGateway) RetrieveAccount(ctx context.Context, accountID ids.AccountID) (*AccountStatus, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := g.client().Accounts.GetByID(accountID.String(), params)
	if err != nil {
		return nil, classify(err)
	}

	st := &AccountStatus{
		AccountID:        accountID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
	if acct.Requirements != nil {
		st.RequirementsDue = acct.Requirements.CurrentlyDue
	}
	return st, nil
}

// CreateHold authorizes funds without settling them. Capture or cancel
// decides later whether the money moves.
func (g *StripeGateway) CreateHold(ctx context.Context, in HoldInput) (*Hold, error) {
	fee := in.ApplicationFee
	if fee <= 0 {
		fee = DefaultApplicationFee(in.Amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(in.Amount),
		Currency:             stripe.String(in.Currency),
		CaptureMethod:        stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		ApplicationFeeAmount: stripe.Int64(fee),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(in.Destination.String()),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("bookingId", in.BookingID.String())
	params.AddMetadata("type", "booking_hold")
	// One hold per booking, even under client retries.
	params.SetIdempotencyKey("hold-" + in.BookingID.String())

	pi, err := g.client().PaymentIntents.New(params)
	if err != nil {
		return nil, classify(err)
	}
	return &Hold{ID: ids.IntentID(pi.ID), ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) CaptureHold(ctx context.Context, intentID ids.IntentID) (ids.IntentID, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey("capture-" + intentID.String())

	pi, err := g.client().PaymentIntents.Capture(intentID.String(), params)
	if err != nil {
		return "", classify(err)
	}
	return ids.IntentID(pi.ID), nil
}

func (g *StripeGateway) CancelHold(ctx context.Context, intentID ids.IntentID) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	_, err := g.client().PaymentIntents.Cancel(intentID.String(), params)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, intentID ids.IntentID, reason string) (ids.RefundID, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID.String()),
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + intentID.String())
	if reason != "" {
		params.Reason = stripe.String(reason)
	}

	rf, err := g.client().Refunds.New(params)
	if err != nil {
		return "", classify(err)
	}
	return ids.RefundID(rf.ID), nil
}

var _ Gateway = (*StripeGateway)(nil)

// classify separates requests Stripe rejected (retrying won't help) from
// transport failures (retrying might).
func classify(err error) error {
	if err == nil {
		return nil
	}
	if sErr, ok := err.(*stripe.Error); ok {
		switch sErr.Type {
		case stripe.ErrorTypeInvalidRequest, stripe.ErrorTypeCard, stripe.ErrorTypeIdempotency:
			return fmt.Errorf("%w: %s", ErrRejected, sErr.Msg)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
