package payments

import (
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// VerifyWebhook checks the payload signature against the shared endpoint
// secret and returns the parsed event. Nothing in the payload may be
// trusted before this succeeds.
func VerifyWebhook(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, secret)
}
