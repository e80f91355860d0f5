package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74"
)

func TestStripeStatus(t *testing.T) {
	tests := []struct {
		in   stripe.PaymentIntentStatus
		want PaymentIntentStatus
	}{
		{stripe.PaymentIntentStatusSucceeded, IntentSucceeded},
		{stripe.PaymentIntentStatusCanceled, IntentFailed},
		{stripe.PaymentIntentStatusProcessing, IntentPending},
		{stripe.PaymentIntentStatusRequiresAction, IntentPending},
		{stripe.PaymentIntentStatusRequiresPaymentMethod, IntentPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, stripeStatus(tt.in))
		})
	}
}

func TestFromStripeIntent(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Amount:       3000,
		Currency:     stripe.CurrencyUSD,
		Status:       stripe.PaymentIntentStatusSucceeded,
	}

	got := fromStripeIntent(pi)

	assert.Equal(t, &PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Amount:       3000,
		Currency:     "usd",
		Status:       IntentSucceeded,
	}, got)
}
