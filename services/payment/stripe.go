package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway on the Stripe API. The client is injected
// so each process owns exactly one configured instance; nothing here touches
// the package-global stripe key.
type StripeGateway struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripeGateway builds a gateway around a dedicated Stripe client.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, logger: logger}
}

func (g *StripeGateway) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	listParams := &stripe.CustomerListParams{}
	listParams.Context = ctx
	listParams.Email = stripe.String(email)
	listParams.Limit = stripe.Int64(1)

	iter := g.api.Customers.List(listParams)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to look up customer by email: %w", err)
	}

	createParams := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	createParams.Context = ctx
	if name != "" {
		createParams.Name = stripe.String(name)
	}
	cust, err := g.api.Customers.New(createParams)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	g.logger.Info("created gateway customer", zap.String("customerId", cust.ID))
	return cust.ID, nil
}

func (g *StripeGateway) CreateManualCaptureIntent(ctx context.Context, amount int64, currency, customerID string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		Customer:      stripe.String(customerID),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return fromStripeIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", id, err)
	}
	return fromStripeIntent(pi), nil
}

func (g *StripeGateway) CaptureIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Capture(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to capture payment intent %s: %w", id, err)
	}
	return fromStripeIntent(pi), nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Cancel(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel payment intent %s: %w", id, err)
	}
	return fromStripeIntent(pi), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}
