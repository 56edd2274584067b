package payment

import "context"

// Intent is the gateway-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// Gateway intent statuses this subsystem reacts to. The values match the
// processor's wire statuses so reconciliation can use them directly.
const (
	IntentStatusRequiresCapture       = "requires_capture"
	IntentStatusSucceeded             = "succeeded"
	IntentStatusCanceled              = "canceled"
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
)

// Gateway is the port to the external payment processor. The processor holds
// funds on authorization (manual capture mode); capture and cancel finalize or
// release the hold.
type Gateway interface {
	// FindOrCreateCustomer returns the processor's customer id for the given
	// email, creating the customer record when none exists.
	FindOrCreateCustomer(ctx context.Context, email, name string) (string, error)

	// CreateManualCaptureIntent places a hold for amount (in minor currency
	// units) that must later be captured explicitly.
	CreateManualCaptureIntent(ctx context.Context, amount int64, currency, customerID string, metadata map[string]string) (*Intent, error)

	GetIntent(ctx context.Context, id string) (*Intent, error)
	CaptureIntent(ctx context.Context, id string) (*Intent, error)
	CancelIntent(ctx context.Context, id string) (*Intent, error)
}
