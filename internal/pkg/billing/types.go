package billing

import "errors"

// Error taxonomy surfaced by the billing service. Handlers translate these
// into HTTP status codes; the webhook handler maps anything else to a 500 so
// the provider redelivers.
var (
	ErrSignatureInvalid     = errors.New("webhook signature verification failed")
	ErrConfirmationRequired = errors.New("cancellation not confirmed")
	ErrAccountNotFound      = errors.New("account not found")
	ErrMissingIdentity      = errors.New("event metadata missing user id")
)

// ProviderStripe tags webhook event rows.
const ProviderStripe = "stripe"

// Checkout metadata keys written by the app at checkout-session creation and
// read back from the webhook event. This is the implicit contract binding
// checkout-time intent to webhook-time reconciliation.
const (
	metaKeyUserID    = "user_id_auth"
	metaKeyFullName  = "nome"
	metaKeyEmail     = "userEmail"
	metaKeyPhone     = "telefone"
	metaKeyTaxID     = "cpf_responsavel"
	metaKeyGymName   = "academia"
	metaKeyGymTaxID  = "cnpj_academia"
	metaKeyAddress   = "endereco"
	metaKeyPlan      = "plano_selecionado"
	metaKeyRealEmail = "real_email_to_update"
)

// CheckoutMetadata is the fixed schema of the checkout session's metadata
// grab bag. Unknown keys are dropped on decode instead of being spread into
// account fields.
type CheckoutMetadata struct {
	UserID            string
	FullName          string
	Email             string
	Phone             string
	TaxID             string
	GymName           string
	GymTaxID          string
	Address           string
	Plan              string
	RealEmailToUpdate string
}

// MetadataFromMap decodes the known metadata keys from a provider metadata
// map. Values are taken verbatim; placeholder filtering happens in the field
// resolver.
func MetadataFromMap(m map[string]string) CheckoutMetadata {
	return CheckoutMetadata{
		UserID:            m[metaKeyUserID],
		FullName:          m[metaKeyFullName],
		Email:             m[metaKeyEmail],
		Phone:             m[metaKeyPhone],
		TaxID:             m[metaKeyTaxID],
		GymName:           m[metaKeyGymName],
		GymTaxID:          m[metaKeyGymTaxID],
		Address:           m[metaKeyAddress],
		Plan:              m[metaKeyPlan],
		RealEmailToUpdate: m[metaKeyRealEmail],
	}
}

// CheckoutSession is a minimal representation of a Stripe checkout.session
// event payload.
type CheckoutSession struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	PaymentStatus   string `json:"payment_status"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// VerifiedEmail returns the provider-verified customer email, when present.
func (s *CheckoutSession) VerifiedEmail() string {
	return s.CustomerDetails.Email
}

// Invoice is a minimal representation of a Stripe invoice event payload.
type Invoice struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
}

// Subscription is a minimal representation of a Stripe subscription event
// payload.
type Subscription struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// CheckoutSessionInput carries everything needed to create a provider
// checkout session. Metadata is passed through verbatim so the webhook reads
// back exactly what the app wrote.
type CheckoutSessionInput struct {
	PriceID    string
	UserID     string
	UserEmail  string
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}
