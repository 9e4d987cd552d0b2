// Package stripe sells survey packages through Stripe Checkout and
// activates them when Stripe reports the payment through its webhook.
package stripe

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v81"
	stripecheckoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
	"github.com/surveypro/saas-backend/db"
)

// Metadata keys stored on checkout sessions.
const (
	MetadataCompanyID = "companyId"
	MetadataPackage   = "package"
)

// CheckoutSessionParams holds the data of a package checkout.
type CheckoutSessionParams struct {
	CompanyID     string
	CustomerEmail string
	Package       db.PaymentPackage
}

// CheckoutInfo is the part of a completed checkout session the service
// needs.
type CheckoutInfo struct {
	ID            string
	CompanyID     string
	Package       db.PackageTier
	PaymentStatus stripeapi.CheckoutSessionPaymentStatus
}

// Client wraps the Stripe API client with additional functionality
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config *Config) *Client {
	stripeapi.Key = config.APIKey
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	stripeapi.SetBackend(stripeapi.APIBackend, stripeapi.GetBackendWithConfig(
		stripeapi.APIBackend,
		&stripeapi.BackendConfig{HTTPClient: httpClient},
	))
	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// ValidateWebhookEvent validates and parses a webhook event
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := stripewebhook.ConstructEvent(payload, signatureHeader, c.config.WebhookSecret)
	if err != nil {
		return nil, NewStripeError("webhook_validation", "webhook signature validation failed", err)
	}
	return &event, nil
}

// CreateCheckoutSession creates a one-off payment checkout session for a
// survey package. The company id and package tier travel in the session
// metadata so the webhook can activate the package once it is paid.
// Overview of stripe checkout mechanics: https://docs.stripe.com/checkout/quickstart
func (c *Client) CreateCheckoutSession(params *CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	if params == nil || params.CompanyID == "" {
		return nil, ErrInvalidConfiguration
	}
	currency := c.config.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	checkoutParams := &stripeapi.CheckoutSessionParams{
		Mode: stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency: stripeapi.String(currency),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(params.Package.Name + " survey package"),
					},
					UnitAmount: stripeapi.Int64(toCents(params.Package.Price)),
				},
				Quantity: stripeapi.Int64(1),
			},
		},
		ClientReferenceID: stripeapi.String(params.CompanyID),
		SuccessURL:        stripeapi.String(c.config.SuccessURL),
		CancelURL:         stripeapi.String(c.config.CancelURL),
	}
	if params.CustomerEmail != "" {
		checkoutParams.CustomerEmail = stripeapi.String(params.CustomerEmail)
	}
	checkoutParams.AddMetadata(MetadataCompanyID, params.CompanyID)
	checkoutParams.AddMetadata(MetadataPackage, string(params.Package.ID))

	session, err := stripecheckoutsession.New(checkoutParams)
	if err != nil {
		return nil, NewStripeError("api_call_failed", "failed to create checkout session", err)
	}
	return session, nil
}

// ParseCheckoutFromEvent extracts the checkout session of a webhook event.
func ParseCheckoutFromEvent(event *stripeapi.Event) (*CheckoutInfo, error) {
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse checkout session from event", err)
	}
	companyID := session.Metadata[MetadataCompanyID]
	if companyID == "" {
		companyID = session.ClientReferenceID
	}
	if companyID == "" {
		return nil, NewStripeError("invalid_event", "checkout session without company", nil)
	}
	tier := db.PackageTier(session.Metadata[MetadataPackage])
	if !tier.Paid() {
		return nil, NewStripeError("package_not_found", "checkout session without a valid package", nil)
	}
	return &CheckoutInfo{
		ID:            session.ID,
		CompanyID:     companyID,
		Package:       tier,
		PaymentStatus: session.PaymentStatus,
	}, nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
