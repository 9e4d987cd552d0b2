package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	stripeapi "github.com/stripe/stripe-go/v81"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/subscriptions"
	"go.vocdoni.io/dvote/log"
)

const (
	processedEventsSize = 10000
	processedEventsTTL  = 24 * time.Hour
)

// DBInterface defines the company method the webhook needs to activate a
// paid package.
type DBInterface interface {
	SetCompanySubscription(companyID string, tier db.PackageTier) error
}

// Service provides the main business logic for Stripe operations
type Service struct {
	client          *Client
	db              DBInterface
	processedEvents *expirable.LRU[string, time.Time]
	lockManager     *LockManager
	config          *Config
}

// NewService creates a new Stripe service
func NewService(config *Config, database DBInterface) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &Service{
		client:          NewClient(config),
		db:              database,
		processedEvents: expirable.NewLRU[string, time.Time](processedEventsSize, nil, processedEventsTTL),
		lockManager:     NewLockManager(),
		config:          config,
	}, nil
}

// Pay implements subscriptions.PaymentProcessor. It opens a hosted
// checkout and returns a pending receipt pointing to it; the package is
// activated by the webhook once Stripe confirms the payment.
func (s *Service) Pay(_ context.Context, req *subscriptions.PaymentRequest) (*subscriptions.Receipt, error) {
	session, err := s.client.CreateCheckoutSession(&CheckoutSessionParams{
		CompanyID:     req.CompanyID,
		CustomerEmail: req.CompanyEmail,
		Package:       req.Package,
	})
	if err != nil {
		return nil, err
	}
	return &subscriptions.Receipt{
		ID:          session.ID,
		CompanyID:   req.CompanyID,
		Package:     req.Package.ID,
		Amount:      req.Package.Price,
		Status:      subscriptions.ReceiptPending,
		CheckoutURL: session.URL,
		CreatedAt:   time.Now(),
	}, nil
}

// HandleWebhookEvent processes a webhook event with idempotency
func (s *Service) HandleWebhookEvent(payload []byte, signatureHeader string) error {
	// Validate and parse the event
	event, err := s.client.ValidateWebhookEvent(payload, signatureHeader)
	if err != nil {
		return err
	}

	// Check if event was already processed (idempotency)
	if s.processedEvents.Contains(event.ID) {
		log.Debugf("stripe webhook: event %s already processed, skipping", event.ID)
		return nil
	}

	if err := s.HandleEvent(event); err != nil {
		return err
	}

	// Mark event as processed if successful
	s.processedEvents.Add(event.ID, time.Now())
	return nil
}

// HandleEvent dispatches an already validated event.
func (s *Service) HandleEvent(event *stripeapi.Event) error {
	switch event.Type {
	case stripeapi.EventTypeCheckoutSessionCompleted,
		stripeapi.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		return s.handleCheckoutCompleted(event)
	default:
		log.Debugf("stripe webhook: received unhandled event type %s (id %s)", event.Type, event.ID)
		return nil
	}
}

// handleCheckoutCompleted activates the package bought in a paid checkout
// session. Unpaid sessions are waiting for an asynchronous payment and are
// handled when it succeeds.
func (s *Service) handleCheckoutCompleted(event *stripeapi.Event) error {
	checkout, err := ParseCheckoutFromEvent(event)
	if err != nil {
		return fmt.Errorf("failed to parse checkout session from event: %w", err)
	}
	if checkout.PaymentStatus != stripeapi.CheckoutSessionPaymentStatusPaid {
		log.Infof("stripe webhook: checkout %s for company %s not paid yet (%s)",
			checkout.ID, checkout.CompanyID, checkout.PaymentStatus)
		return nil
	}

	// Use per-company locking
	unlock := s.lockManager.LockCompany(checkout.CompanyID)
	defer unlock()

	if err := s.db.SetCompanySubscription(checkout.CompanyID, checkout.Package); err != nil {
		return fmt.Errorf("failed to activate package %s for company %s (checkout %s): %w",
			checkout.Package, checkout.CompanyID, checkout.ID, err)
	}
	log.Infof("stripe webhook: package %s activated for company %s (checkout %s)",
		checkout.Package, checkout.CompanyID, checkout.ID)
	return nil
}
