// Package subscriptions enforces the package requirements of company routes
// and sells survey packages to companies through a payment processor.
package subscriptions

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"go.vocdoni.io/dvote/log"
)

// DefaultPaymentDelay is how long the simulated processor takes to accept
// a payment.
const DefaultPaymentDelay = 2 * time.Second

// ErrPaymentDeclined is returned by processors that refused the charge.
var ErrPaymentDeclined = fmt.Errorf("payment declined")

// ReceiptStatus tells whether a payment is settled.
type ReceiptStatus string

const (
	// ReceiptCompleted means the package can be activated right away.
	ReceiptCompleted ReceiptStatus = "completed"
	// ReceiptPending means the customer still has to pay, for example on a
	// hosted checkout page. The package is activated later.
	ReceiptPending ReceiptStatus = "pending"
)

// PaymentRequest describes a package purchase.
type PaymentRequest struct {
	CompanyID    string
	CompanyEmail string
	Package      db.PaymentPackage
}

// Receipt is the outcome of a payment.
type Receipt struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"companyId"`
	Package     db.PackageTier  `json:"package"`
	Amount      decimal.Decimal `json:"amount"`
	Status      ReceiptStatus   `json:"status"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PaymentProcessor charges a company for a package.
type PaymentProcessor interface {
	Pay(ctx context.Context, req *PaymentRequest) (*Receipt, error)
}

// Simulated is a processor that accepts every payment after Delay, unless
// Fail is set.
type Simulated struct {
	Delay time.Duration
	Fail  bool
}

// Pay waits for the configured delay and returns a completed receipt.
func (s *Simulated) Pay(ctx context.Context, req *PaymentRequest) (*Receipt, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.Delay):
	}
	if s.Fail {
		return nil, ErrPaymentDeclined
	}
	return &Receipt{
		ID:        uuid.NewString(),
		CompanyID: req.CompanyID,
		Package:   req.Package.ID,
		Amount:    req.Package.Price,
		Status:    ReceiptCompleted,
		CreatedAt: time.Now(),
	}, nil
}

// Config holds the configuration for the subscriptions service. A nil
// Processor uses a Simulated one with the default delay.
type Config struct {
	DB        DBInterface
	Processor PaymentProcessor
}

// DBInterface defines the company methods required by the Subscriptions
// service.
type DBInterface interface {
	Company(id string) (*db.Company, error)
	SetCompanySubscription(companyID string, tier db.PackageTier) error
}

// Subscriptions sells packages and checks the package requirements.
type Subscriptions struct {
	db        DBInterface
	processor PaymentProcessor
}

// New creates a new Subscriptions service with the given configuration.
func New(conf *Config) *Subscriptions {
	if conf == nil {
		return nil
	}
	processor := conf.Processor
	if processor == nil {
		processor = &Simulated{Delay: DefaultPaymentDelay}
	}
	return &Subscriptions{
		db:        conf.DB,
		processor: processor,
	}
}

// Guard checks a company may open a route. Without a company it fails with
// ErrUnauthorized, which points to the login page. When the route needs a
// package and the company has none, it fails with ErrNoPackage, which
// points to the pricing page.
func Guard(company *db.Company, requiresPackage bool) error {
	if company == nil {
		return errors.ErrUnauthorized
	}
	if requiresPackage && !company.Subscription.Paid() {
		return errors.ErrNoPackage
	}
	return nil
}

// Purchase charges the company for the package tier and, once the payment
// is completed, activates it. Pending receipts are activated later by the
// processor, e.g. through a webhook.
func (p *Subscriptions) Purchase(ctx context.Context, companyID string, tier db.PackageTier) (*Receipt, error) {
	if !tier.Paid() {
		return nil, errors.ErrUnknownPackage.Withf("%q", tier)
	}
	pkg, err := db.PackageByTier(tier)
	if err != nil {
		return nil, errors.ErrUnknownPackage.WithErr(err)
	}
	company, err := p.db.Company(companyID)
	if err != nil {
		if stderrors.Is(err, db.ErrNotFound) {
			return nil, errors.ErrCompanyNotFound
		}
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	receipt, err := p.processor.Pay(ctx, &PaymentRequest{
		CompanyID:    company.ID,
		CompanyEmail: company.Email,
		Package:      *pkg,
	})
	if err != nil {
		log.Warnw("package payment failed", "company", companyID, "package", tier, "error", err)
		return nil, errors.ErrPaymentFailed.WithErr(err)
	}
	if receipt.Status != ReceiptCompleted {
		log.Infow("package payment pending", "company", companyID, "package", tier, "receipt", receipt.ID)
		return receipt, nil
	}
	if err := p.Activate(companyID, tier); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Activate sets the package of the company without charging it.
func (p *Subscriptions) Activate(companyID string, tier db.PackageTier) error {
	if err := p.db.SetCompanySubscription(companyID, tier); err != nil {
		if stderrors.Is(err, db.ErrNotFound) {
			return errors.ErrCompanyNotFound
		}
		return errors.ErrGenericInternalServerError.WithErr(err)
	}
	log.Infow("package activated", "company", companyID, "package", tier)
	return nil
}
