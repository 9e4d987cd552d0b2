package stripe

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v81"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
	"github.com/surveypro/saas-backend/db"
)

const testWebhookSecret = "whsec_test_secret"

// mockCompanies records the activated packages.
type mockCompanies struct {
	mtx       sync.Mutex
	activated map[string]db.PackageTier
	calls     int
}

func (m *mockCompanies) SetCompanySubscription(companyID string, tier db.PackageTier) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if companyID == "missing" {
		return db.ErrNotFound
	}
	m.calls++
	m.activated[companyID] = tier
	return nil
}

func checkoutEvent(c *qt.C, id string, session map[string]any) []byte {
	payload, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        string(stripeapi.EventTypeCheckoutSessionCompleted),
		"api_version": stripeapi.APIVersion,
		"data":        map[string]any{"object": session},
	})
	c.Assert(err, qt.IsNil)
	return payload
}

func sign(payload []byte) string {
	return stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	}).Header
}

func newTestService(c *qt.C) (*Service, *mockCompanies) {
	companies := &mockCompanies{activated: map[string]db.PackageTier{}}
	service, err := NewService(&Config{APIKey: "sk_test", WebhookSecret: testWebhookSecret}, companies)
	c.Assert(err, qt.IsNil)
	return service, companies
}

func TestCheckoutCompletedActivatesPackage(t *testing.T) {
	c := qt.New(t)
	service, companies := newTestService(c)

	payload := checkoutEvent(c, "evt_1", map[string]any{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"client_reference_id": "comp-2",
		"payment_status":      "paid",
		"metadata":            map[string]string{MetadataCompanyID: "comp-2", MetadataPackage: "premium"},
	})
	c.Assert(service.HandleWebhookEvent(payload, sign(payload)), qt.IsNil)
	c.Assert(companies.activated["comp-2"], qt.Equals, db.PremiumTier)

	// replayed events are ignored
	c.Assert(service.HandleWebhookEvent(payload, sign(payload)), qt.IsNil)
	c.Assert(companies.calls, qt.Equals, 1)
}

func TestCheckoutWebhookRejected(t *testing.T) {
	c := qt.New(t)
	service, companies := newTestService(c)

	payload := checkoutEvent(c, "evt_2", map[string]any{
		"id":             "cs_test_2",
		"object":         "checkout.session",
		"payment_status": "paid",
		"metadata":       map[string]string{MetadataCompanyID: "comp-1", MetadataPackage: "basic"},
	})
	err := service.HandleWebhookEvent(payload, "t=1,v1=bogus")
	c.Assert(err, qt.ErrorMatches, ".*webhook signature validation failed.*")

	unpaid := checkoutEvent(c, "evt_3", map[string]any{
		"id":             "cs_test_3",
		"object":         "checkout.session",
		"payment_status": "unpaid",
		"metadata":       map[string]string{MetadataCompanyID: "comp-1", MetadataPackage: "basic"},
	})
	c.Assert(service.HandleWebhookEvent(unpaid, sign(unpaid)), qt.IsNil)

	unknownPackage := checkoutEvent(c, "evt_4", map[string]any{
		"id":             "cs_test_4",
		"object":         "checkout.session",
		"payment_status": "paid",
		"metadata":       map[string]string{MetadataCompanyID: "comp-1", MetadataPackage: "gold"},
	})
	c.Assert(service.HandleWebhookEvent(unknownPackage, sign(unknownPackage)), qt.Not(qt.IsNil))

	missing := checkoutEvent(c, "evt_5", map[string]any{
		"id":             "cs_test_5",
		"object":         "checkout.session",
		"payment_status": "paid",
		"metadata":       map[string]string{MetadataCompanyID: "missing", MetadataPackage: "basic"},
	})
	err = service.HandleWebhookEvent(missing, sign(missing))
	c.Assert(err, qt.ErrorIs, db.ErrNotFound)
	// failed events can be retried
	c.Assert(service.processedEvents.Contains("evt_5"), qt.IsFalse)

	c.Assert(companies.calls, qt.Equals, 0)
}

func TestToCents(t *testing.T) {
	c := qt.New(t)
	c.Assert(toCents(decimal.NewFromInt(29)), qt.Equals, int64(2900))
	c.Assert(toCents(decimal.RequireFromString("19.999")), qt.Equals, int64(2000))
	c.Assert(IsRetryableError(NewStripeError("api_call_failed", "boom", nil)), qt.IsTrue)
	c.Assert(IsRetryableError(ErrWebhookValidation), qt.IsFalse)
	c.Assert(IsRetryableError(context.Canceled), qt.IsFalse)
}
