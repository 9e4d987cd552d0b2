package api

import (
	"io"
	"net/http"

	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// maxWebhookBodySize is the largest Stripe event accepted.
const maxWebhookBodySize = int64(65536)

// stripeWebhookHandler godoc
// @Summary Handle Stripe webhook events
// @Description Verify the Stripe signature and apply the event. A completed
// @Description checkout activates the purchased package.
// @Tags packages
// @Accept json
// @Success 200 {string} string "OK"
// @Failure 400 {object} errors.Error "Invalid event"
// @Router /stripe/webhook [post]
func (a *API) stripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		errors.ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if err := a.stripe.HandleWebhookEvent(payload, r.Header.Get("Stripe-Signature")); err != nil {
		log.Warnw("stripe webhook rejected", "error", err)
		if errors.Is(err, stripe.ErrWebhookValidation) || errors.Is(err, stripe.ErrInvalidEvent) {
			errors.ErrMalformedBody.WithErr(err).Write(w)
			return
		}
		errors.ErrStripeError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteOK(w)
}
