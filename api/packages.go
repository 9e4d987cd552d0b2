package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/subscriptions"
)

// packagesHandler godoc
// @Summary List the packages
// @Description Get the paid packages, in display order
// @Tags packages
// @Produce json
// @Success 200 {object} apicommon.PackageList
// @Router /packages [get]
func (*API) packagesHandler(w http.ResponseWriter, _ *http.Request) {
	apicommon.HTTPWriteJSON(w, &apicommon.PackageList{Packages: db.Packages()})
}

// purchasePackageHandler godoc
// @Summary Buy a package
// @Description Charge the logged company for the package. With the simulated
// @Description processor the package is active on return, with Stripe the
// @Description response carries the checkout URL and the package is activated
// @Description by the webhook.
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param tier path string true "Package tier"
// @Success 200 {object} apicommon.PurchaseResponse
// @Failure 400 {object} errors.Error "Unknown package"
// @Failure 402 {object} errors.Error "Payment failed"
// @Router /packages/{tier}/purchase [post]
func (a *API) purchasePackageHandler(w http.ResponseWriter, r *http.Request) {
	company, ok := apicommon.CompanyFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	tier := db.PackageTier(chi.URLParam(r, "tier"))
	receipt, err := a.subscriptions.Purchase(r.Context(), company.ID, tier)
	if err != nil {
		writeError(w, err)
		return
	}
	res := &apicommon.PurchaseResponse{
		ReceiptID:   receipt.ID,
		Package:     receipt.Package,
		Amount:      receipt.Amount,
		Status:      string(receipt.Status),
		CheckoutURL: receipt.CheckoutURL,
	}
	if receipt.Status == subscriptions.ReceiptCompleted {
		if res.Company, err = a.surveys.Company(company.ID); err != nil {
			writeError(w, err)
			return
		}
	}
	apicommon.HTTPWriteJSON(w, res)
}
