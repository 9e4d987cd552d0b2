package api

import (
	"net/http"

	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/stats"
)

// registerCompanyHandler godoc
// @Summary Register a new company
// @Description Sign a company up, open its session and return a JWT token.
// @Description The package defaults to "none".
// @Tags companies
// @Accept json
// @Produce json
// @Param request body apicommon.RegisterCompanyRequest true "Company information"
// @Success 200 {object} apicommon.CompanyLoginResponse
// @Failure 400 {object} errors.Error "Invalid input data"
// @Failure 409 {object} errors.Error "Email already registered"
// @Router /companies [post]
func (a *API) registerCompanyHandler(w http.ResponseWriter, r *http.Request) {
	req, err := bodyFromContext[apicommon.RegisterCompanyRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	email, err := normalizedEmail(req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	tier := req.Package
	if tier == "" {
		tier = db.NoTier
	}
	company, err := a.surveys.RegisterCompany(req.Name, email, req.Password, tier)
	if err != nil {
		writeError(w, err)
		return
	}
	a.writeCompanyLogin(w, company)
}

// companyLoginHandler godoc
// @Summary Login a company
// @Description Authenticate a company by email and get a JWT token
// @Tags companies
// @Accept json
// @Produce json
// @Param request body apicommon.LoginRequest true "Login credentials"
// @Success 200 {object} apicommon.CompanyLoginResponse
// @Failure 401 {object} errors.Error
// @Router /companies/login [post]
func (a *API) companyLoginHandler(w http.ResponseWriter, r *http.Request) {
	req, err := bodyFromContext[apicommon.LoginRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	company, err := a.surveys.LoginCompany(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errors.ErrInvalidCredentials.Write(w)
			return
		}
		writeError(w, err)
		return
	}
	a.writeCompanyLogin(w, company)
}

func (a *API) writeCompanyLogin(w http.ResponseWriter, company *db.Company) {
	res, err := a.buildLoginResponse(apicommon.CompanyIDClaim, company.ID)
	if err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CompanyLoginResponse{LoginResponse: *res, Company: company})
}

// companyLogoutHandler godoc
// @Summary Logout a company
// @Description Close the current company session. The token stays valid
// @Description until it expires, clients are expected to drop it.
// @Tags companies
// @Security BearerAuth
// @Success 200 {string} string "OK"
// @Router /companies/logout [post]
func (a *API) companyLogoutHandler(w http.ResponseWriter, _ *http.Request) {
	a.surveys.Logout()
	apicommon.HTTPWriteOK(w)
}

// companyProfileHandler godoc
// @Summary Get the company profile
// @Description Get the logged company, its package and its surveys
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} apicommon.CompanyProfile
// @Failure 401 {object} errors.Error
// @Router /companies/me [get]
func (a *API) companyProfileHandler(w http.ResponseWriter, r *http.Request) {
	company, ok := apicommon.CompanyFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	pkg, err := db.PackageByTier(company.Subscription)
	if err != nil {
		// stored with a tier the catalog no longer has
		p := db.NoPackage
		pkg = &p
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CompanyProfile{
		Company: company,
		Package: pkg,
		Stats:   a.surveys.CompanyStats(company.ID),
		Surveys: a.surveys.CompanySurveys(company.ID),
	})
}

// companyDashboardHandler godoc
// @Summary Get the company dashboard
// @Description Get the statistics and charts of the surveys of the company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} stats.Dashboard
// @Failure 401 {object} errors.Error
// @Failure 403 {object} errors.Error "No package"
// @Router /companies/me/dashboard [get]
func (a *API) companyDashboardHandler(w http.ResponseWriter, r *http.Request) {
	company, ok := apicommon.CompanyFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, stats.CompanyDashboard(a.surveys.CompanySurveys(company.ID), company.ID))
}
