package api

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/stats"
)

func TestCompanyAccount(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, false)

	var registered apicommon.CompanyLoginResponse
	env.requestAndParse(c, http.MethodPost, companiesEndpoint, "", &apicommon.RegisterCompanyRequest{
		Name:     "Acme Research",
		Email:    "  Survey@Acme.test ",
		Password: "password",
	}, http.StatusOK, &registered)
	c.Assert(registered.Token, qt.Not(qt.Equals), "")
	c.Assert(registered.Company.Email, qt.Equals, "survey@acme.test")
	c.Assert(registered.Company.Subscription, qt.Equals, db.NoTier)
	token := registered.Token

	c.Run("duplicate email", func(c *qt.C) {
		env.requestError(c, http.MethodPost, companiesEndpoint, "", &apicommon.RegisterCompanyRequest{
			Name:  "Acme Again",
			Email: "survey@acme.test",
		}, http.StatusConflict, 40040)
	})

	c.Run("malformed email", func(c *qt.C) {
		env.requestError(c, http.MethodPost, companiesEndpoint, "", &apicommon.RegisterCompanyRequest{
			Name:  "Acme",
			Email: "not-an-email",
		}, http.StatusBadRequest, 40013)
	})

	c.Run("missing name", func(c *qt.C) {
		env.requestError(c, http.MethodPost, companiesEndpoint, "", &apicommon.RegisterCompanyRequest{
			Email: "other@acme.test",
		}, http.StatusBadRequest, 40010)
	})

	c.Run("unknown package", func(c *qt.C) {
		env.requestError(c, http.MethodPost, companiesEndpoint, "", &apicommon.RegisterCompanyRequest{
			Name:    "Acme",
			Email:   "other@acme.test",
			Package: "gold",
		}, http.StatusBadRequest, 40010)
	})

	c.Run("unknown email login", func(c *qt.C) {
		env.requestError(c, http.MethodPost, companiesLoginEndpoint, "",
			&apicommon.LoginRequest{Email: "nobody@acme.test"}, http.StatusUnauthorized, 40003)
	})

	c.Run("profile", func(c *qt.C) {
		var profile apicommon.CompanyProfile
		env.requestAndParse(c, http.MethodGet, companiesMeEndpoint, token, nil, http.StatusOK, &profile)
		c.Assert(profile.Company.Name, qt.Equals, "Acme Research")
		c.Assert(profile.Package.ID, qt.Equals, db.NoTier)
		c.Assert(profile.Surveys, qt.HasLen, 0)
		c.Assert(profile.Stats.TotalSurveys, qt.Equals, 0)
	})

	c.Run("no token", func(c *qt.C) {
		res := env.requestError(c, http.MethodGet, companiesMeEndpoint, "", nil, http.StatusUnauthorized, 40001)
		c.Assert(res.Data.To, qt.Equals, "/login")
	})

	c.Run("token of another secret", func(c *qt.C) {
		_, foreign, err := jwtauth.New("HS256", []byte("another-secret"), nil).Encode(
			map[string]any{apicommon.CompanyIDClaim: "comp-1"})
		c.Assert(err, qt.IsNil)
		env.requestError(c, http.MethodGet, companiesMeEndpoint, foreign, nil, http.StatusUnauthorized, 40001)
	})

	c.Run("user token", func(c *qt.C) {
		userToken := env.userLogin(c, "john@example.com")
		env.requestError(c, http.MethodGet, companiesMeEndpoint, userToken, nil, http.StatusUnauthorized, 40001)
	})

	c.Run("logout", func(c *qt.C) {
		env.requestAndParse(c, http.MethodPost, companiesLogoutEndpoint, token, nil, http.StatusOK, nil)
		c.Assert(env.surveys.CurrentCompany(), qt.IsNil)
	})
}

func TestPackageGuard(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, false)

	var registered apicommon.CompanyLoginResponse
	env.requestAndParse(c, http.MethodPost, companiesEndpoint, "", &apicommon.RegisterCompanyRequest{
		Name:  "Free Rider",
		Email: "free@rider.test",
	}, http.StatusOK, &registered)
	token := registered.Token

	res := env.requestError(c, http.MethodGet, companiesDashboardEndpoint, token, nil, http.StatusForbidden, 40004)
	c.Assert(res.Data.To, qt.Equals, "/pricing")
	env.requestError(c, http.MethodPost, surveysEndpoint, token, testSurveyRequest(2), http.StatusForbidden, 40004)

	c.Run("unknown package", func(c *qt.C) {
		env.requestError(c, http.MethodPost, "/packages/gold/purchase", token, nil, http.StatusBadRequest, 40015)
		env.requestError(c, http.MethodPost, "/packages/none/purchase", token, nil, http.StatusBadRequest, 40015)
	})

	c.Run("purchase", func(c *qt.C) {
		var purchase apicommon.PurchaseResponse
		env.requestAndParse(c, http.MethodPost, "/packages/basic/purchase", token, nil, http.StatusOK, &purchase)
		c.Assert(purchase.Status, qt.Equals, "completed")
		c.Assert(purchase.Package, qt.Equals, db.BasicTier)
		c.Assert(purchase.Amount.Equal(decimal.NewFromInt(29)), qt.IsTrue, qt.Commentf("amount %s", purchase.Amount))
		c.Assert(purchase.Company.Subscription, qt.Equals, db.BasicTier)

		var dashboard stats.Dashboard
		env.requestAndParse(c, http.MethodGet, companiesDashboardEndpoint, token, nil, http.StatusOK, &dashboard)
		c.Assert(dashboard.Stats.TotalSurveys, qt.Equals, 0)
	})
}

// testSurveyRequest returns a survey with n questions alternating multiple
// choice and text.
func testSurveyRequest(n int) *apicommon.SurveyRequest {
	req := &apicommon.SurveyRequest{
		Title:             "Onboarding feedback",
		Description:       "Tell us about your first week",
		RewardPerResponse: decimal.RequireFromString("1.5"),
	}
	for i := 0; i < n; i++ {
		q := apicommon.QuestionInfo{
			Type:     string(db.TextQuestion),
			Question: fmt.Sprintf("Question %d", i+1),
		}
		if i%2 == 0 {
			q.Type = string(db.MultipleChoice)
			q.Options = []string{"Yes", "No"}
			q.Required = true
		}
		req.Questions = append(req.Questions, q)
	}
	return req
}

func TestSurveyAuthoring(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, false)
	// Startup Ventures holds the basic package, limited to 10 questions
	token := env.companyLogin(c, "hello@startupventures.com")

	var created db.Survey
	env.requestAndParse(c, http.MethodPost, surveysEndpoint, token, testSurveyRequest(3), http.StatusOK, &created)
	c.Assert(created.ID, qt.Not(qt.Equals), "")
	c.Assert(created.CompanyID, qt.Equals, "comp-3")
	c.Assert(created.CompanyName, qt.Equals, "Startup Ventures")
	c.Assert(created.PackageType, qt.Equals, db.BasicTier)
	c.Assert(created.MaxQuestions, qt.Equals, 10)
	c.Assert(created.IsActive, qt.IsTrue)
	c.Assert(created.Questions, qt.HasLen, 3)
	c.Assert(created.Questions[0].ID, qt.Not(qt.Equals), "")
	c.Assert(created.Questions[0].Options, qt.DeepEquals, []string{"Yes", "No"})
	c.Assert(created.Questions[1].Options, qt.HasLen, 0)
	c.Assert(created.RewardPerResponse.String(), qt.Equals, "1.5")

	company, err := env.surveys.Company("comp-3")
	c.Assert(err, qt.IsNil)
	c.Assert(company.Surveys, qt.Contains, created.ID)

	c.Run("too many questions", func(c *qt.C) {
		env.requestError(c, http.MethodPost, surveysEndpoint, token, testSurveyRequest(11), http.StatusBadRequest, 40016)
	})

	c.Run("higher package", func(c *qt.C) {
		req := testSurveyRequest(11)
		req.PackageType = db.PremiumTier
		var survey db.Survey
		env.requestAndParse(c, http.MethodPost, surveysEndpoint, token, req, http.StatusOK, &survey)
		c.Assert(survey.MaxQuestions, qt.Equals, 100)
		c.Assert(survey.Questions, qt.HasLen, 11)
	})

	c.Run("option questions need two options", func(c *qt.C) {
		req := testSurveyRequest(1)
		req.Questions[0].Options = []string{"Only one"}
		env.requestError(c, http.MethodPost, surveysEndpoint, token, req, http.StatusBadRequest, 40017)
	})

	c.Run("invalid body", func(c *qt.C) {
		req := testSurveyRequest(1)
		req.Questions[0].Type = "slider"
		env.requestError(c, http.MethodPost, surveysEndpoint, token, req, http.StatusBadRequest, 40010)

		req = testSurveyRequest(1)
		req.RewardPerResponse = decimal.NewFromInt(-1)
		env.requestError(c, http.MethodPost, surveysEndpoint, token, req, http.StatusBadRequest, 40010)
	})

	c.Run("get with analytics", func(c *qt.C) {
		var details apicommon.SurveyDetails
		env.requestAndParse(c, http.MethodGet, "/surveys/"+created.ID, token, nil, http.StatusOK, &details)
		c.Assert(details.Survey.ID, qt.Equals, created.ID)
		c.Assert(details.Analytics, qt.HasLen, 3)
		c.Assert(details.Analytics[0].Answered, qt.Equals, 0)
	})

	c.Run("not the owner", func(c *qt.C) {
		env.requestError(c, http.MethodGet, "/surveys/survey-1", token, nil, http.StatusForbidden, 40005)
		title := "Hijacked"
		env.requestError(c, http.MethodPut, "/surveys/survey-1", token,
			&apicommon.SurveyUpdateRequest{Title: &title}, http.StatusForbidden, 40005)
		env.requestError(c, http.MethodGet, "/surveys/survey-1/share", token, nil, http.StatusForbidden, 40005)
	})

	c.Run("unknown survey", func(c *qt.C) {
		env.requestError(c, http.MethodGet, "/surveys/nope", token, nil, http.StatusNotFound, 40030)
	})

	c.Run("update", func(c *qt.C) {
		title := "Onboarding feedback 2024"
		inactive := false
		var updated db.Survey
		env.requestAndParse(c, http.MethodPut, "/surveys/"+created.ID, token, &apicommon.SurveyUpdateRequest{
			Title:    &title,
			IsActive: &inactive,
		}, http.StatusOK, &updated)
		c.Assert(updated.Title, qt.Equals, title)
		c.Assert(updated.IsActive, qt.IsFalse)
		c.Assert(updated.Description, qt.Equals, "Tell us about your first week")
		c.Assert(updated.Questions, qt.HasLen, 3)

		env.requestError(c, http.MethodPut, "/surveys/"+created.ID, token, &apicommon.SurveyUpdateRequest{
			Questions: testSurveyRequest(12).Questions,
		}, http.StatusBadRequest, 40016)
	})

	c.Run("share", func(c *qt.C) {
		var share apicommon.ShareInfo
		env.requestAndParse(c, http.MethodGet, "/surveys/"+created.ID+"/share", token, nil, http.StatusOK, &share)
		c.Assert(share.URL, qt.Equals, testWebApp+"/take-survey/"+created.ID)
	})

	c.Run("qr code", func(c *qt.C) {
		data, status := env.request(c, http.MethodGet, "/surveys/"+created.ID+"/qr", token, nil)
		c.Assert(status, qt.Equals, http.StatusOK)
		c.Assert(bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), qt.IsTrue)

		img, err := png.DecodeConfig(bytes.NewReader(data))
		c.Assert(err, qt.IsNil)
		c.Assert(img.Width, qt.Equals, 256)

		data, status = env.request(c, http.MethodGet, "/surveys/"+created.ID+"/qr?size=512", token, nil)
		c.Assert(status, qt.Equals, http.StatusOK)
		img, err = png.DecodeConfig(bytes.NewReader(data))
		c.Assert(err, qt.IsNil)
		c.Assert(img.Width, qt.Equals, 512)

		env.requestError(c, http.MethodGet, "/surveys/"+created.ID+"/qr?size=10", token, nil,
			http.StatusBadRequest, 40011)
		env.requestError(c, http.MethodGet, "/surveys/survey-1/qr", token, nil, http.StatusForbidden, 40005)
	})

	c.Run("dashboard", func(c *qt.C) {
		var dashboard stats.Dashboard
		env.requestAndParse(c, http.MethodGet, companiesDashboardEndpoint, token, nil, http.StatusOK, &dashboard)
		// the seed survey plus the two created above
		c.Assert(dashboard.Stats.TotalSurveys, qt.Equals, 3)
		c.Assert(dashboard.Stats.TotalResponses, qt.Equals, 2)
		c.Assert(dashboard.Surveys, qt.HasLen, 3)
	})
}
