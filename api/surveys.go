package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/builder"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/stats"
	"github.com/surveypro/saas-backend/surveys"
	"go.vocdoni.io/dvote/log"
)

// takeSurveyPath is the web app page where respondents take a survey.
const takeSurveyPath = "/take-survey/"

// QR code image sizes, in pixels.
const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// toQuestions converts the builder payload into survey questions, giving an
// id to the new ones.
func toQuestions(infos []apicommon.QuestionInfo) []db.Question {
	questions := make([]db.Question, 0, len(infos))
	for _, info := range infos {
		q := db.Question{
			ID:       info.ID,
			Type:     db.QuestionType(info.Type),
			Question: strings.TrimSpace(info.Question),
			Required: info.Required,
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.Type.HasOptions() {
			q.Options = append([]string(nil), info.Options...)
		}
		questions = append(questions, q)
	}
	return questions
}

// listSurveysHandler godoc
// @Summary List the active surveys
// @Description Get the surveys open to respondents, optionally filtered by a
// @Description search term, along with the public summary.
// @Tags surveys
// @Produce json
// @Param search query string false "Search over title, description and company"
// @Success 200 {object} apicommon.SurveyList
// @Router /surveys [get]
func (a *API) listSurveysHandler(w http.ResponseWriter, r *http.Request) {
	active := a.surveys.ActiveSurveys()
	apicommon.HTTPWriteJSON(w, &apicommon.SurveyList{
		Surveys: stats.Search(active, r.URL.Query().Get("search")),
		Summary: stats.Public(active),
	})
}

// createSurveyHandler godoc
// @Summary Create a survey
// @Description Publish a survey for the logged company. The package defaults
// @Description to the company subscription and bounds the number of
// @Description questions.
// @Tags surveys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body apicommon.SurveyRequest true "Survey"
// @Success 200 {object} db.Survey
// @Failure 400 {object} errors.Error "Invalid survey"
// @Failure 403 {object} errors.Error "No package"
// @Router /surveys [post]
func (a *API) createSurveyHandler(w http.ResponseWriter, r *http.Request) {
	company, ok := apicommon.CompanyFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req, err := bodyFromContext[apicommon.SurveyRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	tier := req.PackageType
	if tier == "" {
		tier = company.Subscription
	}
	if !tier.Paid() {
		writeError(w, surveys.ErrPackageRequired)
		return
	}
	b := builder.New(tier, toQuestions(req.Questions))
	if err := b.Validate(); err != nil {
		writeError(w, err)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	id, err := a.surveys.AddSurvey(&surveys.NewSurvey{
		Title:             strings.TrimSpace(req.Title),
		Description:       strings.TrimSpace(req.Description),
		CompanyID:         company.ID,
		Questions:         b.Questions(),
		ExpiresAt:         req.ExpiresAt,
		IsActive:          isActive,
		PackageType:       tier,
		RewardPerResponse: req.RewardPerResponse,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	survey, err := a.surveys.Survey(id)
	if err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, survey)
}

// surveyHandler godoc
// @Summary Get a survey
// @Description Get a survey of the logged company with its per question
// @Description analytics.
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param surveyId path string true "Survey ID"
// @Success 200 {object} apicommon.SurveyDetails
// @Failure 403 {object} errors.Error "Not the owner"
// @Failure 404 {object} errors.Error "Survey not found"
// @Router /surveys/{surveyId} [get]
func (a *API) surveyHandler(w http.ResponseWriter, r *http.Request) {
	survey, _, err := a.ownedSurvey(r)
	if err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.SurveyDetails{
		Survey:    survey,
		Analytics: stats.Questions(survey),
	})
}

// updateSurveyHandler godoc
// @Summary Update a survey
// @Description Change the fields present in the request. A new question list
// @Description or package is checked against the package limit.
// @Tags surveys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param surveyId path string true "Survey ID"
// @Param request body apicommon.SurveyUpdateRequest true "Changes"
// @Success 200 {object} db.Survey
// @Failure 400 {object} errors.Error "Invalid survey"
// @Failure 403 {object} errors.Error "Not the owner or no package"
// @Router /surveys/{surveyId} [put]
func (a *API) updateSurveyHandler(w http.ResponseWriter, r *http.Request) {
	survey, _, err := a.ownedSurvey(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := bodyFromContext[apicommon.SurveyUpdateRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	update := &surveys.SurveyUpdate{
		Title:             req.Title,
		Description:       req.Description,
		ExpiresAt:         req.ExpiresAt,
		IsActive:          req.IsActive,
		PackageType:       req.PackageType,
		RewardPerResponse: req.RewardPerResponse,
	}
	if req.Questions != nil || req.PackageType != nil {
		tier, questions := survey.PackageType, survey.Questions
		if req.PackageType != nil {
			tier = *req.PackageType
		}
		if req.Questions != nil {
			questions = toQuestions(req.Questions)
		}
		b := builder.New(tier, questions)
		if err := b.Validate(); err != nil {
			writeError(w, err)
			return
		}
		if req.Questions != nil {
			update.Questions = b.Questions()
		}
	}
	if err := a.surveys.UpdateSurvey(survey.ID, update); err != nil {
		writeError(w, err)
		return
	}
	updated, err := a.surveys.Survey(survey.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, updated)
}

// surveyShareHandler godoc
// @Summary Get the share link of a survey
// @Description Get the public URL respondents use to take the survey, the
// @Description content of its QR code.
// @Tags surveys
// @Produce json
// @Security BearerAuth
// @Param surveyId path string true "Survey ID"
// @Success 200 {object} apicommon.ShareInfo
// @Router /surveys/{surveyId}/share [get]
func (a *API) surveyShareHandler(w http.ResponseWriter, r *http.Request) {
	survey, _, err := a.ownedSurvey(r)
	if err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.ShareInfo{
		SurveyID: survey.ID,
		Title:    survey.Title,
		URL:      a.takeSurveyURL(survey.ID),
	})
}

// surveyQRHandler godoc
// @Summary Get the QR code of a survey
// @Description Get a PNG image with the QR code of the public URL of the
// @Description survey. The size query sets the width in pixels (64 to 1024,
// @Description 256 by default) and download=true serves it as an attachment.
// @Tags surveys
// @Produce png
// @Security BearerAuth
// @Param surveyId path string true "Survey ID"
// @Param size query int false "Image size in pixels"
// @Param download query bool false "Serve as an attachment"
// @Success 200 {file} binary
// @Failure 400 {object} errors.Error "Invalid size"
// @Router /surveys/{surveyId}/qr [get]
func (a *API) surveyQRHandler(w http.ResponseWriter, r *http.Request) {
	survey, _, err := a.ownedSurvey(r)
	if err != nil {
		writeError(w, err)
		return
	}
	size := defaultQRSize
	if param := r.URL.Query().Get("size"); param != "" {
		size, err = strconv.Atoi(param)
		if err != nil || size < minQRSize || size > maxQRSize {
			errors.ErrMalformedURLParam.Withf("size must be between %d and %d", minQRSize, maxQRSize).Write(w)
			return
		}
	}
	png, err := qrcode.Encode(a.takeSurveyURL(survey.ID), qrcode.Medium, size)
	if err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "survey-"+survey.ID+"-qr.png"))
	}
	if _, err := w.Write(png); err != nil {
		log.Warnw("failed to write QR code", "survey", survey.ID, "error", err)
	}
}

// takeSurveyURL is the public web app URL of the survey.
func (a *API) takeSurveyURL(surveyID string) string {
	return strings.TrimSuffix(a.webAppURL, "/") + takeSurveyPath + surveyID
}
