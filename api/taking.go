package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/taking"
	"go.vocdoni.io/dvote/log"
)

// takingSession is a survey taking flow kept between requests.
type takingSession struct {
	id          string
	title       string
	companyName string
	machine     *taking.Machine
}

func (ts *takingSession) info() *apicommon.TakingInfo {
	m := ts.machine
	info := &apicommon.TakingInfo{
		SessionID:   ts.id,
		SurveyID:    m.SurveyID(),
		Title:       ts.title,
		CompanyName: ts.companyName,
		Reward:      m.Reward(),
		Progress:    m.Progress(),
		Question:    m.Current(),
		Answers:     m.Answers(),
		CanProceed:  m.CanProceed(),
	}
	if response := m.Response(); response != nil {
		info.ResponseID = response.ID
	}
	return info
}

// takingFromRequest returns the taking session named by the URL. Sessions
// evicted from the cache, or started for another survey, are not found.
func (a *API) takingFromRequest(r *http.Request) (*takingSession, error) {
	ts, ok := a.takes.Get(chi.URLParam(r, "sessionId"))
	if !ok || ts.machine.SurveyID() != chi.URLParam(r, "surveyId") {
		return nil, errors.ErrTakingSessionNotFound
	}
	return ts, nil
}

// startTakingHandler godoc
// @Summary Start taking a survey
// @Description Open a taking session on the first question of the survey.
// @Description When completions are tracked and a user token is sent, the
// @Description response is recorded for that user.
// @Tags take
// @Produce json
// @Param surveyId path string true "Survey ID"
// @Success 200 {object} apicommon.TakingInfo
// @Failure 404 {object} errors.Error "Survey not found or not available"
// @Router /take/{surveyId} [post]
func (a *API) startTakingHandler(w http.ResponseWriter, r *http.Request) {
	survey, err := a.surveys.Survey(chi.URLParam(r, "surveyId"))
	if err != nil {
		writeError(w, err)
		return
	}
	// responses are tied to the account only when completions are tracked,
	// the user token is optional and a stale one is ignored
	var userID string
	if a.trackCompletions {
		if id, ok := claimFromContext(r.Context(), apicommon.UserIDClaim); ok {
			if _, err := a.users.User(id); err == nil {
				userID = id
			}
		}
	}
	machine, err := taking.New(&taking.Config{
		Survey:       survey,
		Recorder:     a.surveys,
		RespondentID: userID,
		OnComplete:   a.onSurveyCompleted(survey, userID != ""),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	ts := &takingSession{
		id:          uuid.NewString(),
		title:       survey.Title,
		companyName: survey.CompanyName,
		machine:     machine,
	}
	if evicted := a.takes.Add(ts.id, ts); evicted {
		log.Debugw("taking session evicted", "survey", survey.ID)
	}
	apicommon.HTTPWriteJSON(w, ts.info())
}

// takingInfoHandler godoc
// @Summary Get a taking session
// @Tags take
// @Produce json
// @Param surveyId path string true "Survey ID"
// @Param sessionId path string true "Taking session ID"
// @Success 200 {object} apicommon.TakingInfo
// @Failure 404 {object} errors.Error "Session not found"
// @Router /take/{surveyId}/{sessionId} [get]
func (a *API) takingInfoHandler(w http.ResponseWriter, r *http.Request) {
	ts, err := a.takingFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, ts.info())
}

// takingAnswerHandler godoc
// @Summary Answer a question
// @Description Record the answer to a question of the survey. Several values
// @Description on a multiple choice question select several options, no
// @Description values clear the answer.
// @Tags take
// @Accept json
// @Produce json
// @Param surveyId path string true "Survey ID"
// @Param sessionId path string true "Taking session ID"
// @Param request body apicommon.AnswerRequest true "Answer"
// @Success 200 {object} apicommon.TakingInfo
// @Router /take/{surveyId}/{sessionId}/answer [post]
func (a *API) takingAnswerHandler(w http.ResponseWriter, r *http.Request) {
	ts, err := a.takingFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := bodyFromContext[apicommon.AnswerRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := ts.machine.SetAnswer(req.QuestionID, req.Values...); err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, ts.info())
}

// takingNextHandler godoc
// @Summary Move to the next question
// @Description Move on once the current question is answered. On the last
// @Description question it submits the response.
// @Tags take
// @Produce json
// @Param surveyId path string true "Survey ID"
// @Param sessionId path string true "Taking session ID"
// @Success 200 {object} apicommon.TakingInfo
// @Failure 400 {object} errors.Error "Answer required"
// @Router /take/{surveyId}/{sessionId}/next [post]
func (a *API) takingNextHandler(w http.ResponseWriter, r *http.Request) {
	a.takingAction(w, r, (*taking.Machine).Next)
}

// takingPreviousHandler godoc
// @Summary Move back one question
// @Tags take
// @Produce json
// @Param surveyId path string true "Survey ID"
// @Param sessionId path string true "Taking session ID"
// @Success 200 {object} apicommon.TakingInfo
// @Router /take/{surveyId}/{sessionId}/previous [post]
func (a *API) takingPreviousHandler(w http.ResponseWriter, r *http.Request) {
	a.takingAction(w, r, (*taking.Machine).Previous)
}

// takingSubmitHandler godoc
// @Summary Submit the response
// @Description Record the response. Only allowed on the last question once
// @Description it is answered and the respondent is set.
// @Tags take
// @Produce json
// @Param surveyId path string true "Survey ID"
// @Param sessionId path string true "Taking session ID"
// @Success 200 {object} apicommon.TakingInfo
// @Failure 400 {object} errors.Error "Answer or respondent required"
// @Router /take/{surveyId}/{sessionId}/submit [post]
func (a *API) takingSubmitHandler(w http.ResponseWriter, r *http.Request) {
	a.takingAction(w, r, (*taking.Machine).Submit)
}

func (a *API) takingAction(w http.ResponseWriter, r *http.Request, action func(*taking.Machine) error) {
	ts, err := a.takingFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := action(ts.machine); err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, ts.info())
}

// takingRespondentHandler godoc
// @Summary Set the respondent
// @Description Set the name and email the reward is paid to, asked on the
// @Description last question.
// @Tags take
// @Accept json
// @Produce json
// @Param surveyId path string true "Survey ID"
// @Param sessionId path string true "Taking session ID"
// @Param request body apicommon.RespondentRequest true "Respondent"
// @Success 200 {object} apicommon.TakingInfo
// @Router /take/{surveyId}/{sessionId}/respondent [post]
func (a *API) takingRespondentHandler(w http.ResponseWriter, r *http.Request) {
	ts, err := a.takingFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := bodyFromContext[apicommon.RespondentRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	email := req.Email
	if email != "" {
		if email, err = normalizedEmail(email); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := ts.machine.SetRespondent(req.Name, email); err != nil {
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, ts.info())
}

// onSurveyCompleted returns the hook run when a response of the survey is
// recorded. It marks the survey completed for logged users when tracking is
// enabled and sends the reward email.
func (a *API) onSurveyCompleted(survey *db.Survey, loggedUser bool) func(*db.SurveyResponse, string, string) {
	title, reward := survey.Title, survey.RewardPerResponse
	return func(response *db.SurveyResponse, name, email string) {
		if a.trackCompletions && loggedUser {
			if err := a.users.MarkCompleted(response.UserID, response.SurveyID); err != nil {
				log.Warnw("could not mark survey completed", "user", response.UserID,
					"survey", response.SurveyID, "error", err)
			}
		}
		a.sendRewardNotification(name, email, title, reward)
	}
}
