package api

import (
	"net/http"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/go-chi/jwtauth/v5"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/surveys"
	"github.com/surveypro/saas-backend/taking"
)

func takePath(info *apicommon.TakingInfo, action string) string {
	path := "/take/" + info.SurveyID + "/" + info.SessionID
	if action != "" {
		path += "/" + action
	}
	return path
}

func TestTakeSurvey(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, true)
	userToken := env.userLogin(c, "john@example.com")

	var info apicommon.TakingInfo
	env.requestAndParse(c, http.MethodPost, "/take/survey-3", userToken, nil, http.StatusOK, &info)
	c.Assert(info.SessionID, qt.Not(qt.Equals), "")
	c.Assert(info.Title, qt.Equals, "Brand Awareness Study")
	c.Assert(info.CompanyName, qt.Equals, "Marketing Plus")
	c.Assert(info.Reward.String(), qt.Equals, "4")
	c.Assert(info.Progress, qt.Equals, taking.Progress{State: taking.Answering, Index: 0, Total: 3, Percent: 33})
	c.Assert(info.Question.ID, qt.Equals, "q1")
	c.Assert(info.CanProceed, qt.IsFalse)

	// required questions block the flow until answered
	env.requestError(c, http.MethodPost, takePath(&info, "next"), "", nil, http.StatusBadRequest, 40018)
	env.requestError(c, http.MethodPost, takePath(&info, "previous"), "", nil, http.StatusBadRequest, 40020)
	env.requestError(c, http.MethodPost, takePath(&info, "answer"), "",
		&apicommon.AnswerRequest{QuestionID: "q9", Values: []string{"x"}}, http.StatusBadRequest, 40021)

	env.requestAndParse(c, http.MethodPost, takePath(&info, "answer"), "",
		&apicommon.AnswerRequest{QuestionID: "q1", Values: []string{"Social Media"}}, http.StatusOK, &info)
	c.Assert(info.CanProceed, qt.IsTrue)
	c.Assert(info.Answers["q1"], qt.DeepEquals, db.ChoiceAnswer("Social Media"))

	env.requestAndParse(c, http.MethodPost, takePath(&info, "next"), "", nil, http.StatusOK, &info)
	c.Assert(info.Question.ID, qt.Equals, "q2")
	c.Assert(info.Progress.Percent, qt.Equals, 66)

	// going back keeps the answers
	env.requestAndParse(c, http.MethodPost, takePath(&info, "previous"), "", nil, http.StatusOK, &info)
	c.Assert(info.Question.ID, qt.Equals, "q1")
	c.Assert(info.CanProceed, qt.IsTrue)
	env.requestAndParse(c, http.MethodPost, takePath(&info, "next"), "", nil, http.StatusOK, &info)

	env.requestAndParse(c, http.MethodPost, takePath(&info, "answer"), "",
		&apicommon.AnswerRequest{QuestionID: "q2", Values: []string{"Better"}}, http.StatusOK, &info)
	env.requestAndParse(c, http.MethodPost, takePath(&info, "next"), "", nil, http.StatusOK, &info)
	c.Assert(info.Question.ID, qt.Equals, "q3")
	c.Assert(info.Progress.Percent, qt.Equals, 100)

	env.requestAndParse(c, http.MethodPost, takePath(&info, "answer"), "",
		&apicommon.AnswerRequest{QuestionID: "q3", Values: []string{"Yes"}}, http.StatusOK, &info)

	// the respondent is asked for on the last question
	env.requestError(c, http.MethodPost, takePath(&info, "submit"), "", nil, http.StatusBadRequest, 40019)
	env.requestError(c, http.MethodPost, takePath(&info, "respondent"), "",
		&apicommon.RespondentRequest{Name: "John", Email: "john@"}, http.StatusBadRequest, 40013)
	env.requestAndParse(c, http.MethodPost, takePath(&info, "respondent"), "",
		&apicommon.RespondentRequest{Name: "John Doe", Email: "John@Example.com"}, http.StatusOK, &info)

	env.requestAndParse(c, http.MethodPost, takePath(&info, "submit"), "", nil, http.StatusOK, &info)
	c.Assert(info.Progress.State, qt.Equals, taking.Complete)
	c.Assert(info.Progress.Percent, qt.Equals, 100)
	c.Assert(info.Question, qt.IsNil)
	c.Assert(info.ResponseID, qt.Not(qt.Equals), "")

	// a complete flow accepts no more actions
	env.requestError(c, http.MethodPost, takePath(&info, "submit"), "", nil, http.StatusBadRequest, 40020)
	env.requestError(c, http.MethodPost, takePath(&info, "answer"), "",
		&apicommon.AnswerRequest{QuestionID: "q1", Values: []string{"Other"}}, http.StatusBadRequest, 40020)

	var session apicommon.TakingInfo
	env.requestAndParse(c, http.MethodGet, takePath(&info, ""), "", nil, http.StatusOK, &session)
	c.Assert(session.ResponseID, qt.Equals, info.ResponseID)

	survey, err := env.surveys.Survey("survey-3")
	c.Assert(err, qt.IsNil)
	c.Assert(survey.Responses, qt.HasLen, 1)
	response := survey.Responses[0]
	c.Assert(response.ID, qt.Equals, info.ResponseID)
	c.Assert(response.UserID, qt.Equals, "user-1")
	c.Assert(response.Answers, qt.HasLen, 3)
	c.Assert(response.Answers["q2"], qt.DeepEquals, db.ChoiceAnswer("Better"))
	c.Assert(response.RewardClaimed, qt.IsFalse)

	user, err := env.users.User("user-1")
	c.Assert(err, qt.IsNil)
	c.Assert(user.HasCompleted("survey-3"), qt.IsTrue)

	select {
	case n := <-env.mail.sent:
		c.Assert(n.ToAddress, qt.Equals, "john@example.com")
		c.Assert(n.ToName, qt.Equals, "John Doe")
		c.Assert(n.Subject, qt.Contains, "$4.00")
		c.Assert(n.PlainBody, qt.Contains, "Brand Awareness Study")
	case <-time.After(5 * time.Second):
		c.Fatal("reward notification not sent")
	}
}

func TestTakeSurveyUntracked(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, false)
	userToken := env.userLogin(c, "john@example.com")

	var info apicommon.TakingInfo
	env.requestAndParse(c, http.MethodPost, "/take/survey-3", userToken, nil, http.StatusOK, &info)
	for _, answer := range []struct{ id, value string }{
		{"q1", "Social Media"},
		{"q2", "Better"},
		{"q3", "Yes"},
	} {
		env.requestAndParse(c, http.MethodPost, takePath(&info, "answer"), userToken,
			&apicommon.AnswerRequest{QuestionID: answer.id, Values: []string{answer.value}}, http.StatusOK, &info)
		if answer.id != "q3" {
			env.requestAndParse(c, http.MethodPost, takePath(&info, "next"), userToken, nil, http.StatusOK, &info)
		}
	}
	env.requestAndParse(c, http.MethodPost, takePath(&info, "respondent"), userToken,
		&apicommon.RespondentRequest{Name: "John Doe", Email: "john@example.com"}, http.StatusOK, &info)
	env.requestAndParse(c, http.MethodPost, takePath(&info, "submit"), userToken, nil, http.StatusOK, &info)
	c.Assert(info.Progress.State, qt.Equals, taking.Complete)

	survey, err := env.surveys.Survey("survey-3")
	c.Assert(err, qt.IsNil)
	c.Assert(survey.Responses, qt.HasLen, 1)
	// the respondent gets a fresh id, not the account one
	c.Assert(survey.Responses[0].UserID, qt.Not(qt.Equals), "")
	c.Assert(survey.Responses[0].UserID, qt.Not(qt.Equals), "user-1")

	user, err := env.users.User("user-1")
	c.Assert(err, qt.IsNil)
	c.Assert(user.HasCompleted("survey-3"), qt.IsFalse)
}

func TestTakeSurveyAnonymous(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, false)

	var info apicommon.TakingInfo
	env.requestAndParse(c, http.MethodPost, "/take/survey-1", "", nil, http.StatusOK, &info)
	c.Assert(info.Progress.Total, qt.Equals, 4)

	answers := map[string][]string{
		"q1": {"5"},
		"q2": {"Very Easy"},
		"q4": {"Yes"},
	}
	for i := 0; i < 4; i++ {
		id := info.Question.ID
		if values, ok := answers[id]; ok {
			env.requestAndParse(c, http.MethodPost, takePath(&info, "answer"), "",
				&apicommon.AnswerRequest{QuestionID: id, Values: values}, http.StatusOK, &info)
		}
		if i == 3 {
			break
		}
		// the text question is optional
		env.requestAndParse(c, http.MethodPost, takePath(&info, "next"), "", nil, http.StatusOK, &info)
	}
	env.requestAndParse(c, http.MethodPost, takePath(&info, "respondent"), "",
		&apicommon.RespondentRequest{Name: "Ann", Email: "ann@example.com"}, http.StatusOK, &info)
	// next on the last question submits
	env.requestAndParse(c, http.MethodPost, takePath(&info, "next"), "", nil, http.StatusOK, &info)
	c.Assert(info.Progress.State, qt.Equals, taking.Complete)

	survey, err := env.surveys.Survey("survey-1")
	c.Assert(err, qt.IsNil)
	c.Assert(survey.Responses, qt.HasLen, 3)
	last := survey.Responses[2]
	c.Assert(last.UserID, qt.Not(qt.Equals), "")
	c.Assert(last.UserID, qt.Not(qt.Equals), "user-1")
	_, answered := last.Answers["q3"]
	c.Assert(answered, qt.IsFalse)

	user, err := env.users.User("user-1")
	c.Assert(err, qt.IsNil)
	c.Assert(user.HasCompleted("survey-1"), qt.IsFalse)
}

func TestTakeSurveyErrors(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, false)

	env.requestError(c, http.MethodPost, "/take/nope", "", nil, http.StatusNotFound, 40030)

	inactive := false
	c.Assert(env.surveys.UpdateSurvey("survey-2", &surveys.SurveyUpdate{IsActive: &inactive}), qt.IsNil)
	env.requestError(c, http.MethodPost, "/take/survey-2", "", nil, http.StatusNotFound, 40034)

	past := time.Now().Add(-time.Hour)
	c.Assert(env.surveys.UpdateSurvey("survey-4", &surveys.SurveyUpdate{ExpiresAt: &past}), qt.IsNil)
	env.requestError(c, http.MethodPost, "/take/survey-4", "", nil, http.StatusNotFound, 40034)

	var info apicommon.TakingInfo
	env.requestAndParse(c, http.MethodPost, "/take/survey-3", "", nil, http.StatusOK, &info)

	c.Run("unknown session", func(c *qt.C) {
		env.requestError(c, http.MethodGet, "/take/survey-3/nope", "", nil, http.StatusNotFound, 40033)
	})

	c.Run("session of another survey", func(c *qt.C) {
		env.requestError(c, http.MethodGet, "/take/survey-1/"+info.SessionID, "", nil, http.StatusNotFound, 40033)
	})

	c.Run("respondent before the last question", func(c *qt.C) {
		env.requestError(c, http.MethodPost, takePath(&info, "respondent"), "",
			&apicommon.RespondentRequest{Name: "Ann", Email: "ann@example.com"}, http.StatusBadRequest, 40020)
		env.requestError(c, http.MethodPost, takePath(&info, "submit"), "", nil, http.StatusBadRequest, 40020)
	})

	c.Run("answer without question", func(c *qt.C) {
		env.requestError(c, http.MethodPost, takePath(&info, "answer"), "",
			&apicommon.AnswerRequest{Values: []string{"x"}}, http.StatusBadRequest, 40010)
	})

	c.Run("unknown user token", func(c *qt.C) {
		// the flow is taken anonymously
		_, token, err := env.api.auth.Encode(map[string]any{apicommon.UserIDClaim: "ghost"})
		c.Assert(err, qt.IsNil)
		env.requestAndParse(c, http.MethodPost, "/take/survey-3", token, nil, http.StatusOK, nil)

		_, foreign, err := jwtauth.New("HS256", []byte("another-secret"), nil).Encode(
			map[string]any{apicommon.UserIDClaim: "user-1"})
		c.Assert(err, qt.IsNil)
		env.requestAndParse(c, http.MethodPost, "/take/survey-3", foreign, nil, http.StatusOK, nil)
	})
}

func TestTakingSessionsEvicted(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t, false)

	var first apicommon.TakingInfo
	env.requestAndParse(c, http.MethodPost, "/take/survey-3", "", nil, http.StatusOK, &first)
	for i := 0; i < 16; i++ {
		env.requestAndParse(c, http.MethodPost, "/take/survey-3", "", nil, http.StatusOK, nil)
	}
	env.requestError(c, http.MethodGet, takePath(&first, ""), "", nil, http.StatusNotFound, 40033)
}
