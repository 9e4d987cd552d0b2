package surveys

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/auth"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/session"
	"golang.org/x/crypto/bcrypt"
)

func newTestStorage(t *testing.T) db.Storage {
	storage, err := db.NewLocalStorage(t.TempDir())
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(storage.Close)
	return storage
}

func newTestStore(storage db.Storage) *Store {
	return New(&Config{
		Storage: storage,
		Session: session.New(storage),
	})
}

func questions(n int) []db.Question {
	list := make([]db.Question, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, db.Question{
			ID:       fmt.Sprintf("q%d", i+1),
			Type:     db.TextQuestion,
			Question: fmt.Sprintf("Question %d", i+1),
		})
	}
	return list
}

func TestSeedFallback(t *testing.T) {
	c := qt.New(t)
	store := New(nil)
	c.Assert(store.Surveys(), qt.HasLen, 4)
	c.Assert(store.ActiveSurveys(), qt.HasLen, 4)
	c.Assert(store.Companies(), qt.HasLen, 3)
	c.Assert(store.CompanySurveys("comp-1"), qt.HasLen, 2)
	c.Assert(store.CompanySurveys("nobody"), qt.HasLen, 0)
}

func TestAddSurvey(t *testing.T) {
	c := qt.New(t)
	storage := newTestStorage(t)
	store := newTestStore(storage)

	ns := &NewSurvey{
		Title:             "Onboarding feedback",
		Description:       "Tell us about your first week",
		CompanyID:         "comp-3",
		Questions:         questions(3),
		IsActive:          true,
		PackageType:       db.BasicTier,
		RewardPerResponse: decimal.NewFromInt(2),
	}
	id, err := store.AddSurvey(ns)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Not(qt.Equals), "")

	survey, err := store.Survey(id)
	c.Assert(err, qt.IsNil)
	c.Assert(survey.MaxQuestions, qt.Equals, 10)
	c.Assert(survey.CompanyName, qt.Equals, "Startup Ventures")
	c.Assert(survey.Responses, qt.HasLen, 0)
	c.Assert(survey.CreatedAt.IsZero(), qt.IsFalse)

	again, err := store.Survey(id)
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.DeepEquals, survey)

	// copies are detached from the store
	survey.Questions[0].Question = "changed"
	again, err = store.Survey(id)
	c.Assert(err, qt.IsNil)
	c.Assert(again.Questions[0].Question, qt.Equals, "Question 1")

	company, err := store.Company("comp-3")
	c.Assert(err, qt.IsNil)
	c.Assert(company.Surveys, qt.DeepEquals, []string{"survey-4", id})

	// the surveys survive a restart unchanged
	reopened := newTestStore(storage)
	c.Assert(reopened.Surveys(), qt.DeepEquals, store.Surveys())
	c.Assert(reopened.Companies(), qt.DeepEquals, store.Companies())
	restored, err := reopened.Survey(id)
	c.Assert(err, qt.IsNil)
	c.Assert(restored, qt.DeepEquals, survey)
	company, err = reopened.Company("comp-3")
	c.Assert(err, qt.IsNil)
	c.Assert(company.Surveys, qt.HasLen, 2)
}

func TestAddSurveyRejected(t *testing.T) {
	c := qt.New(t)
	store := newTestStore(newTestStorage(t))
	before := store.Surveys()

	_, err := store.AddSurvey(&NewSurvey{CompanyID: "comp-3", PackageType: db.BasicTier, Questions: questions(11)})
	c.Assert(err, qt.ErrorIs, ErrTooManyQuestions)

	_, err = store.AddSurvey(&NewSurvey{CompanyID: "comp-3", PackageType: db.NoTier, Questions: questions(1)})
	c.Assert(err, qt.ErrorIs, ErrPackageRequired)

	_, err = store.AddSurvey(&NewSurvey{CompanyID: "comp-3", PackageType: "gold", Questions: questions(1)})
	c.Assert(err, qt.ErrorIs, ErrPackageRequired)

	_, err = store.AddSurvey(&NewSurvey{CompanyID: "comp-9", PackageType: db.PremiumTier, Questions: questions(1)})
	c.Assert(err, qt.ErrorIs, ErrCompanyNotFound)

	c.Assert(store.Surveys(), qt.DeepEquals, before)
}

func TestUpdateSurvey(t *testing.T) {
	c := qt.New(t)
	store := newTestStore(newTestStorage(t))

	title := "Brand Awareness Study 2025"
	inactive := false
	premium := db.PremiumTier
	err := store.UpdateSurvey("survey-3", &SurveyUpdate{
		Title:       &title,
		IsActive:    &inactive,
		PackageType: &premium,
	})
	c.Assert(err, qt.IsNil)
	survey, err := store.Survey("survey-3")
	c.Assert(err, qt.IsNil)
	c.Assert(survey.Title, qt.Equals, title)
	c.Assert(survey.IsActive, qt.IsFalse)
	c.Assert(survey.MaxQuestions, qt.Equals, 100)
	c.Assert(survey.Description, qt.Equals, "Help us understand market perception and brand recognition in your industry.")
	c.Assert(store.ActiveSurveys(), qt.HasLen, 3)

	basic := db.BasicTier
	err = store.UpdateSurvey("survey-3", &SurveyUpdate{PackageType: &basic, Questions: questions(12)})
	c.Assert(err, qt.ErrorIs, ErrTooManyQuestions)
	survey, err = store.Survey("survey-3")
	c.Assert(err, qt.IsNil)
	c.Assert(survey.Questions, qt.HasLen, 3)
	c.Assert(survey.PackageType, qt.Equals, db.PremiumTier)

	// unknown surveys are ignored
	before := store.Surveys()
	c.Assert(store.UpdateSurvey("missing", &SurveyUpdate{Title: &title}), qt.IsNil)
	c.Assert(store.Surveys(), qt.DeepEquals, before)
}

func TestAddResponse(t *testing.T) {
	c := qt.New(t)
	store := newTestStore(newTestStorage(t))

	before := store.Surveys()
	_, err := store.AddResponse(&db.SurveyResponse{SurveyID: "missing", UserID: "u"})
	c.Assert(err, qt.ErrorIs, db.ErrNotFound)
	c.Assert(store.Surveys(), qt.DeepEquals, before)

	id, err := store.AddResponse(&db.SurveyResponse{
		ID:       "ignored",
		SurveyID: "survey-3",
		UserID:   "respondent",
		Answers: map[string]db.Answer{
			"q1": db.ChoiceAnswer("Social Media"),
			"q2": db.ChoiceAnswer("Better"),
			"q3": db.ChoiceAnswer("yes"),
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Not(qt.Equals), "ignored")

	survey, err := store.Survey("survey-3")
	c.Assert(err, qt.IsNil)
	c.Assert(survey.Responses, qt.HasLen, 1)
	c.Assert(survey.Responses[0].ID, qt.Equals, id)
	c.Assert(survey.Responses[0].CompletedAt.IsZero(), qt.IsFalse)
	c.Assert(survey.Responses[0].RewardClaimed, qt.IsFalse)
	c.Assert(survey.Responses[0].Answers["q1"], qt.DeepEquals, db.ChoiceAnswer("Social Media"))

	stats := store.CompanyStats("comp-2")
	c.Assert(stats.TotalResponses, qt.Equals, 1)
	c.Assert(stats.TotalRewardsPaid.Equal(decimal.NewFromInt(4)), qt.IsTrue)

	c.Run("only the response is appended", func(c *qt.C) {
		before := store.Surveys()
		id, err := store.AddResponse(&db.SurveyResponse{
			SurveyID: "survey-1",
			UserID:   "respondent",
			Answers:  map[string]db.Answer{"q1": db.ChoiceAnswer("4")},
		})
		c.Assert(err, qt.IsNil)
		after := store.Surveys()
		c.Assert(after, qt.HasLen, len(before))
		for i := range before {
			if before[i].ID != "survey-1" {
				c.Assert(after[i], qt.DeepEquals, before[i])
				continue
			}
			responses := after[i].Responses
			c.Assert(responses, qt.HasLen, len(before[i].Responses)+1)
			c.Assert(responses[:len(before[i].Responses)], qt.DeepEquals, before[i].Responses)
			c.Assert(responses[len(responses)-1].ID, qt.Equals, id)
			after[i].Responses = before[i].Responses
			c.Assert(after[i], qt.DeepEquals, before[i])
		}
	})
}

func TestCompanyStats(t *testing.T) {
	c := qt.New(t)
	store := New(nil)
	stats := store.CompanyStats("comp-1")
	c.Assert(stats.TotalSurveys, qt.Equals, 2)
	c.Assert(stats.TotalResponses, qt.Equals, 3)
	c.Assert(stats.TotalRewardsPaid.Equal(decimal.NewFromInt(13)), qt.IsTrue)
}

func TestRegisterCompany(t *testing.T) {
	c := qt.New(t)
	storage := newTestStorage(t)
	store := newTestStore(storage)

	_, err := store.RegisterCompany("Copycat", "ADMIN@techcorp.com ", "secret", db.BasicTier)
	c.Assert(err, qt.ErrorIs, ErrDuplicateEmail)
	c.Assert(store.Companies(), qt.HasLen, 3)
	c.Assert(store.CurrentCompany(), qt.IsNil)

	_, err = store.RegisterCompany("Unknown", "new@example.com", "secret", "gold")
	c.Assert(err, qt.ErrorIs, db.ErrUnknownPackage)

	company, err := store.RegisterCompany("Acme", " Hello@Acme.io", "secret", db.NoTier)
	c.Assert(err, qt.IsNil)
	c.Assert(company.Email, qt.Equals, "hello@acme.io")
	c.Assert(company.Subscription, qt.Equals, db.NoTier)
	c.Assert(store.Companies(), qt.HasLen, 4)
	c.Assert(store.CurrentCompany(), qt.DeepEquals, company)

	c.Assert(store.SetCompanySubscription(company.ID, db.StandardTier), qt.IsNil)
	c.Assert(store.CurrentCompany().Subscription, qt.Equals, db.StandardTier)
	c.Assert(store.SetCompanySubscription("missing", db.StandardTier), qt.ErrorIs, db.ErrNotFound)

	// the session is restored from storage
	restored := session.New(storage)
	c.Assert(restored.Company().ID, qt.Equals, company.ID)

	store.Logout()
	c.Assert(store.CurrentCompany(), qt.IsNil)
	c.Assert(session.New(storage).Company(), qt.IsNil)

	byEmail, err := store.CompanyByEmail("HELLO@acme.io")
	c.Assert(err, qt.IsNil)
	c.Assert(byEmail.ID, qt.Equals, company.ID)

	id, err := store.AddCompany(&NewCompany{Name: "Other", Email: "other@acme.io", Subscription: db.BasicTier})
	c.Assert(err, qt.IsNil)
	_, err = store.Company(id)
	c.Assert(err, qt.IsNil)
	_, err = store.AddCompany(&NewCompany{Name: "Other", Email: "OTHER@acme.io", Subscription: db.BasicTier})
	c.Assert(err, qt.ErrorIs, ErrDuplicateEmail)
	_, err = store.AddCompany(&NewCompany{Name: "Blank", Email: "blank@acme.io"})
	c.Assert(err, qt.ErrorIs, db.ErrUnknownPackage)
}

func TestLoginCompany(t *testing.T) {
	c := qt.New(t)
	storage := newTestStorage(t)
	store := newTestStore(storage)

	// the demo authenticator accepts any password
	company, err := store.LoginCompany("Admin@TechCorp.com", "whatever")
	c.Assert(err, qt.IsNil)
	c.Assert(company.ID, qt.Equals, "comp-1")
	c.Assert(store.CurrentCompany().ID, qt.Equals, "comp-1")

	_, err = store.LoginCompany("nobody@example.com", "whatever")
	c.Assert(err, qt.ErrorIs, db.ErrNotFound)

	authenticator, err := auth.NewBcrypt(storage, bcrypt.MinCost)
	c.Assert(err, qt.IsNil)
	secure := New(&Config{Storage: storage, Session: session.New(nil), Authenticator: authenticator})
	_, err = secure.RegisterCompany("Acme", "hello@acme.io", "short", db.BasicTier)
	c.Assert(err, qt.ErrorIs, auth.ErrPasswordTooShort)
	_, err = secure.RegisterCompany("Acme", "hello@acme.io", "long enough", db.BasicTier)
	c.Assert(err, qt.IsNil)
	secure.Logout()

	_, err = secure.LoginCompany("hello@acme.io", "wrong password")
	c.Assert(err, qt.ErrorIs, db.ErrNotFound)
	_, err = secure.LoginCompany("HELLO@acme.io", "long enough")
	c.Assert(err, qt.IsNil)
}
