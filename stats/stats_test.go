package stats

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/db"
)

func TestForCompany(t *testing.T) {
	c := qt.New(t)
	surveys := []db.Survey{
		{
			ID:                "a",
			CompanyID:         "comp",
			Responses:         make([]db.SurveyResponse, 2),
			RewardPerResponse: decimal.NewFromInt(5),
		},
		{
			ID:                "b",
			CompanyID:         "comp",
			RewardPerResponse: decimal.NewFromInt(3),
		},
		{
			ID:                "c",
			CompanyID:         "other",
			Responses:         make([]db.SurveyResponse, 7),
			RewardPerResponse: decimal.NewFromInt(1),
		},
	}
	stats := ForCompany(surveys, "comp")
	c.Assert(stats.TotalSurveys, qt.Equals, 2)
	c.Assert(stats.TotalResponses, qt.Equals, 2)
	c.Assert(stats.TotalRewardsPaid.Equal(decimal.NewFromInt(10)), qt.IsTrue)

	empty := ForCompany(surveys, "nobody")
	c.Assert(empty.TotalSurveys, qt.Equals, 0)
	c.Assert(empty.TotalRewardsPaid.IsZero(), qt.IsTrue)
}

func TestCompanyDashboard(t *testing.T) {
	c := qt.New(t)
	dashboard := CompanyDashboard(db.SeedSurveys(), "comp-1")
	c.Assert(dashboard.Stats.TotalSurveys, qt.Equals, 2)
	c.Assert(dashboard.Stats.TotalResponses, qt.Equals, 3)
	c.Assert(dashboard.Stats.TotalRewardsPaid.Equal(decimal.NewFromInt(13)), qt.IsTrue)

	c.Assert(dashboard.Surveys, qt.HasLen, 2)
	c.Assert(dashboard.Surveys[0].Name, qt.Equals, "Customer Satisf...")
	c.Assert(dashboard.Surveys[0].Rewards.Equal(decimal.NewFromInt(10)), qt.IsTrue)
	c.Assert(dashboard.Surveys[1].Name, qt.Equals, "Product Feature...")
	c.Assert(dashboard.Surveys[1].Questions, qt.Equals, 3)

	c.Assert(dashboard.Packages, qt.DeepEquals, []PackageCount{{Package: db.PremiumTier, Count: 2}})
	c.Assert(dashboard.Trend[1], qt.DeepEquals, TrendPoint{Label: "Month 2", Surveys: 2, Responses: 1})

	all := PackageDistribution(db.SeedSurveys())
	c.Assert(all, qt.DeepEquals, []PackageCount{
		{Package: db.PremiumTier, Count: 2},
		{Package: db.StandardTier, Count: 1},
		{Package: db.BasicTier, Count: 1},
	})
	c.Assert(truncate("Short title", chartNameLength), qt.Equals, "Short title")
}

func TestQuestionAnalytics(t *testing.T) {
	c := qt.New(t)
	survey := db.SeedSurveys()[0]
	analytics := Questions(&survey)
	c.Assert(analytics, qt.HasLen, 4)

	rating := analytics[0]
	c.Assert(rating.Ratings, qt.Equals, 2)
	c.Assert(rating.Average.Valid, qt.IsTrue)
	c.Assert(rating.Average.Decimal.Equal(decimal.RequireFromString("4.5")), qt.IsTrue)

	choice := analytics[1]
	c.Assert(choice.Counts, qt.HasLen, 2)
	c.Assert(choice.Counts[0].Answer, qt.Equals, "Web Platform")
	c.Assert(choice.Counts[0].Count, qt.Equals, 1)
	c.Assert(choice.Counts[0].Percent.Equal(decimal.NewFromInt(50)), qt.IsTrue)

	text := analytics[2]
	c.Assert(text.Samples, qt.DeepEquals, []string{"Better mobile integration", "More customization options"})
	c.Assert(text.More, qt.Equals, 0)

	boolean := analytics[3]
	c.Assert(boolean.Counts, qt.HasLen, 1)
	c.Assert(boolean.Counts[0].Count, qt.Equals, 2)
	c.Assert(boolean.Counts[0].Percent.Equal(decimal.NewFromInt(100)), qt.IsTrue)
}

func TestQuestionAnalyticsEdgeCases(t *testing.T) {
	c := qt.New(t)
	survey := &db.Survey{
		Questions: []db.Question{
			{ID: "r", Type: db.RatingQuestion, Options: []string{"Bad", "Good"}},
			{ID: "t", Type: db.TextQuestion},
			{ID: "m", Type: db.MultipleChoice, Options: []string{"A", "B", "C"}},
		},
	}
	for i := 0; i < 7; i++ {
		answers := map[string]db.Answer{"t": db.TextAnswer("answer")}
		if i == 0 {
			answers["r"] = db.ChoiceAnswer("3")
			answers["m"] = db.MultiChoiceAnswer("A", "C")
		}
		if i == 1 {
			answers["r"] = db.ChoiceAnswer("Great")
		}
		survey.Responses = append(survey.Responses, db.SurveyResponse{Answers: answers})
	}
	analytics := Questions(survey)
	// only the numeric answer counts, unknown labels are ignored
	c.Assert(analytics[0].Ratings, qt.Equals, 1)
	c.Assert(analytics[0].Average.Decimal.Equal(decimal.NewFromInt(3)), qt.IsTrue)
	c.Assert(analytics[1].Samples, qt.HasLen, 5)
	c.Assert(analytics[1].More, qt.Equals, 2)
	c.Assert(analytics[2].Counts[0].Answer, qt.Equals, "A, C")
	c.Assert(analytics[2].Answered, qt.Equals, 1)

	noRatings := Questions(&db.Survey{Questions: survey.Questions[:1]})
	c.Assert(noRatings[0].Average.Valid, qt.IsFalse)
}
