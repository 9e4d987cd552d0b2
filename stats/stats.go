// Package stats derives the read-only dashboard figures shown to companies,
// survey takers and anonymous visitors. Everything is recomputed from the
// surveys passed in; nothing is cached.
package stats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/db"
)

const (
	chartNameLength  = 15
	textSampleLength = 5
)

// CompanyStats aggregates every survey owned by a company.
type CompanyStats struct {
	TotalSurveys     int             `json:"totalSurveys"`
	TotalResponses   int             `json:"totalResponses"`
	TotalRewardsPaid decimal.Decimal `json:"totalRewardsPaid"`
}

// ForCompany computes the survey count, response count and rewards paid
// (responses times reward per response, summed per survey) of the company.
func ForCompany(surveys []db.Survey, companyID string) CompanyStats {
	stats := CompanyStats{TotalRewardsPaid: decimal.Zero}
	for i := range surveys {
		if surveys[i].CompanyID != companyID {
			continue
		}
		stats.TotalSurveys++
		stats.TotalResponses += len(surveys[i].Responses)
		stats.TotalRewardsPaid = stats.TotalRewardsPaid.Add(surveys[i].TotalRewards())
	}
	return stats
}

// ChartEntry is one bar of the per survey dashboard chart.
type ChartEntry struct {
	SurveyID  string          `json:"surveyId"`
	Name      string          `json:"name"`
	Responses int             `json:"responses"`
	Rewards   decimal.Decimal `json:"rewards"`
	Questions int             `json:"questions"`
}

// SurveyChart returns one entry per survey, with long titles truncated.
func SurveyChart(surveys []db.Survey) []ChartEntry {
	entries := make([]ChartEntry, 0, len(surveys))
	for i := range surveys {
		entries = append(entries, ChartEntry{
			SurveyID:  surveys[i].ID,
			Name:      truncate(surveys[i].Title, chartNameLength),
			Responses: len(surveys[i].Responses),
			Rewards:   surveys[i].TotalRewards(),
			Questions: len(surveys[i].Questions),
		})
	}
	return entries
}

// PackageCount is the number of surveys published under a tier.
type PackageCount struct {
	Package db.PackageTier `json:"name"`
	Count   int            `json:"count"`
}

// PackageDistribution counts surveys per package tier, in the order the
// tiers first appear.
func PackageDistribution(surveys []db.Survey) []PackageCount {
	var counts []PackageCount
	index := map[db.PackageTier]int{}
	for i := range surveys {
		tier := surveys[i].PackageType
		if pos, ok := index[tier]; ok {
			counts[pos].Count++
			continue
		}
		index[tier] = len(counts)
		counts = append(counts, PackageCount{Package: tier, Count: 1})
	}
	return counts
}

// TrendPoint is one step of the cumulative survey trend.
type TrendPoint struct {
	Label     string `json:"month"`
	Surveys   int    `json:"surveys"`
	Responses int    `json:"responses"`
}

// Trend returns the cumulative survey count next to the responses of each
// survey, in the given order.
func Trend(surveys []db.Survey) []TrendPoint {
	points := make([]TrendPoint, 0, len(surveys))
	for i := range surveys {
		points = append(points, TrendPoint{
			Label:     fmt.Sprintf("Month %d", i+1),
			Surveys:   i + 1,
			Responses: len(surveys[i].Responses),
		})
	}
	return points
}

// Dashboard groups the figures of the company dashboard.
type Dashboard struct {
	Stats    CompanyStats   `json:"stats"`
	Surveys  []ChartEntry   `json:"surveys"`
	Packages []PackageCount `json:"packages"`
	Trend    []TrendPoint   `json:"trend"`
}

// CompanyDashboard builds the dashboard of the company from all surveys.
func CompanyDashboard(surveys []db.Survey, companyID string) *Dashboard {
	var owned []db.Survey
	for i := range surveys {
		if surveys[i].CompanyID == companyID {
			owned = append(owned, surveys[i])
		}
	}
	return &Dashboard{
		Stats:    ForCompany(owned, companyID),
		Surveys:  SurveyChart(owned),
		Packages: PackageDistribution(owned),
		Trend:    Trend(owned),
	}
}

// AnswerCount is how many responses gave the same answer.
type AnswerCount struct {
	Answer  string          `json:"answer"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

// QuestionAnalytics summarizes the answers given to one question. Only the
// fields relevant to the question type are filled.
type QuestionAnalytics struct {
	QuestionID string              `json:"questionId"`
	Type       db.QuestionType     `json:"type"`
	Question   string              `json:"question"`
	Answered   int                 `json:"answered"`
	Counts     []AnswerCount       `json:"counts,omitempty"`
	Average    decimal.NullDecimal `json:"average"`
	Ratings    int                 `json:"ratings,omitempty"`
	Samples    []string            `json:"samples,omitempty"`
	More       int                 `json:"more,omitempty"`
}

// Questions computes the analytics of every question of the survey.
// Choice and boolean questions are tallied, ratings are averaged and text
// answers are sampled.
func Questions(survey *db.Survey) []QuestionAnalytics {
	result := make([]QuestionAnalytics, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		var answers []db.Answer
		for _, r := range survey.Responses {
			if a, ok := r.Answers[q.ID]; ok && !a.IsZero() {
				answers = append(answers, a)
			}
		}
		qa := QuestionAnalytics{
			QuestionID: q.ID,
			Type:       q.Type,
			Question:   q.Question,
			Answered:   len(answers),
		}
		switch q.Type {
		case db.MultipleChoice, db.BooleanQuestion:
			qa.Counts = tally(answers, len(survey.Responses))
		case db.RatingQuestion:
			qa.Average, qa.Ratings = ratingAverage(q, answers)
		default:
			for i, a := range answers {
				if i == textSampleLength {
					qa.More = len(answers) - textSampleLength
					break
				}
				qa.Samples = append(qa.Samples, a.String())
			}
		}
		result = append(result, qa)
	}
	return result
}

func tally(answers []db.Answer, responses int) []AnswerCount {
	var counts []AnswerCount
	index := map[string]int{}
	for _, a := range answers {
		label := a.String()
		if pos, ok := index[label]; ok {
			counts[pos].Count++
			continue
		}
		index[label] = len(counts)
		counts = append(counts, AnswerCount{Answer: label, Count: 1})
	}
	for i := range counts {
		counts[i].Percent = decimal.NewFromInt(int64(counts[i].Count * 100)).
			DivRound(decimal.NewFromInt(int64(responses)), 1)
	}
	return counts
}

// ratingAverage averages the numeric value of the answers. Answers that are
// not numbers count as their 1-based position in the option list; answers
// matching neither are ignored.
func ratingAverage(q db.Question, answers []db.Answer) (decimal.NullDecimal, int) {
	sum := decimal.Zero
	n := 0
	for _, a := range answers {
		value, ok := ratingValue(q, a.String())
		if !ok {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(int64(value)))
		n++
	}
	if n == 0 {
		return decimal.NullDecimal{}, 0
	}
	return decimal.NewNullDecimal(sum.DivRound(decimal.NewFromInt(int64(n)), 1)), n
}

func ratingValue(q db.Question, answer string) (int, bool) {
	if v, err := strconv.Atoi(strings.TrimSpace(answer)); err == nil {
		return v, true
	}
	for i, option := range q.Options {
		if option == answer {
			return i + 1, true
		}
	}
	return 0, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
