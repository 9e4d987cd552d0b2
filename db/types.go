package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuestionType identifies how a question is answered.
type QuestionType string

const (
	MultipleChoice  QuestionType = "multiple-choice"
	TextQuestion    QuestionType = "text"
	RatingQuestion  QuestionType = "rating"
	BooleanQuestion QuestionType = "boolean"
)

// Valid returns true if the question type is one of the known types.
func (qt QuestionType) Valid() bool {
	switch qt {
	case MultipleChoice, TextQuestion, RatingQuestion, BooleanQuestion:
		return true
	}
	return false
}

// HasOptions returns true for the question types that are answered by
// picking one of an ordered list of options.
func (qt QuestionType) HasOptions() bool {
	return qt == MultipleChoice || qt == RatingQuestion
}

// Question is a single entry of a survey questionnaire.
type Question struct {
	ID       string       `json:"id" bson:"id"`
	Type     QuestionType `json:"type" bson:"type"`
	Question string       `json:"question" bson:"question"`
	Options  []string     `json:"options,omitempty" bson:"options,omitempty"`
	Required bool         `json:"required" bson:"required"`
}

// Clone returns a copy of the question that shares no memory with q.
func (q Question) Clone() Question {
	q.Options = cloneStrings(q.Options)
	return q
}

// SurveyResponse is the record produced when a respondent completes a
// survey. It is never modified after creation.
type SurveyResponse struct {
	ID            string            `json:"id" bson:"_id"`
	SurveyID      string            `json:"surveyId" bson:"surveyId"`
	UserID        string            `json:"userId" bson:"userId"`
	Answers       map[string]Answer `json:"answers" bson:"answers"`
	CompletedAt   time.Time         `json:"completedAt" bson:"completedAt"`
	RewardClaimed bool              `json:"rewardClaimed" bson:"rewardClaimed"`
}

// Clone returns a deep copy of the response.
func (r SurveyResponse) Clone() SurveyResponse {
	if r.Answers != nil {
		answers := make(map[string]Answer, len(r.Answers))
		for id, a := range r.Answers {
			answers[id] = a.Clone()
		}
		r.Answers = answers
	}
	return r
}

// Survey is a questionnaire published by a company. MaxQuestions is always
// derived from PackageType through the package catalog.
type Survey struct {
	ID                string           `json:"id" bson:"_id"`
	Title             string           `json:"title" bson:"title"`
	Description       string           `json:"description" bson:"description"`
	CompanyID         string           `json:"companyId" bson:"companyId"`
	CompanyName       string           `json:"companyName" bson:"companyName"`
	Questions         []Question       `json:"questions" bson:"questions"`
	Responses         []SurveyResponse `json:"responses" bson:"responses"`
	CreatedAt         time.Time        `json:"createdAt" bson:"createdAt"`
	ExpiresAt         *time.Time       `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	IsActive          bool             `json:"isActive" bson:"isActive"`
	PackageType       PackageTier      `json:"packageType" bson:"packageType"`
	MaxQuestions      int              `json:"maxQuestions" bson:"maxQuestions"`
	RewardPerResponse decimal.Decimal  `json:"rewardPerResponse" bson:"rewardPerResponse"`
}

// Expired returns true if the survey has an expiry time and it is before t.
func (s *Survey) Expired(t time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(t)
}

// Question returns the question with the given id or nil.
func (s *Survey) Question(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// TotalRewards returns the amount paid out for the responses received.
func (s *Survey) TotalRewards() decimal.Decimal {
	return s.RewardPerResponse.Mul(decimal.NewFromInt(int64(len(s.Responses))))
}

// Clone returns a deep copy of the survey.
func (s *Survey) Clone() *Survey {
	if s == nil {
		return nil
	}
	c := *s
	if s.Questions != nil {
		c.Questions = make([]Question, len(s.Questions))
		for i, q := range s.Questions {
			c.Questions[i] = q.Clone()
		}
	}
	if s.Responses != nil {
		c.Responses = make([]SurveyResponse, len(s.Responses))
		for i, r := range s.Responses {
			c.Responses[i] = r.Clone()
		}
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

// Company is a survey author. The email works as its login key.
type Company struct {
	ID           string      `json:"id" bson:"_id"`
	Name         string      `json:"name" bson:"name"`
	Email        string      `json:"email" bson:"email"`
	Subscription PackageTier `json:"subscription" bson:"subscription"`
	Surveys      []string    `json:"surveys" bson:"surveys"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
}

// Clone returns a deep copy of the company.
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	cc := *c
	cc.Surveys = cloneStrings(c.Surveys)
	return &cc
}

// User is a registered survey taker.
type User struct {
	ID               string    `json:"id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	FavoriteSurveys  []string  `json:"favoriteSurveys" bson:"favoriteSurveys"`
	CompletedSurveys []string  `json:"completedSurveys" bson:"completedSurveys"`
}

// HasFavorite returns true if the survey id is in the user favorite set.
func (u *User) HasFavorite(surveyID string) bool {
	return containsString(u.FavoriteSurveys, surveyID)
}

// HasCompleted returns true if the survey id is in the user completed set.
func (u *User) HasCompleted(surveyID string) bool {
	return containsString(u.CompletedSurveys, surveyID)
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cu := *u
	cu.FavoriteSurveys = cloneStrings(u.FavoriteSurveys)
	cu.CompletedSurveys = cloneStrings(u.CompletedSurveys)
	return &cu
}
