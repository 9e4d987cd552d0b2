// Package surveys implements the survey store: the collection of surveys
// and of the companies that author them, the company session and the
// responses collected by each survey. Every mutation is written back to
// the configured storage.
package surveys

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/auth"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/session"
	"github.com/surveypro/saas-backend/stats"
	"go.vocdoni.io/dvote/log"
)

// CompanyAccount is the account kind used to register company credentials.
const CompanyAccount = "company"

var (
	// ErrDuplicateEmail is returned when registering an email that another
	// company already uses.
	ErrDuplicateEmail = fmt.Errorf("email already registered")
	// ErrCompanyNotFound is returned when a survey names a company that does
	// not exist.
	ErrCompanyNotFound = fmt.Errorf("company not found")
	// ErrTooManyQuestions is returned when a survey holds more questions
	// than its package allows.
	ErrTooManyQuestions = fmt.Errorf("too many questions for the package")
	// ErrPackageRequired is returned when publishing a survey without a
	// paid package.
	ErrPackageRequired = fmt.Errorf("a paid package is required")
)

// Config holds the collaborators of the store. Storage and Session may be
// nil, in which case nothing is persisted. A nil Authenticator accepts any
// password.
type Config struct {
	Storage       db.Storage
	Session       *session.Session
	Authenticator auth.Authenticator
}

// Store holds the survey and company collections.
type Store struct {
	storage db.Storage
	session *session.Session
	auth    auth.Authenticator
	now     func() time.Time

	mtx       sync.RWMutex
	surveys   []db.Survey
	companies []db.Company
}

// NewSurvey holds the fields a company provides when publishing a survey.
type NewSurvey struct {
	Title             string
	Description       string
	CompanyID         string
	Questions         []db.Question
	ExpiresAt         *time.Time
	IsActive          bool
	PackageType       db.PackageTier
	RewardPerResponse decimal.Decimal
}

// SurveyUpdate lists the survey fields to change. Nil fields are kept.
type SurveyUpdate struct {
	Title             *string
	Description       *string
	Questions         []db.Question
	ExpiresAt         *time.Time
	IsActive          *bool
	PackageType       *db.PackageTier
	RewardPerResponse *decimal.Decimal
}

// NewCompany holds the fields of a company created outside the
// registration flow.
type NewCompany struct {
	Name         string
	Email        string
	Subscription db.PackageTier
}

// New creates the store and restores both collections, falling back to
// the seed dataset when the storage holds nothing usable.
func New(conf *Config) *Store {
	if conf == nil {
		conf = &Config{}
	}
	s := &Store{
		storage: conf.Storage,
		session: conf.Session,
		auth:    conf.Authenticator,
		now:     time.Now,
	}
	if s.session == nil {
		s.session = session.New(nil)
	}
	if s.auth == nil {
		s.auth = auth.EmailOnly{}
	}
	s.surveys = db.LoadOrSeed(s.storage, db.SurveysKey, db.SeedSurveys)
	s.companies = db.LoadOrSeed(s.storage, db.CompaniesKey, db.SeedCompanies)
	log.Infow("survey store ready", "surveys", len(s.surveys), "companies", len(s.companies))
	return s
}

// Session returns the session the store logs companies into.
func (s *Store) Session() *session.Session {
	return s.session
}

// AddSurvey publishes a new survey and links it to its company. The
// question limit is taken from the package catalog.
func (s *Store) AddSurvey(ns *NewSurvey) (string, error) {
	if ns == nil {
		return "", db.ErrInvalidData
	}
	if !ns.PackageType.Paid() {
		return "", ErrPackageRequired
	}
	pkg, err := db.PackageByTier(ns.PackageType)
	if err != nil {
		return "", err
	}
	if len(ns.Questions) > pkg.MaxQuestions {
		return "", fmt.Errorf("%w: %d questions, %s allows %d",
			ErrTooManyQuestions, len(ns.Questions), pkg.Name, pkg.MaxQuestions)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	company := s.company(ns.CompanyID)
	if company == nil {
		return "", ErrCompanyNotFound
	}
	survey := db.Survey{
		ID:                uuid.NewString(),
		Title:             ns.Title,
		Description:       ns.Description,
		CompanyID:         company.ID,
		CompanyName:       company.Name,
		Questions:         cloneQuestions(ns.Questions),
		Responses:         []db.SurveyResponse{},
		CreatedAt:         s.now(),
		ExpiresAt:         ns.ExpiresAt,
		IsActive:          ns.IsActive,
		PackageType:       ns.PackageType,
		MaxQuestions:      pkg.MaxQuestions,
		RewardPerResponse: ns.RewardPerResponse,
	}
	if survey.Questions == nil {
		survey.Questions = []db.Question{}
	}
	s.surveys = append(s.surveys, survey)
	company.Surveys = append(company.Surveys, survey.ID)
	db.SaveSnapshot(s.storage, db.SurveysKey, s.surveys)
	db.SaveSnapshot(s.storage, db.CompaniesKey, s.companies)
	log.Debugw("survey created", "id", survey.ID, "company", company.ID, "questions", len(survey.Questions))
	return survey.ID, nil
}

// UpdateSurvey merges the non-nil fields of the update into the survey.
// Updating an unknown survey does nothing.
func (s *Store) UpdateSurvey(id string, update *SurveyUpdate) error {
	if update == nil {
		return nil
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	survey := s.survey(id)
	if survey == nil {
		return nil
	}
	updated := survey.Clone()
	if update.Title != nil {
		updated.Title = *update.Title
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Questions != nil {
		updated.Questions = cloneQuestions(update.Questions)
	}
	if update.ExpiresAt != nil {
		t := *update.ExpiresAt
		updated.ExpiresAt = &t
	}
	if update.IsActive != nil {
		updated.IsActive = *update.IsActive
	}
	if update.RewardPerResponse != nil {
		updated.RewardPerResponse = *update.RewardPerResponse
	}
	if update.PackageType != nil {
		pkg, err := db.PackageByTier(*update.PackageType)
		if err != nil {
			return err
		}
		updated.PackageType = pkg.ID
		updated.MaxQuestions = pkg.MaxQuestions
	}
	if len(updated.Questions) > updated.MaxQuestions {
		return fmt.Errorf("%w: %d questions, limit is %d",
			ErrTooManyQuestions, len(updated.Questions), updated.MaxQuestions)
	}
	*survey = *updated
	db.SaveSnapshot(s.storage, db.SurveysKey, s.surveys)
	return nil
}

// Survey returns a copy of the survey with the given id.
func (s *Store) Survey(id string) (*db.Survey, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	survey := s.survey(id)
	if survey == nil {
		return nil, db.ErrNotFound
	}
	return survey.Clone(), nil
}

// Surveys returns a copy of every survey.
func (s *Store) Surveys() []db.Survey {
	return s.filterSurveys(func(*db.Survey) bool { return true })
}

// ActiveSurveys returns a copy of the surveys open to respondents.
func (s *Store) ActiveSurveys() []db.Survey {
	return s.filterSurveys(func(survey *db.Survey) bool { return survey.IsActive })
}

// CompanySurveys returns a copy of the surveys owned by the company.
func (s *Store) CompanySurveys(companyID string) []db.Survey {
	return s.filterSurveys(func(survey *db.Survey) bool { return survey.CompanyID == companyID })
}

// AddResponse records a completed response on its survey and returns the
// id assigned to it. The response id and completion time are always set
// by the store. If the survey does not exist nothing changes and
// db.ErrNotFound is returned.
func (s *Store) AddResponse(response *db.SurveyResponse) (string, error) {
	if response == nil {
		return "", db.ErrInvalidData
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	survey := s.survey(response.SurveyID)
	if survey == nil {
		log.Debugw("response for unknown survey dropped", "survey", response.SurveyID)
		return "", db.ErrNotFound
	}
	stored := response.Clone()
	stored.ID = uuid.NewString()
	stored.CompletedAt = s.now()
	survey.Responses = append(survey.Responses, stored)
	db.SaveSnapshot(s.storage, db.SurveysKey, s.surveys)
	return stored.ID, nil
}

// CompanyStats aggregates the surveys of the company.
func (s *Store) CompanyStats(companyID string) stats.CompanyStats {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return stats.ForCompany(s.surveys, companyID)
}

func (s *Store) filterSurveys(keep func(*db.Survey) bool) []db.Survey {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	result := []db.Survey{}
	for i := range s.surveys {
		if keep(&s.surveys[i]) {
			result = append(result, *s.surveys[i].Clone())
		}
	}
	return result
}

// survey returns a pointer into the collection. The caller must hold the
// lock.
func (s *Store) survey(id string) *db.Survey {
	for i := range s.surveys {
		if s.surveys[i].ID == id {
			return &s.surveys[i]
		}
	}
	return nil
}

func cloneQuestions(questions []db.Question) []db.Question {
	if questions == nil {
		return nil
	}
	result := make([]db.Question, len(questions))
	for i, q := range questions {
		result[i] = q.Clone()
	}
	return result
}
