// Package taking drives a respondent through a survey one question at a
// time, validates required answers and records the finished response.
//
// A Machine is either answering the question at its current index,
// submitting the response, or complete. It never leaves Complete. Machines
// live only in memory: an abandoned one is simply dropped.
package taking

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/db"
	"go.vocdoni.io/dvote/log"
)

// State is the phase of the taking flow.
type State int

const (
	// Answering means the respondent is on the question at Index.
	Answering State = iota
	// Submitting means the response is being recorded.
	Submitting
	// Complete means the response was recorded.
	Complete
)

func (s State) String() string {
	switch s {
	case Answering:
		return "answering"
	case Submitting:
		return "submitting"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "answering":
		*s = Answering
	case "submitting":
		*s = Submitting
	case "complete":
		*s = Complete
	default:
		return fmt.Errorf("unknown state %q", text)
	}
	return nil
}

var (
	// ErrSurveyNotFound is returned by New when there is no survey.
	ErrSurveyNotFound = fmt.Errorf("survey not found")
	// ErrSurveyInactive is returned by New for surveys not accepting
	// responses.
	ErrSurveyInactive = fmt.Errorf("survey is not active")
	// ErrNoQuestions is returned by New for surveys without questions.
	ErrNoQuestions = fmt.Errorf("survey has no questions")
	// ErrSurveyExpired is returned by New for surveys past their expiry.
	ErrSurveyExpired = fmt.Errorf("survey has expired")

	// ErrAnswerRequired is returned when moving on from a required question
	// without a valid answer.
	ErrAnswerRequired = fmt.Errorf("answer required")
	// ErrRespondentRequired is returned when submitting without a name or
	// an email.
	ErrRespondentRequired = fmt.Errorf("respondent name and email are required")
	// ErrNotAllowed is returned when an action is not valid in the current
	// state, like going back from the first question.
	ErrNotAllowed = fmt.Errorf("action not allowed")
	// ErrUnknownQuestion is returned when answering a question the survey
	// does not have.
	ErrUnknownQuestion = fmt.Errorf("unknown question")
)

// Recorder stores a finished response and returns its id.
type Recorder interface {
	AddResponse(response *db.SurveyResponse) (string, error)
}

// Config holds what a machine needs to start. RespondentID identifies who
// answers; when empty a fresh id is generated. OnComplete, if set, is
// called once after the response is recorded. It runs with the machine
// locked and must not call back into it.
type Config struct {
	Survey       *db.Survey
	Recorder     Recorder
	RespondentID string
	OnComplete   func(response *db.SurveyResponse, name, email string)
}

// Progress reports the position of the respondent in the survey.
type Progress struct {
	State   State `json:"state"`
	Index   int   `json:"index"`
	Total   int   `json:"total"`
	Percent int   `json:"percent"`
}

// Machine is the state of one respondent taking one survey. It is safe for
// concurrent use.
type Machine struct {
	mtx          sync.Mutex
	survey       *db.Survey
	recorder     Recorder
	onComplete   func(*db.SurveyResponse, string, string)
	respondentID string

	state    State
	index    int
	answers  map[string]db.Answer
	name     string
	email    string
	response *db.SurveyResponse
}

// New checks the survey can be taken and returns a machine on its first
// question. The survey is copied.
func New(conf *Config) (*Machine, error) {
	if conf == nil || conf.Survey == nil {
		return nil, ErrSurveyNotFound
	}
	if conf.Recorder == nil {
		return nil, fmt.Errorf("missing response recorder")
	}
	survey := conf.Survey
	switch {
	case !survey.IsActive:
		return nil, ErrSurveyInactive
	case len(survey.Questions) == 0:
		return nil, ErrNoQuestions
	case survey.Expired(time.Now()):
		return nil, ErrSurveyExpired
	}
	respondentID := conf.RespondentID
	if respondentID == "" {
		respondentID = uuid.NewString()
	}
	return &Machine{
		survey:       survey.Clone(),
		recorder:     conf.Recorder,
		onComplete:   conf.OnComplete,
		respondentID: respondentID,
		state:        Answering,
		answers:      map[string]db.Answer{},
	}, nil
}

// SurveyID returns the id of the survey being taken.
func (m *Machine) SurveyID() string {
	return m.survey.ID
}

// SetAnswer records the answer to a question, replacing any previous one.
// The variant is chosen from the question type: text questions keep the
// first value as text, several values on a multiple choice question make a
// multi choice answer and anything else is a single choice. Calling it
// without values removes the answer. The current index does not change
// and nothing is validated until the next move.
func (m *Machine) SetAnswer(questionID string, values ...string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.state != Answering {
		return ErrNotAllowed
	}
	q := m.survey.Question(questionID)
	if q == nil {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if len(values) == 0 {
		delete(m.answers, questionID)
		return nil
	}
	switch {
	case q.Type == db.TextQuestion:
		m.answers[questionID] = db.TextAnswer(values[0])
	case q.Type == db.MultipleChoice && len(values) > 1:
		m.answers[questionID] = db.MultiChoiceAnswer(values...)
	default:
		m.answers[questionID] = db.ChoiceAnswer(values[0])
	}
	return nil
}

// CanProceed returns true if the current question is optional or holds a
// valid answer. Text answers must not be blank.
func (m *Machine) CanProceed() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.canProceed()
}

func (m *Machine) canProceed() bool {
	if m.state != Answering {
		return false
	}
	q := m.survey.Questions[m.index]
	if !q.Required {
		return true
	}
	answer, ok := m.answers[q.ID]
	if !ok {
		return false
	}
	if q.Type == db.TextQuestion {
		return strings.TrimSpace(answer.Value) != ""
	}
	return !answer.IsZero()
}

// Next moves to the following question. On the last question it submits
// the response instead.
func (m *Machine) Next() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.state != Answering {
		return ErrNotAllowed
	}
	if !m.canProceed() {
		return ErrAnswerRequired
	}
	if m.last() {
		return m.submit()
	}
	m.index++
	return nil
}

// Previous moves back one question.
func (m *Machine) Previous() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.state != Answering || m.index == 0 {
		return ErrNotAllowed
	}
	m.index--
	return nil
}

// SetRespondent sets the name and email the reward is paid to. They are
// only asked for on the last question.
func (m *Machine) SetRespondent(name, email string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.state != Answering || !m.last() {
		return ErrNotAllowed
	}
	m.name = name
	m.email = email
	return nil
}

// Submit records the response. It is only allowed on the last question,
// once it can proceed and the respondent name and email are set. On
// failure the machine stays on the last question.
func (m *Machine) Submit() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.state != Answering || !m.last() {
		return ErrNotAllowed
	}
	if !m.canProceed() {
		return ErrAnswerRequired
	}
	return m.submit()
}

func (m *Machine) submit() error {
	if strings.TrimSpace(m.name) == "" || strings.TrimSpace(m.email) == "" {
		return ErrRespondentRequired
	}
	m.state = Submitting
	response := &db.SurveyResponse{
		SurveyID:      m.survey.ID,
		UserID:        m.respondentID,
		Answers:       make(map[string]db.Answer, len(m.answers)),
		RewardClaimed: false,
	}
	for id, a := range m.answers {
		response.Answers[id] = a.Clone()
	}
	id, err := m.recorder.AddResponse(response)
	if err != nil {
		m.state = Answering
		return fmt.Errorf("could not record response: %w", err)
	}
	response.ID = id
	m.response = response
	m.state = Complete
	log.Debugw("survey completed", "survey", m.survey.ID, "response", id)
	if m.onComplete != nil {
		r := response.Clone()
		m.onComplete(&r, m.name, m.email)
	}
	return nil
}

// last returns true when the current question is the final one.
func (m *Machine) last() bool {
	return m.index == len(m.survey.Questions)-1
}

// State returns the current phase.
func (m *Machine) State() State {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.state
}

// Progress returns the current position. The percentage counts the
// current question as seen.
func (m *Machine) Progress() Progress {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	total := len(m.survey.Questions)
	p := Progress{State: m.state, Index: m.index, Total: total}
	if m.state == Complete {
		p.Percent = 100
	} else {
		p.Percent = (m.index + 1) * 100 / total
	}
	return p
}

// Current returns a copy of the question being answered, nil once the
// survey is complete.
func (m *Machine) Current() *db.Question {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.state == Complete {
		return nil
	}
	q := m.survey.Questions[m.index].Clone()
	return &q
}

// Answers returns a copy of the answers given so far.
func (m *Machine) Answers() map[string]db.Answer {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	answers := make(map[string]db.Answer, len(m.answers))
	for id, a := range m.answers {
		answers[id] = a.Clone()
	}
	return answers
}

// Reward returns the amount earned by completing the survey.
func (m *Machine) Reward() decimal.Decimal {
	return m.survey.RewardPerResponse
}

// Response returns the recorded response, nil until complete.
func (m *Machine) Response() *db.SurveyResponse {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.response == nil {
		return nil
	}
	r := m.response.Clone()
	return &r
}
