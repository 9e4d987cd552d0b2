// Package builder edits the ordered question list of a survey while it is
// being created or changed, keeping it within the question limit of the
// survey package.
package builder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/surveypro/saas-backend/db"
)

// MinOptions is the fewest options a choice or rating question can have.
const MinOptions = 2

var (
	// ErrInvalidIndex is returned when a position is outside the list.
	ErrInvalidIndex = fmt.Errorf("invalid index")
	// ErrQuestionNotFound is returned for ids not in the list.
	ErrQuestionNotFound = fmt.Errorf("question not found")
	// ErrMinOptions is returned when removing an option would leave fewer
	// than MinOptions.
	ErrMinOptions = fmt.Errorf("a question needs at least %d options", MinOptions)
	// ErrNoOptions is returned when editing the options of a question type
	// that has none.
	ErrNoOptions = fmt.Errorf("question type has no options")
	// ErrTooManyQuestions is returned when the list does not fit the
	// package.
	ErrTooManyQuestions = fmt.Errorf("too many questions for the package")
	// ErrEmptySurvey is returned by Validate for a list without questions.
	ErrEmptySurvey = fmt.Errorf("a survey needs at least one question")
	// ErrEmptyQuestion is returned by Validate for a question without text.
	ErrEmptyQuestion = fmt.Errorf("question text is required")
)

// QuestionUpdate lists the question fields to change. Nil fields are kept.
type QuestionUpdate struct {
	Type     *db.QuestionType
	Question *string
	Options  []string
	Required *bool
}

// Builder holds the question list under edit.
type Builder struct {
	tier         db.PackageTier
	maxQuestions int
	questions    []db.Question
}

// New starts a builder for the package tier from an existing question list,
// which is copied.
func New(tier db.PackageTier, existing []db.Question) *Builder {
	b := &Builder{
		tier:         tier,
		maxQuestions: db.MaxQuestionsFor(tier),
		questions:    make([]db.Question, 0, len(existing)),
	}
	for _, q := range existing {
		b.questions = append(b.questions, q.Clone())
	}
	return b
}

// Questions returns a copy of the current list.
func (b *Builder) Questions() []db.Question {
	list := make([]db.Question, len(b.questions))
	for i, q := range b.questions {
		list[i] = q.Clone()
	}
	return list
}

// MaxQuestions returns the limit of the current package.
func (b *Builder) MaxQuestions() int {
	return b.maxQuestions
}

// CanAdd returns true while the list is below the package limit.
func (b *Builder) CanAdd() bool {
	return len(b.questions) < b.maxQuestions
}

// AddQuestion appends a required multiple choice question with two
// placeholder options and returns its id. At the package limit nothing is
// added and false is returned.
func (b *Builder) AddQuestion() (string, bool) {
	if !b.CanAdd() {
		return "", false
	}
	q := db.Question{
		ID:       uuid.NewString(),
		Type:     db.MultipleChoice,
		Options:  defaultOptions(),
		Required: true,
	}
	b.questions = append(b.questions, q)
	return q.ID, true
}

// UpdateQuestion merges the update into the question. Moving to a type
// without options drops them; moving to a choice or rating type keeps the
// current options, or sets two placeholders if there are none. Nothing is
// changed when the update is rejected.
func (b *Builder) UpdateQuestion(id string, update *QuestionUpdate) error {
	q := b.question(id)
	if q == nil {
		return ErrQuestionNotFound
	}
	if update == nil {
		return nil
	}
	qType := q.Type
	if update.Type != nil {
		if !update.Type.Valid() {
			return fmt.Errorf("%w: unknown question type %q", db.ErrInvalidData, *update.Type)
		}
		qType = *update.Type
	}
	if update.Options != nil {
		switch {
		case qType.HasOptions() && len(update.Options) < MinOptions:
			return ErrMinOptions
		case !qType.HasOptions() && len(update.Options) > 0:
			return fmt.Errorf("%w: %s", ErrNoOptions, qType)
		}
	}

	if update.Question != nil {
		q.Question = *update.Question
	}
	if update.Required != nil {
		q.Required = *update.Required
	}
	if update.Options != nil {
		q.Options = append([]string(nil), update.Options...)
	}
	q.Type = qType
	switch {
	case !q.Type.HasOptions():
		q.Options = nil
	case len(q.Options) == 0:
		q.Options = defaultOptions()
	}
	return nil
}

// DeleteQuestion removes the question.
func (b *Builder) DeleteQuestion(id string) error {
	for i := range b.questions {
		if b.questions[i].ID == id {
			b.questions = append(b.questions[:i], b.questions[i+1:]...)
			return nil
		}
	}
	return ErrQuestionNotFound
}

// Reorder moves the question at from to position to.
func (b *Builder) Reorder(from, to int) error {
	list, err := Move(b.questions, from, to)
	if err != nil {
		return err
	}
	b.questions = list
	return nil
}

// MoveUp swaps the question at i with the one before it.
func (b *Builder) MoveUp(i int) error {
	return b.Reorder(i, i-1)
}

// MoveDown swaps the question at i with the one after it.
func (b *Builder) MoveDown(i int) error {
	return b.Reorder(i, i+1)
}

// AddOption appends a placeholder option to a choice or rating question.
func (b *Builder) AddOption(id string) error {
	q, err := b.optionQuestion(id)
	if err != nil {
		return err
	}
	q.Options = append(q.Options, fmt.Sprintf("Option %d", len(q.Options)+1))
	return nil
}

// UpdateOption replaces the text of an option.
func (b *Builder) UpdateOption(id string, index int, value string) error {
	q, err := b.optionQuestion(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(q.Options) {
		return ErrInvalidIndex
	}
	q.Options[index] = value
	return nil
}

// RemoveOption deletes an option, as long as MinOptions remain.
func (b *Builder) RemoveOption(id string, index int) error {
	q, err := b.optionQuestion(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(q.Options) {
		return ErrInvalidIndex
	}
	if len(q.Options) <= MinOptions {
		return ErrMinOptions
	}
	q.Options = append(q.Options[:index], q.Options[index+1:]...)
	return nil
}

// SetPackage switches the builder to another tier. It fails, leaving the
// builder unchanged, if the current questions exceed the new limit.
func (b *Builder) SetPackage(tier db.PackageTier) error {
	pkg, err := db.PackageByTier(tier)
	if err != nil {
		return err
	}
	if len(b.questions) > pkg.MaxQuestions {
		return fmt.Errorf("%w: %s allows %d", ErrTooManyQuestions, pkg.Name, pkg.MaxQuestions)
	}
	b.tier = tier
	b.maxQuestions = pkg.MaxQuestions
	return nil
}

// Validate checks the list can be saved: at least one question, all of
// them with text, of a known type, with enough options, and within the
// package limit.
func (b *Builder) Validate() error {
	if len(b.questions) == 0 {
		return ErrEmptySurvey
	}
	if len(b.questions) > b.maxQuestions {
		return fmt.Errorf("%w: %d allowed", ErrTooManyQuestions, b.maxQuestions)
	}
	seen := make(map[string]bool, len(b.questions))
	for i, q := range b.questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: question %d", ErrEmptyQuestion, i+1)
		}
		if !q.Type.Valid() {
			return fmt.Errorf("%w: question %d has unknown type %q", db.ErrInvalidData, i+1, q.Type)
		}
		if q.Type.HasOptions() && len(q.Options) < MinOptions {
			return fmt.Errorf("%w: question %d", ErrMinOptions, i+1)
		}
		if q.ID == "" || seen[q.ID] {
			return fmt.Errorf("%w: question %d has a missing or repeated id", db.ErrInvalidData, i+1)
		}
		seen[q.ID] = true
	}
	return nil
}

func (b *Builder) question(id string) *db.Question {
	for i := range b.questions {
		if b.questions[i].ID == id {
			return &b.questions[i]
		}
	}
	return nil
}

func (b *Builder) optionQuestion(id string) (*db.Question, error) {
	q := b.question(id)
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	if !q.Type.HasOptions() {
		return nil, ErrNoOptions
	}
	return q, nil
}

func defaultOptions() []string {
	return []string{"Option 1", "Option 2"}
}
