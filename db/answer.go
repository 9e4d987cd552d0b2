package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AnswerKind tags the variant held by an Answer.
type AnswerKind string

const (
	// TextAnswerKind holds free-form text.
	TextAnswerKind AnswerKind = "text"
	// ChoiceAnswerKind holds a single picked option (also yes/no and ratings).
	ChoiceAnswerKind AnswerKind = "choice"
	// MultiChoiceAnswerKind holds several picked options.
	MultiChoiceAnswerKind AnswerKind = "multi"
)

// Answer is the value given to a single question. Only one of Value or
// Values is meaningful, depending on Kind.
type Answer struct {
	Kind   AnswerKind `json:"kind" bson:"kind"`
	Value  string     `json:"value,omitempty" bson:"value,omitempty"`
	Values []string   `json:"values,omitempty" bson:"values,omitempty"`
}

// TextAnswer creates a free-form text answer.
func TextAnswer(text string) Answer {
	return Answer{Kind: TextAnswerKind, Value: text}
}

// ChoiceAnswer creates a single option answer.
func ChoiceAnswer(option string) Answer {
	return Answer{Kind: ChoiceAnswerKind, Value: option}
}

// MultiChoiceAnswer creates an answer with several options picked.
func MultiChoiceAnswer(options ...string) Answer {
	return Answer{Kind: MultiChoiceAnswerKind, Values: cloneStrings(options)}
}

// IsZero returns true if the answer carries no value at all.
func (a Answer) IsZero() bool {
	switch a.Kind {
	case MultiChoiceAnswerKind:
		return len(a.Values) == 0
	case TextAnswerKind, ChoiceAnswerKind:
		return a.Value == ""
	default:
		return true
	}
}

// String renders the answer as a single label, joining multiple choices
// with ", ".
func (a Answer) String() string {
	if a.Kind == MultiChoiceAnswerKind {
		return strings.Join(a.Values, ", ")
	}
	return a.Value
}

// Clone returns a copy of the answer that shares no memory with a.
func (a Answer) Clone() Answer {
	a.Values = cloneStrings(a.Values)
	return a
}

// UnmarshalJSON decodes the tagged object form and also the bare string or
// string array that browser snapshots store.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty answer", ErrInvalidData)
	}
	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = TextAnswer(text)
		return nil
	case '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*a = MultiChoiceAnswer(values...)
		return nil
	}
	type plain Answer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Kind {
	case TextAnswerKind, ChoiceAnswerKind, MultiChoiceAnswerKind:
	default:
		return fmt.Errorf("%w: unknown answer kind %q", ErrInvalidData, p.Kind)
	}
	*a = Answer(p)
	return nil
}
