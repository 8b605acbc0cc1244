package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType is the closed set of question kinds a form can contain.
type QuestionType uint8

const (
	Short QuestionType = iota + 1
	Paragraph
	MultipleChoice
	Checkbox
	Dropdown
)

// Family groups question types by how their answers are interpreted.
type Family uint8

const (
	// ChoiceFamily answers are drawn from the question's options.
	ChoiceFamily Family = iota + 1
	// FreeTextFamily answers are unconstrained prose.
	FreeTextFamily
)

var questionTypeNames = map[QuestionType]string{
	Short:          "short",
	Paragraph:      "paragraph",
	MultipleChoice: "mcq",
	Checkbox:       "checkbox",
	Dropdown:       "dropdown",
}

// ParseQuestionType maps a wire name to its QuestionType.
func ParseQuestionType(name string) (QuestionType, error) {
	for t, n := range questionTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown question type %q", name)
}

func (t QuestionType) String() string {
	if n, ok := questionTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("QuestionType(%d)", uint8(t))
}

// Valid reports whether t is one of the declared question types.
func (t QuestionType) Valid() bool {
	_, ok := questionTypeNames[t]
	return ok
}

func (t QuestionType) Family() Family {
	switch t {
	case MultipleChoice, Checkbox, Dropdown:
		return ChoiceFamily
	case Short, Paragraph:
		return FreeTextFamily
	}
	panic(fmt.Sprintf("model: unhandled question type %d", uint8(t)))
}

// MultiSelect reports whether an answer may hold several options.
func (t QuestionType) MultiSelect() bool {
	switch t {
	case Checkbox:
		return true
	case Short, Paragraph, MultipleChoice, Dropdown:
		return false
	}
	panic(fmt.Sprintf("model: unhandled question type %d", uint8(t)))
}

func (t QuestionType) MarshalJSON() ([]byte, error) {
	n, ok := questionTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("cannot marshal question type %d", uint8(t))
	}
	return json.Marshal(n)
}

func (t *QuestionType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("question type must be a string: %w", err)
	}
	parsed, err := ParseQuestionType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Title    string       `json:"title" validate:"required,max=500"`
	Options  []string     `json:"options"`
	Required bool         `json:"required"`
}
