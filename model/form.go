package model

import (
	"fmt"
	"time"
)

type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeSunny   Theme = "sunny"
	ThemeOcean   Theme = "ocean"
	ThemeForest  Theme = "forest"
	ThemeLove    Theme = "love"
	ThemeDark    Theme = "dark"
)

var themes = []Theme{ThemeDefault, ThemeSunny, ThemeOcean, ThemeForest, ThemeLove, ThemeDark}

func ParseTheme(s string) (Theme, error) {
	for _, t := range themes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

type Form struct {
	ID          int        `json:"id,omitempty"`
	Version     int        `json:"version,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Theme       Theme      `json:"theme"`
	Published   bool       `json:"published"`
	Views       int64      `json:"views"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Question returns the question with the given id, if the form still has it.
func (f Form) Question(id string) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// FormListItem is a form as shown in its owner's dashboard.
type FormListItem struct {
	Form
	ResponseCount int `json:"responseCount"`
}

type Response struct {
	ID          int       `json:"id"`
	FormID      int       `json:"formId"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Answer returns the first answer given to the question, if any.
func (r Response) Answer(questionID string) (Answer, bool) {
	for _, a := range r.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}
