// Package survey holds the rules shared by every surface that accepts or
// reports on form responses: requiredness validation, result aggregation
// and CSV export. All functions are pure over their inputs.
package survey

import (
	"fmt"
	"strings"

	"github.com/mbolis/quick-forms/model"
)

// ValidationError lists the required questions a submission left empty.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d required question(s) unanswered: %s",
		len(e.MissingFields), strings.Join(e.MissingFields, ", "))
}

// Validate returns the ids of the required questions of form that answers
// leave unanswered, in form order. Stray answers are ignored.
func Validate(form model.Form, answers []model.Answer) []string {
	missing := []string{}
	for _, q := range form.Questions {
		if !q.Required {
			continue
		}
		a, ok := findAnswer(answers, q.ID)
		if !ok || isEmpty(a.Value) {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// CheckSubmission is Validate reporting through the error channel.
func CheckSubmission(form model.Form, answers []model.Answer) error {
	missing := Validate(form, answers)
	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}
	return nil
}

func findAnswer(answers []model.Answer, questionID string) (model.Answer, bool) {
	for _, a := range answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return model.Answer{}, false
}

func isEmpty(v model.Value) bool {
	if v.IsAbsent() {
		return true
	}
	if s, ok := v.AsText(); ok {
		return strings.TrimSpace(s) == ""
	}
	if items, ok := v.AsList(); ok {
		return len(items) == 0
	}
	return false
}
