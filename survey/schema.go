package survey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/quick-forms/model"
)

// AssignIDs gives a fresh id to every question that does not have one yet.
// Existing ids are left alone so answers keep pointing at their question.
func AssignIDs(questions []model.Question) {
	for i := range questions {
		if strings.TrimSpace(questions[i].ID) == "" {
			questions[i].ID = uuid.NewString()
		}
	}
}

// CheckSchema reports every structural problem of a question list at once.
func CheckSchema(questions []model.Question) error {
	var result *multierror.Error

	seen := make(map[string]int, len(questions))
	for i, q := range questions {
		n := i + 1
		if q.ID == "" {
			result = multierror.Append(result, fmt.Errorf("question %d: missing id", n))
		} else if prev, dup := seen[q.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("question %d: id %q already used by question %d", n, q.ID, prev))
		} else {
			seen[q.ID] = n
		}

		if strings.TrimSpace(q.Title) == "" {
			result = multierror.Append(result, fmt.Errorf("question %d: empty title", n))
		}

		if !q.Type.Valid() {
			result = multierror.Append(result, fmt.Errorf("question %d: unknown type", n))
			continue
		}
		if q.Type.Family() == model.ChoiceFamily {
			opts := make(map[string]bool, len(q.Options))
			for _, opt := range q.Options {
				if opts[opt] {
					result = multierror.Append(result, fmt.Errorf("question %d: duplicate option %q", n, opt))
				}
				opts[opt] = true
			}
		}
	}

	return result.ErrorOrNil()
}
