package survey

import (
	"math"
	"strings"

	"github.com/mbolis/quick-forms/model"
)

type Summary struct {
	Views          int64                      `json:"views"`
	ResponseCount  int                        `json:"responseCount"`
	CompletionRate int                        `json:"completionRate"`
	PerQuestion    map[string]QuestionSummary `json:"perQuestion"`
}

type OptionCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// QuestionSummary is the digest of one question. Choice questions fill
// Options; free-text questions fill Answers. Count is the number of
// responses that contributed.
type QuestionSummary struct {
	Type    model.QuestionType `json:"type"`
	Count   int                `json:"count"`
	Options []OptionCount      `json:"options,omitempty"`
	Answers []string           `json:"answers,omitempty"`
}

// Aggregate digests responses against the current schema of form.
// Answers to questions the form no longer has are ignored, as are choice
// values that match no declared option.
func Aggregate(form model.Form, responses []model.Response) Summary {
	summary := Summary{
		Views:          form.Views,
		ResponseCount:  len(responses),
		CompletionRate: CompletionRate(len(responses), form.Views),
		PerQuestion:    make(map[string]QuestionSummary, len(form.Questions)),
	}

	for _, q := range form.Questions {
		switch q.Type.Family() {
		case model.ChoiceFamily:
			summary.PerQuestion[q.ID] = tallyChoices(q, responses)
		case model.FreeTextFamily:
			summary.PerQuestion[q.ID] = collectTexts(q, responses)
		}
	}
	return summary
}

// CompletionRate is responses over views as a rounded percentage, or 0
// when nothing has been viewed.
func CompletionRate(responses int, views int64) int {
	if views <= 0 {
		return 0
	}
	return int(math.Round(float64(responses) / float64(views) * 100))
}

func tallyChoices(q model.Question, responses []model.Response) QuestionSummary {
	counts := make([]OptionCount, 0, len(q.Options))
	index := make(map[string]int, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := index[opt]; dup {
			continue
		}
		index[opt] = len(counts)
		counts = append(counts, OptionCount{Option: opt})
	}

	contributed := 0
	for _, r := range responses {
		a, ok := r.Answer(q.ID)
		if !ok {
			continue
		}

		var picked []string
		if items, ok := a.Value.AsList(); ok {
			picked = items
		} else if s, ok := a.Value.AsText(); ok {
			picked = []string{s}
		}

		hit := false
		for _, p := range picked {
			if i, ok := index[p]; ok {
				counts[i].Count++
				hit = true
			}
		}
		if hit {
			contributed++
		}
	}

	return QuestionSummary{Type: q.Type, Count: contributed, Options: counts}
}

func collectTexts(q model.Question, responses []model.Response) QuestionSummary {
	texts := []string{}
	for _, r := range responses {
		a, ok := r.Answer(q.ID)
		if !ok {
			continue
		}
		if s, ok := a.Value.AsText(); ok && strings.TrimSpace(s) != "" {
			texts = append(texts, s)
		}
	}
	return QuestionSummary{Type: q.Type, Count: len(texts), Answers: texts}
}
