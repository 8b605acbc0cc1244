package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/mbolis/quick-forms/model"
	"github.com/pkg/errors"
)

func (s *Store) CreateResponse(ctx context.Context, formID int, answers []model.Answer) (model.Response, error) {
	resp := model.Response{
		FormID:      formID,
		Answers:     answers,
		SubmittedAt: s.now(),
	}
	if resp.Answers == nil {
		resp.Answers = []model.Answer{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return resp, errors.Wrap(err, "create response: begin")
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO response (form_id, submitted_at) VALUES (?, ?)
		RETURNING id`,
		formID,
		resp.SubmittedAt,
	).Scan(&resp.ID)
	if err != nil {
		return resp, errors.Wrap(err, "create response")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (response_id, position, question_id, value)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return resp, errors.Wrap(err, "create response: prepare answers")
	}
	defer stmt.Close()

	for i, a := range resp.Answers {
		var value sql.NullString
		if !a.Value.IsAbsent() {
			valueJson, err := json.Marshal(a.Value)
			if err != nil {
				return resp, errors.Wrapf(err, "create response: encode answer %s", a.QuestionID)
			}
			value = sql.NullString{String: string(valueJson), Valid: true}
		}
		_, err = stmt.ExecContext(ctx, resp.ID, i, a.QuestionID, value)
		if err != nil {
			return resp, errors.Wrapf(err, "create response: insert answer %s", a.QuestionID)
		}
	}

	return resp, errors.Wrap(tx.Commit(), "create response: commit")
}

func (s *Store) ListResponses(ctx context.Context, formID int) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.submitted_at, a.question_id, a.value
		FROM response r
		LEFT OUTER JOIN answer a ON (r.id = a.response_id)
		WHERE r.form_id = ?
		ORDER BY r.submitted_at DESC, r.id DESC, a.position`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		var (
			id          int
			submittedAt time.Time
			questionID  sql.NullString
			value       sql.NullString
		)
		if err = rows.Scan(&id, &submittedAt, &questionID, &value); err != nil {
			return nil, errors.Wrap(err, "list responses: scan")
		}

		last := len(responses) - 1
		if last < 0 || responses[last].ID != id {
			responses = append(responses, model.Response{
				ID:          id,
				FormID:      formID,
				Answers:     []model.Answer{},
				SubmittedAt: submittedAt,
			})
			last++
		}
		if !questionID.Valid {
			// response without answers
			continue
		}

		a := model.Answer{QuestionID: questionID.String}
		if value.Valid {
			if err = json.Unmarshal([]byte(value.String), &a.Value); err != nil {
				return nil, errors.Wrapf(err, "list responses: decode answer %s", a.QuestionID)
			}
		}
		responses[last].Answers = append(responses[last].Answers, a)
	}
	return responses, errors.Wrap(rows.Err(), "list responses")
}
