package store

import (
	"context"
	"database/sql"

	"github.com/goccy/go-json"
	"github.com/mbolis/quick-forms/model"
	"github.com/pkg/errors"
)

const formColumns = `
	id, version, owner, title, description, theme,
	published, views, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner, f *model.Form) error {
	var theme string
	err := row.Scan(
		&f.ID, &f.Version, &f.Owner, &f.Title, &f.Description, &theme,
		&f.Published, &f.Views, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return err
	}
	f.Theme = model.Theme(theme)
	return nil
}

func (s *Store) ListForms(ctx context.Context, owner string) ([]model.FormListItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+formColumns+`,
			(SELECT count(*) FROM response r WHERE r.form_id = form.id)
		FROM form
		WHERE owner = ?
		ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list forms")
	}
	defer rows.Close()

	forms := []model.FormListItem{}
	for rows.Next() {
		var item model.FormListItem
		var theme string
		err = rows.Scan(
			&item.ID, &item.Version, &item.Owner, &item.Title, &item.Description, &theme,
			&item.Published, &item.Views, &item.CreatedAt, &item.UpdatedAt,
			&item.ResponseCount,
		)
		if err != nil {
			return nil, errors.Wrap(err, "list forms: scan")
		}
		item.Theme = model.Theme(theme)
		forms = append(forms, item)
	}
	return forms, errors.Wrap(rows.Err(), "list forms")
}

func (s *Store) GetForm(ctx context.Context, id int) (model.Form, error) {
	var form model.Form
	err := scanForm(s.db.QueryRowContext(ctx, `SELECT `+formColumns+` FROM form WHERE id = ?`, id), &form)
	if errors.Is(err, sql.ErrNoRows) {
		return form, ErrNotFound
	}
	if err != nil {
		return form, errors.Wrap(err, "get form")
	}

	form.Questions, err = s.questions(ctx, id)
	return form, err
}

func (s *Store) IncrementViews(ctx context.Context, id int) (model.Form, error) {
	var form model.Form
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return form, errors.Wrap(err, "increment views: begin")
	}
	defer tx.Rollback()

	var views int64
	err = tx.QueryRowContext(ctx, `
		UPDATE form
		SET views = views + 1
		WHERE id = ?
		RETURNING views`,
		id,
	).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return form, ErrNotFound
	}
	if err != nil {
		return form, errors.Wrap(err, "increment views")
	}

	// timestamps are scanned from a plain SELECT, where the DATETIME type is known
	err = scanForm(tx.QueryRowContext(ctx, `SELECT `+formColumns+` FROM form WHERE id = ?`, id), &form)
	if err != nil {
		return form, errors.Wrap(err, "increment views: reload")
	}
	if err = tx.Commit(); err != nil {
		return form, errors.Wrap(err, "increment views: commit")
	}
	form.Views = views

	form.Questions, err = s.questions(ctx, id)
	return form, err
}

func (s *Store) CreateForm(ctx context.Context, form *model.Form) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "create form: begin")
	}
	defer tx.Rollback()

	now := s.now()
	if form.Theme == "" {
		form.Theme = model.ThemeDefault
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO form (owner, title, description, theme, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, version, views`,
		form.Owner,
		form.Title,
		form.Description,
		string(form.Theme),
		form.Published,
		now,
		now,
	).Scan(&form.ID, &form.Version, &form.Views)
	if err != nil {
		return errors.Wrap(err, "create form")
	}
	form.CreatedAt, form.UpdatedAt = now, now

	if err = insertQuestions(ctx, tx, form.ID, form.Questions); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "create form: commit")
}

// SaveForm replaces the stored schema of form.ID. A non-zero form.Version
// must match the stored one; on success form.Version is advanced.
func (s *Store) SaveForm(ctx context.Context, form *model.Form) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "save form: begin")
	}
	defer tx.Rollback()

	now := s.now()
	err = tx.QueryRowContext(ctx, `
		UPDATE form
		SET
			title = ?,
			description = ?,
			theme = ?,
			published = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ?
			AND (? = 0 OR version = ?)
		RETURNING version, views`,
		form.Title,
		form.Description,
		string(form.Theme),
		form.Published,
		now,
		form.ID,
		form.Version,
		form.Version,
	).Scan(&form.Version, &form.Views)
	if errors.Is(err, sql.ErrNoRows) {
		// optimistic lock: tell a stale version apart from a missing form
		var exists bool
		err = tx.QueryRowContext(ctx, "SELECT 1 FROM form WHERE id = ?", form.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "save form: verify")
		}
		return ErrConflict
	}
	if err != nil {
		return errors.Wrap(err, "save form")
	}
	form.UpdatedAt = now

	// recreate all questions
	_, err = tx.ExecContext(ctx, "DELETE FROM question WHERE form_id = ?", form.ID)
	if err != nil {
		return errors.Wrap(err, "save form: delete questions")
	}
	if err = insertQuestions(ctx, tx, form.ID, form.Questions); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "save form: commit")
}

func (s *Store) DeleteForm(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM form WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete form: verify")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) questions(ctx context.Context, formID int) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT qid, type, title, options, required
		FROM question
		WHERE form_id = ?
		ORDER BY position`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		var typ, opts string
		if err = rows.Scan(&q.ID, &typ, &q.Title, &opts, &q.Required); err != nil {
			return nil, errors.Wrap(err, "get questions: scan")
		}
		if q.Type, err = model.ParseQuestionType(typ); err != nil {
			return nil, errors.Wrapf(err, "get questions: question %s", q.ID)
		}
		if err = json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, errors.Wrapf(err, "get questions: options of %s", q.ID)
		}
		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "get questions")
}

func insertQuestions(ctx context.Context, tx *sql.Tx, formID int, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (form_id, position, qid, type, title, options, required)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "insert questions: prepare")
	}
	defer stmt.Close()

	for i, q := range questions {
		opts := q.Options
		if opts == nil {
			opts = []string{}
		}
		optionsJson, err := json.Marshal(opts)
		if err != nil {
			return errors.Wrapf(err, "insert questions: options of %s", q.ID)
		}
		_, err = stmt.ExecContext(ctx, formID, i, q.ID, q.Type.String(), q.Title, string(optionsJson), q.Required)
		if err != nil {
			return errors.Wrapf(err, "insert questions: %s", q.ID)
		}
	}
	return nil
}
