package survey

import (
	"bufio"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/mbolis/quick-forms/model"
	"golang.org/x/text/unicode/norm"
)

const (
	submittedAtHeader = "Submitted At"
	listSeparator     = "; "
)

// WriteCSV writes one header row and one row per response, columns in
// form order. Every cell is quoted. Nothing is written when there are no
// responses.
func WriteCSV(w io.Writer, form model.Form, responses []model.Response) error {
	if len(responses) == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)

	row := make([]string, 0, len(form.Questions)+1)
	row = append(row, submittedAtHeader)
	for _, q := range form.Questions {
		row = append(row, q.Title)
	}
	if err := writeRow(bw, row); err != nil {
		return err
	}

	for _, r := range responses {
		row = row[:0]
		row = append(row, r.SubmittedAt.UTC().Format(time.RFC3339))
		for _, q := range form.Questions {
			a, ok := r.Answer(q.ID)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, cell(a.Value))
		}
		if err := writeRow(bw, row); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ToCSV is WriteCSV into a string.
func ToCSV(form model.Form, responses []model.Response) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = WriteCSV(&sb, form, responses)
	return sb.String()
}

func cell(v model.Value) string {
	if s, ok := v.AsText(); ok {
		return s
	}
	if items, ok := v.AsList(); ok {
		return strings.Join(items, listSeparator)
	}
	if raw, ok := v.AsRaw(); ok {
		return raw
	}
	return ""
}

func writeRow(w *bufio.Writer, cells []string) error {
	for i, c := range cells {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := w.WriteString(strings.ReplaceAll(c, `"`, `""`)); err != nil {
			return err
		}
		if err := w.WriteByte('"'); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}


// ExportFilename derives a portable attachment name from a form title:
// accents are stripped and anything outside [A-Za-z0-9._-] becomes '_'.
func ExportFilename(title string) string {
	var sb strings.Builder
	underscore := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-'):
			sb.WriteRune(r)
			underscore = false
		default:
			if !underscore && sb.Len() > 0 {
				sb.WriteByte('_')
				underscore = true
			}
		}
	}
	name := strings.TrimRight(sb.String(), "_")
	if name == "" {
		name = "form"
	}
	return name + "_responses.csv"
}
