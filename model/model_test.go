package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestQuestionTypeJSON(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"id":"x","type":"checkbox","title":"T","options":["a"]}`), &q); err != nil {
		t.Fatal(err)
	}
	if q.Type != Checkbox || !q.Type.MultiSelect() || q.Type.Family() != ChoiceFamily {
		t.Errorf("decoded type = %v", q.Type)
	}

	out, err := json.Marshal(q)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"id":"x","type":"checkbox","title":"T","options":["a"],"required":false}`; string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}

	if err := json.Unmarshal([]byte(`{"type":"rating"}`), &q); err == nil {
		t.Error("unknown type accepted")
	}
	if err := json.Unmarshal([]byte(`{"type":3}`), &q); err == nil {
		t.Error("numeric type accepted")
	}
}

func TestQuestionTypeFamilies(t *testing.T) {
	for _, typ := range []QuestionType{Short, Paragraph} {
		if typ.Family() != FreeTextFamily || typ.MultiSelect() {
			t.Errorf("%v misclassified", typ)
		}
	}
	for _, typ := range []QuestionType{MultipleChoice, Dropdown} {
		if typ.Family() != ChoiceFamily || typ.MultiSelect() {
			t.Errorf("%v misclassified", typ)
		}
	}
	if QuestionType(0).Valid() || QuestionType(99).Valid() {
		t.Error("out of range type reported valid")
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		in     string
		absent bool
		text   *string
		list   []string
		raw    string
		out    string
	}{
		{in: `null`, absent: true, out: `null`},
		{in: `"hello"`, text: strptr("hello"), out: `"hello"`},
		{in: `""`, text: strptr(""), out: `""`},
		{in: `["a","b"]`, list: []string{"a", "b"}, out: `["a","b"]`},
		{in: `[]`, list: []string{}, out: `[]`},
		{in: `[1, "x", null]`, list: []string{"1", "x", ""}, out: `["1","x",""]`},
		{in: `42`, raw: "42", out: `42`},
		{in: `{"k":true}`, raw: `{"k":true}`, out: `{"k":true}`},
	}

	for _, tt := range tests {
		var v Value
		if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if v.IsAbsent() != tt.absent {
			t.Errorf("%s: IsAbsent() = %v", tt.in, v.IsAbsent())
		}
		if s, ok := v.AsText(); (tt.text != nil) != ok || (ok && s != *tt.text) {
			t.Errorf("%s: AsText() = %q, %v", tt.in, s, ok)
		}
		if l, ok := v.AsList(); (tt.list != nil) != ok || (ok && !reflect.DeepEqual(l, tt.list)) {
			t.Errorf("%s: AsList() = %q, %v", tt.in, l, ok)
		}
		if r, ok := v.AsRaw(); (tt.raw != "") != ok || (ok && r != tt.raw) {
			t.Errorf("%s: AsRaw() = %q, %v", tt.in, r, ok)
		}
		out, err := json.Marshal(v)
		if err != nil {
			t.Errorf("Marshal(%s): %v", tt.in, err)
			continue
		}
		if string(out) != tt.out {
			t.Errorf("Marshal(%s) = %s, want %s", tt.in, out, tt.out)
		}
	}
}

func TestAnswerMissingValue(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`{"questionId":"q"}`), &a); err != nil {
		t.Fatal(err)
	}
	if a.QuestionID != "q" || !a.Value.IsAbsent() {
		t.Errorf("decoded %+v", a)
	}
}

func TestParseTheme(t *testing.T) {
	if th, err := ParseTheme("ocean"); err != nil || th != ThemeOcean {
		t.Errorf("ParseTheme(ocean) = %v, %v", th, err)
	}
	if _, err := ParseTheme("neon"); err == nil {
		t.Error("unknown theme accepted")
	}
}

func strptr(s string) *string { return &s }
