package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var errInvalidJSON = errors.New("answer value is not valid JSON")

type valueKind uint8

const (
	absentValue valueKind = iota
	textValue
	listValue
	otherValue
)

// Value is the payload of an Answer. Submissions are not type-checked
// against the question, so a Value may hold any JSON shape:
// absent (missing or null), text (a string), list (an array) or other.
type Value struct {
	kind valueKind
	text string
	list []string
	raw  json.RawMessage
}

func Text(s string) Value {
	return Value{kind: textValue, text: s}
}

func List(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{kind: listValue, list: items}
}

// Raw wraps an arbitrary JSON document, decoding it the same way a
// submitted answer would be decoded.
func Raw(data string) Value {
	var v Value
	if err := v.UnmarshalJSON([]byte(data)); err != nil {
		return Value{}
	}
	return v
}

func (v Value) IsAbsent() bool { return v.kind == absentValue }

// AsText returns the string held by a text value.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == textValue
}

// AsList returns the elements held by a list value. Non-string elements
// are kept as their JSON text.
func (v Value) AsList() ([]string, bool) {
	return v.list, v.kind == listValue
}

// AsRaw returns the JSON text of a value that is neither text nor list.
func (v Value) AsRaw() (string, bool) {
	return string(v.raw), v.kind == otherValue
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case textValue:
		return json.Marshal(v.text)
	case listValue:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case otherValue:
		return v.raw, nil
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		list := make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				list = append(list, s)
				continue
			}
			list = append(list, strings.TrimSpace(string(item)))
		}
		*v = Value{kind: listValue, list: list}
	default:
		if !json.Valid(data) {
			return errInvalidJSON
		}
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		*v = Value{kind: otherValue, raw: raw}
	}
	return nil
}

type Answer struct {
	QuestionID string `json:"questionId" validate:"required"`
	Value      Value  `json:"answer"`
}
