// Package decode recovers a JSON value from webhook responses that are not
// always strictly valid JSON.
package decode

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmpty = errors.New("empty response body")

	trailingComma = regexp.MustCompile(`,\s*([\]}])`)
)

// Error is returned when every recovery attempt failed. It always carries the
// error of the first, strict parse.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "decode webhook response: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Decode parses text as JSON, trying in order:
//   - the trimmed text, wrapped in braces when it starts with a bare "data": key
//   - the same text with trailing commas before ] or } removed
//   - the substring between the first '{' and the last '}', of the trimmed
//     text and then of the comma-cleaned text
func Decode(text string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &Error{Err: ErrEmpty}
	}
	if strings.HasPrefix(text, `"data":`) || strings.HasPrefix(text, `"data" :`) {
		text = "{" + text + "}"
	}

	v, origErr := parse(text)
	if origErr == nil {
		return v, nil
	}

	cleaned := trailingComma.ReplaceAllString(text, "$1")
	if cleaned != text {
		if v, err := parse(cleaned); err == nil {
			return v, nil
		}
	}

	if v, ok := outerObject(text); ok {
		return v, nil
	}
	if cleaned != text {
		if v, ok := outerObject(cleaned); ok {
			return v, nil
		}
	}

	return nil, &Error{Err: origErr}
}

// outerObject parses the substring between the first '{' and the last '}'.
func outerObject(s string) (any, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	v, err := parse(s[start : end+1])
	return v, err == nil
}

func parse(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
