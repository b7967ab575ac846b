package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// OptionCode identifies a candidate answer by a single uppercase letter.
type OptionCode string

// NoSelection is reported for a question whose options are all unchecked.
const NoSelection OptionCode = "E"

// IsLetter reports whether c is a single uppercase ASCII letter.
func (c OptionCode) IsLetter() bool {
	return len(c) == 1 && c[0] >= 'A' && c[0] <= 'Z'
}

// MaxQuestionKeyLength bounds a question key, counted in runes.
const MaxQuestionKeyLength = 64

// IsValidQuestionKey reports whether key may name a question. The same rule
// applies to configured question sets and to incoming save requests.
func IsValidQuestionKey(key string) bool {
	if key == "" || !utf8.ValidString(key) || utf8.RuneCountInString(key) > MaxQuestionKeyLength {
		return false
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Option binds an option code to the element that renders it.
type Option struct {
	Code      OptionCode
	ElementID string
}

// Question is a single multiple-choice item. Options are scanned in order.
type Question struct {
	Key     string
	Options []Option
}

// QuestionSet is the ordered collection of questions a page submits.
type QuestionSet []Question

// Keys returns the question keys in configured order.
func (qs QuestionSet) Keys() []string {
	keys := make([]string, 0, len(qs))
	for _, q := range qs {
		keys = append(keys, q.Key)
	}
	return keys
}

// ElementIDs returns every bound element id across the set.
func (qs QuestionSet) ElementIDs() []string {
	var ids []string
	for _, q := range qs {
		for _, o := range q.Options {
			ids = append(ids, o.ElementID)
		}
	}
	return ids
}

// Validate checks that the set can be resolved unambiguously.
func (qs QuestionSet) Validate() error {
	var errs ValidationErrors
	if len(qs) == 0 {
		return ValidationErrors{NewMissingFieldError("questions")}
	}

	seenKeys := make(map[string]bool)
	seenElements := make(map[string]string)
	for i, q := range qs {
		field := fmt.Sprintf("questions[%d]", i)
		if q.Key == "" {
			errs = append(errs, NewMissingFieldError(field+".key"))
		} else if !IsValidQuestionKey(q.Key) {
			errs = append(errs, NewInvalidFormatError(field+".key", q.Key))
		} else if seenKeys[q.Key] {
			errs = append(errs, ValidationError{Code: CodeValidation, Field: field + ".key", Message: "duplicate question key", Value: q.Key})
		}
		seenKeys[q.Key] = true

		if len(q.Options) == 0 {
			errs = append(errs, NewMissingFieldError(field+".options"))
			continue
		}

		seenCodes := make(map[OptionCode]bool)
		for j, o := range q.Options {
			optField := fmt.Sprintf("%s.options[%d]", field, j)
			switch {
			case !o.Code.IsLetter():
				errs = append(errs, NewInvalidFormatError(optField+".code", string(o.Code)))
			case o.Code == NoSelection:
				errs = append(errs, ValidationError{Code: CodeValidation, Field: optField + ".code", Message: "code is reserved for no selection", Value: string(o.Code)})
			case seenCodes[o.Code]:
				errs = append(errs, ValidationError{Code: CodeValidation, Field: optField + ".code", Message: "duplicate option code", Value: string(o.Code)})
			}
			seenCodes[o.Code] = true

			if o.ElementID == "" {
				errs = append(errs, NewMissingFieldError(optField+".element_id"))
				continue
			}
			if owner, ok := seenElements[o.ElementID]; ok {
				errs = append(errs, ValidationError{Code: CodeValidation, Field: optField + ".element_id", Message: "element already bound to question " + owner, Value: o.ElementID})
			}
			seenElements[o.ElementID] = q.Key
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DefaultQuestionSet is the two-question page the answer form ships with.
func DefaultQuestionSet() QuestionSet {
	return QuestionSet{
		NewLetteredQuestion("identity", "q1", 4),
		NewLetteredQuestion("negate", "q2", 4),
	}
}

// NewLetteredQuestion builds a question with options A, B, ... bound to
// element ids "<prefix>-A", "<prefix>-B", ...
func NewLetteredQuestion(key, prefix string, n int) Question {
	q := Question{Key: key, Options: make([]Option, 0, n)}
	for i := 0; i < n; i++ {
		code := OptionCode(rune('A' + i))
		q.Options = append(q.Options, Option{
			Code:      code,
			ElementID: fmt.Sprintf("%s-%s", prefix, code),
		})
	}
	return q
}
