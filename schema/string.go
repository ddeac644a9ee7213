package schema

import (
	"regexp"
	"unicode/utf8"

	"github.com/kfirtal/jsondom"
	"github.com/kfirtal/jsondom/schema/formatchecker"
)

// formatFunc is the shape every formatchecker.IsValid* predicate shares.
type formatFunc func(string) error

// knownFormats maps a JSON Schema "format" keyword value to the checker
// that validates it (spec §3.8 stringValidator; ported from the teacher's
// format.validate switch in keywordvalidator.go).
var knownFormats = map[string]formatFunc{
	"date-time":            formatchecker.IsValidDateTime,
	"date":                 formatchecker.IsValidDate,
	"time":                 formatchecker.IsValidTime,
	"email":                formatchecker.IsValidEmail,
	"idn-email":            formatchecker.IsValidIdnEmail,
	"hostname":             formatchecker.IsValidHostname,
	"idn-hostname":         formatchecker.IsValidIdnHostname,
	"ipv4":                 formatchecker.IsValidIPv4,
	"ipv6":                 formatchecker.IsValidIPv6,
	"uri":                  formatchecker.IsValidURI,
	"uri-reference":        formatchecker.IsValidUriRef,
	"iri":                  formatchecker.IsValidIri,
	"iri-reference":        formatchecker.IsValidIriRef,
	"uri-template":         formatchecker.IsValidURITemplate,
	"json-pointer":         formatchecker.IsValidJSONPointer,
	"relative-json-pointer": formatchecker.IsValidRelJSONPointer,
	"regex":                formatchecker.IsValidRegex,
}

// stringValidator carries the string keyword set (spec §3.8): minLength and
// maxLength are counted in code points, not bytes, per spec §4.5.
type stringValidator struct {
	base

	hasMinLength bool
	minLength    int
	hasMaxLength bool
	maxLength    int

	hasPattern bool
	pattern    *regexp.Regexp

	format string // "" if absent

	// contentMediaType/contentEncoding are annotation-only (SPEC_FULL §6.6):
	// they never fail validation on their own, matching the teacher's
	// declared-but-unimplemented fields.
	contentMediaType string
	contentEncoding  string
}

// Validate applies string keywords only when v is actually a string (see
// numberValidator.Validate's comment on applicator vs type semantics).
func (s *stringValidator) Validate(v *jsondom.Value) error {
	if v == nil || !v.IsString() {
		return nil
	}
	str, _ := v.String()
	n := utf8.RuneCountInString(str)

	if s.hasMinLength && n < s.minLength {
		return &ValidationError{Keyword: "minLength", Reason: "string is shorter than minLength"}
	}
	if s.hasMaxLength && n > s.maxLength {
		return &ValidationError{Keyword: "maxLength", Reason: "string is longer than maxLength"}
	}
	if s.hasPattern && !s.pattern.MatchString(str) {
		return &ValidationError{Keyword: "pattern", Reason: "string does not match pattern"}
	}
	if s.format != "" {
		if check, ok := knownFormats[s.format]; ok {
			if err := check(str); err != nil {
				return &ValidationError{Keyword: "format", Reason: "string does not satisfy format " + s.format + ": " + err.Error()}
			}
		}
	}
	return nil
}

func (s *stringValidator) Dup() Validator { return s }
