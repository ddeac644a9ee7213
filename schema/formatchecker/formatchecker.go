// Package formatchecker implements the string-format predicates JSON
// Schema's "format" keyword names (spec §3.8 stringValidator). It is kept
// close to verbatim from the teacher's formatchecker package: stdlib
// net/net-mail/net-url/regexp/time remain the right tool here (see
// DESIGN.md's standard-library justification for this one component), now
// taking an already-extracted Go string rather than being dispatched to
// inline during a whole-document keyword walk.
package formatchecker

import (
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// IsValidDateTime reports whether dateTime is RFC 3339 §5.6.
func IsValidDateTime(dateTime string) error {
	if _, err := time.Parse(time.RFC3339, dateTime); err != nil {
		return err
	}
	return nil
}

// IsValidDate reports whether date is RFC 3339 §5.6's full-date.
func IsValidDate(date string) error {
	return IsValidDateTime(fmt.Sprintf("%sT00:00:00.0Z", date))
}

// IsValidTime reports whether tm is RFC 3339 §5.6's full-time.
func IsValidTime(tm string) error {
	return IsValidDateTime(fmt.Sprintf("1991-02-21T%s", tm))
}

// IsValidEmail reports whether email is RFC 5322 §3.4.1.
func IsValidEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return err
	}
	return nil
}

// IsValidIdnEmail reports whether idnEmail is RFC 6531.
func IsValidIdnEmail(idnEmail string) error {
	if _, err := mail.ParseAddress(idnEmail); err != nil {
		return err
	}
	return nil
}

var hostnamePattern = regexp.MustCompile(
	`^([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])(\.([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9\-]{0,61}[a-zA-Z0-9]))*$`)

// IsValidHostname reports whether hostname is RFC 1034 §3.1.
func IsValidHostname(hostname string) error {
	if len(hostname) > 255 {
		return errors.New("hostname is too long (more than 255 characters)")
	}
	if !hostnamePattern.MatchString(hostname) {
		return errors.New(hostname + " is not a valid hostname")
	}
	return nil
}

var disallowedIdnChars = map[rune]bool{
	0x0020: true, 0x002D: true, 0x00A2: true, 0x00A3: true, 0x00A4: true, 0x00A5: true,
	0x034F: true, 0x0640: true, 0x07FA: true, 0x180B: true, 0x180C: true, 0x180D: true,
	0x200B: true, 0x2060: true, 0x2104: true, 0x2108: true, 0x2114: true, 0x2117: true,
	0x2118: true, 0x211E: true, 0x211F: true, 0x2123: true, 0x2125: true, 0x2282: true,
	0x2283: true, 0x2284: true, 0x2285: true, 0x2286: true, 0x2287: true, 0x2288: true,
	0x2616: true, 0x2617: true, 0x2619: true, 0x262F: true, 0x2638: true, 0x266C: true,
	0x266D: true, 0x266F: true, 0x2752: true, 0x2756: true, 0x2758: true, 0x275E: true,
	0x2761: true, 0x2775: true, 0x2794: true, 0x2798: true, 0x27AF: true, 0x27B1: true,
	0x27BE: true, 0x3004: true, 0x3012: true, 0x3013: true, 0x3020: true, 0x302E: true,
	0x302F: true, 0x3031: true, 0x3032: true, 0x3035: true, 0x303B: true, 0x3164: true,
	0xFFA0: true,
}

// IsValidIdnHostname reports whether idnHostname is RFC 1034, extended per
// RFC 5890 §2.3.2.3's disallowed-codepoint table.
func IsValidIdnHostname(idnHostname string) error {
	if len(idnHostname) > 255 {
		return errors.New("hostname is too long (more than 255 characters)")
	}
	for _, r := range idnHostname {
		if disallowedIdnChars[r] {
			return fmt.Errorf("invalid hostname: contains illegal character %#U", r)
		}
	}
	return nil
}

// IsValidIPv4 reports whether ipv4 is RFC 2673 §3.2.
func IsValidIPv4(ipv4 string) error {
	parsed := net.ParseIP(ipv4)
	if parsed == nil || !strings.Contains(ipv4, ".") {
		return errors.New("invalid ipv4 address " + ipv4)
	}
	return nil
}

// IsValidIPv6 reports whether ipv6 is RFC 4291 §2.2.
func IsValidIPv6(ipv6 string) error {
	parsed := net.ParseIP(ipv6)
	if parsed == nil || !strings.Contains(ipv6, ":") {
		return errors.New("invalid ipv6 address " + ipv6)
	}
	return nil
}

var uriSchemePrefix = regexp.MustCompile(`^[^:]+:`)

// IsValidURI reports whether uri is RFC 3986, and requires a scheme.
func IsValidURI(uri string) error {
	if _, err := url.Parse(uri); err != nil {
		return err
	}
	if !uriSchemePrefix.MatchString(uri) {
		return errors.New("uri missing scheme prefix")
	}
	return nil
}

// IsValidUriRef reports whether uriRef is an RFC 3986 URI reference
// (absolute or relative).
func IsValidUriRef(uriRef string) error {
	if _, err := url.Parse(uriRef); err != nil {
		return err
	}
	if strings.Contains(uriRef, `\`) {
		return errors.New("invalid uri-ref " + uriRef)
	}
	return nil
}

// IsValidIri reports whether iri is RFC 3987.
func IsValidIri(iri string) error { return IsValidURI(iri) }

// IsValidIriRef reports whether iriRef is RFC 3987's IRI reference form.
func IsValidIriRef(iriRef string) error { return IsValidUriRef(iriRef) }

var uriTemplateExpr = regexp.MustCompile(`{[^{}\\]*}`)

// IsValidURITemplate reports whether uriTemplate is RFC 6570, at any level.
func IsValidURITemplate(uriTemplate string) error {
	uriRef := uriTemplateExpr.ReplaceAllString(uriTemplate, "tmp")
	if strings.ContainsAny(uriRef, "{}") {
		return errors.New("invalid uri template " + uriTemplate)
	}
	return IsValidUriRef(uriRef)
}

var (
	unescapedTilde = regexp.MustCompile(`~[^01]`)
	endingTilde    = regexp.MustCompile(`~$`)
)

// IsValidJSONPointer reports whether jsonPointer is RFC 6901 §5.
func IsValidJSONPointer(jsonPointer string) error {
	if len(jsonPointer) == 0 {
		return nil
	}
	if jsonPointer[0] != '/' {
		return errors.New("non-empty references must begin with a '/' character: " + jsonPointer)
	}
	str := jsonPointer[1:]
	if unescapedTilde.MatchString(str) {
		return errors.New("unescaped tilde")
	}
	if endingTilde.MatchString(str) {
		return errors.New("trailing tilde")
	}
	return nil
}

// IsValidRelJSONPointer reports whether relJSONPointer follows the
// relative-json-pointer draft.
func IsValidRelJSONPointer(relJSONPointer string) error {
	parts := strings.Split(relJSONPointer, "/")
	if len(parts) == 1 {
		parts = strings.Split(relJSONPointer, "#")
	}
	i, err := strconv.Atoi(parts[0])
	if err != nil || i < 0 {
		if err == nil {
			err = errors.New("relative json pointer prefix must be non-negative")
		}
		return err
	}
	str := relJSONPointer[len(parts[0]):]
	if len(str) > 0 && str[0] == '#' {
		return nil
	}
	return IsValidJSONPointer(str)
}

// IsValidRegex reports whether regex compiles as an ECMA-262-family regular
// expression (Go's regexp is RE2, a close-enough superset for this check).
func IsValidRegex(regex string) error {
	_, err := regexp.Compile(regex)
	return err
}
