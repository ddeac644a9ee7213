package formatchecker_test

import (
	"testing"

	"github.com/kfirtal/jsondom/schema/formatchecker"
)

type test struct {
	data        string
	valid       bool
	description string
}

type formatFn func(string) error

const succeed = "V"
const failed = "X"

func TestIsValidDateTime(t *testing.T) {
	cases := []test{
		{description: "a valid date-time string", data: "1985-04-12T23:20:50.52Z", valid: true},
		{description: "a valid date-time string with offset", data: "1996-12-19T16:39:57-08:00", valid: true},
		{description: "an invalid date-time string", data: "06/19/1963 08:30:06 PST", valid: false},
	}
	run(t, cases, "date-time", formatchecker.IsValidDateTime)
}

func TestIsValidDate(t *testing.T) {
	cases := []test{
		{description: "a valid date", data: "1985-04-12", valid: true},
		{description: "an invalid date", data: "13/40/2020", valid: false},
	}
	run(t, cases, "date", formatchecker.IsValidDate)
}

func TestIsValidTime(t *testing.T) {
	cases := []test{
		{description: "a valid time", data: "23:20:50.52Z", valid: true},
		{description: "an invalid time", data: "not-a-time", valid: false},
	}
	run(t, cases, "time", formatchecker.IsValidTime)
}

func TestIsValidEmail(t *testing.T) {
	cases := []test{
		{description: "a valid email", data: "alice@example.com", valid: true},
		{description: "a missing @", data: "alice.example.com", valid: false},
	}
	run(t, cases, "email", formatchecker.IsValidEmail)
}

func TestIsValidHostname(t *testing.T) {
	cases := []test{
		{description: "a valid hostname", data: "example.com", valid: true},
		{description: "a hostname with an illegal character", data: "exa_mple.com", valid: false},
		{description: "a too-long hostname", data: stringOfLen(300, 'a'), valid: false},
	}
	run(t, cases, "hostname", formatchecker.IsValidHostname)
}

func TestIsValidIPv4(t *testing.T) {
	cases := []test{
		{description: "a valid ipv4", data: "192.168.0.1", valid: true},
		{description: "an ipv6 address", data: "::1", valid: false},
		{description: "garbage", data: "not-an-ip", valid: false},
	}
	run(t, cases, "ipv4", formatchecker.IsValidIPv4)
}

func TestIsValidIPv6(t *testing.T) {
	cases := []test{
		{description: "a valid ipv6", data: "::1", valid: true},
		{description: "an ipv4 address", data: "192.168.0.1", valid: false},
	}
	run(t, cases, "ipv6", formatchecker.IsValidIPv6)
}

func TestIsValidURI(t *testing.T) {
	cases := []test{
		{description: "a valid uri", data: "https://example.com/path", valid: true},
		{description: "a uri missing a scheme", data: "/just/a/path", valid: false},
	}
	run(t, cases, "uri", formatchecker.IsValidURI)
}

func TestIsValidJSONPointer(t *testing.T) {
	cases := []test{
		{description: "the empty pointer", data: "", valid: true},
		{description: "a valid pointer", data: "/a/b/0", valid: true},
		{description: "a pointer missing its leading slash", data: "a/b", valid: false},
		{description: "an unescaped tilde", data: "/a~b", valid: false},
	}
	run(t, cases, "json-pointer", formatchecker.IsValidJSONPointer)
}

func TestIsValidRegex(t *testing.T) {
	cases := []test{
		{description: "a valid regex", data: `^[a-z]+$`, valid: true},
		{description: "an unbalanced group", data: `(abc`, valid: false},
	}
	run(t, cases, "regex", formatchecker.IsValidRegex)
}

func run(t *testing.T, tests []test, formatType string, fn formatFn) {
	t.Logf("Given the need to test %s format", formatType)
	for i, tc := range tests {
		t.Logf("\tTest %d: %s => %s", i, tc.data, tc.description)
		valid := fn(tc.data) == nil
		if valid != tc.valid {
			t.Errorf("\t%s\tshould get valid = %t but got valid = %t", failed, tc.valid, valid)
		} else {
			t.Logf("\t%s\tvalid = %t", succeed, tc.valid)
		}
	}
}

func stringOfLen(n int, b byte) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return string(buf)
}
