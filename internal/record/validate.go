package record

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nao1215/userclean/internal/model"
)

// emailPattern accepts local@domain.tld with a purely alphabetic TLD of at
// least two letters, anchored at both ends.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// minAddressSegments is street, city and at least one more segment.
const minAddressSegments = 3

// Fields holds the normalized pieces of a record that passed validation.
// It is the input contract of Transform.
type Fields struct {
	// Email is the normalized email address.
	Email string

	// NameTokens are the whitespace-separated name tokens; at least two.
	NameTokens []string

	// AddressSegments are the trimmed comma-separated address segments;
	// at least three.
	AddressSegments []string
}

// IsValidEmail reports whether email matches the accepted address pattern.
// The input is not normalized first.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isSpace reports whether r is whitespace. The byte order mark U+FEFF
// counts as whitespace, as it does in JSON producers that trim with
// ECMAScript semantics.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// trimSpace trims leading and trailing whitespace as defined by isSpace.
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// NormalizeEmail trims and lowercases email and removes every whitespace
// character inside it. Applying it twice yields the same string.
func NormalizeEmail(email string) string {
	email = strings.ToLower(trimSpace(email))
	return strings.Map(func(r rune) rune {
		if isSpace(r) {
			return -1
		}
		return r
	}, email)
}

// NormalizeEmailMinimal trims and lowercases email without touching
// internal whitespace. Minimal mode keeps this narrower normalization.
func NormalizeEmailMinimal(email string) string {
	return strings.ToLower(trimSpace(email))
}

// SplitName splits a full name on runs of whitespace after trimming.
func SplitName(name string) []string {
	return strings.FieldsFunc(name, isSpace)
}

// SplitAddress splits an address on commas and trims every segment.
// Empty segments are kept so that positions stay stable.
func SplitAddress(address string) []string {
	parts := strings.Split(address, ",")
	for i, p := range parts {
		parts[i] = trimSpace(p)
	}
	return parts
}

// Validate checks raw and returns its normalized fields.
// Checks run in a fixed order and stop at the first failure:
//  1. name, email and address present and non-empty (ReasonMissingField)
//  2. normalized email matches the pattern (ReasonInvalidEmail)
//  3. name has at least two tokens (ReasonIncompleteName)
//  4. address has at least three segments (ReasonIncompleteAddress)
//
// On success the returned reason is model.ReasonNone.
func Validate(raw model.RawRecord) (Fields, model.RejectReason) {
	name, ok := nonEmpty(raw, model.FieldName)
	if !ok {
		return Fields{}, model.ReasonMissingField
	}
	email, ok := nonEmpty(raw, model.FieldEmail)
	if !ok {
		return Fields{}, model.ReasonMissingField
	}
	address, ok := nonEmpty(raw, model.FieldAddress)
	if !ok {
		return Fields{}, model.ReasonMissingField
	}

	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return Fields{}, model.ReasonInvalidEmail
	}

	tokens := SplitName(name)
	if len(tokens) < 2 {
		return Fields{}, model.ReasonIncompleteName
	}

	segments := SplitAddress(address)
	if len(segments) < minAddressSegments {
		return Fields{}, model.ReasonIncompleteAddress
	}

	return Fields{
		Email:           email,
		NameTokens:      tokens,
		AddressSegments: segments,
	}, model.ReasonNone
}

// nonEmpty returns the string field key when it is present and not "".
// A whitespace-only value counts as present here; later checks reject it.
func nonEmpty(raw model.RawRecord, key string) (string, bool) {
	v, ok := raw.Field(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
