package model

import "strings"

// Field names recognized in a raw input record.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldAddress = "address"
)

// RawRecord is one element of the input array.
// It is deliberately untyped: any field may be missing or hold garbage.
// A nil RawRecord is valid and behaves like a record with no fields.
type RawRecord map[string]any

// Field returns the named field when it is present and holds a JSON string.
// Numbers, booleans, objects, arrays and null are reported as absent.
func (r RawRecord) Field(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// CleanRecord is a user record that passed every validation check.
// It is a value type; once built it is never modified.
type CleanRecord struct {
	// FirstName is the first whitespace-separated token of the name.
	FirstName string `json:"firstName"`

	// LastName holds the remaining name tokens joined by single spaces.
	LastName string `json:"lastName"`

	// Email is trimmed, lowercased and free of whitespace.
	Email string `json:"email"`

	// City is the second comma-separated address segment, trimmed.
	// It may be empty when that segment was blank.
	City string `json:"city"`
}

// Domain returns the part of the email after '@'.
func (r CleanRecord) Domain() string {
	return EmailDomain(r.Email)
}

// MinimalRecord is the projection of a CleanRecord written in minimal mode.
type MinimalRecord struct {
	Email string `json:"email"`
}

// EmailDomain returns the substring following the first '@'.
// It returns an empty string if the address has no '@'.
func EmailDomain(email string) string {
	_, domain, _ := strings.Cut(email, "@")
	return domain
}
