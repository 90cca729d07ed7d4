package model

// RejectReason explains why a raw record was excluded from the output.
// Rejections are an expected outcome of validation, not errors.
type RejectReason int

const (
	// ReasonNone marks an accepted record.
	ReasonNone RejectReason = iota

	// ReasonMissingField means name, email or address was absent or empty.
	ReasonMissingField

	// ReasonInvalidEmail means the normalized email did not match the
	// address pattern.
	ReasonInvalidEmail

	// ReasonIncompleteName means the name had fewer than two tokens.
	ReasonIncompleteName

	// ReasonIncompleteAddress means the address had fewer than three
	// comma-separated segments.
	ReasonIncompleteAddress
)

// RejectReasons lists every rejection reason in check order.
var RejectReasons = []RejectReason{
	ReasonMissingField,
	ReasonInvalidEmail,
	ReasonIncompleteName,
	ReasonIncompleteAddress,
}

// String returns the snake_case name of the reason.
func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMissingField:
		return "missing_field"
	case ReasonInvalidEmail:
		return "invalid_email"
	case ReasonIncompleteName:
		return "incomplete_name"
	case ReasonIncompleteAddress:
		return "incomplete_address"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of processing one raw record:
// either Accepted(Record) or Rejected(Reason).
type Outcome struct {
	// Record is only meaningful when Reason is ReasonNone.
	Record CleanRecord

	// Reason is ReasonNone for accepted records.
	Reason RejectReason
}

// Accepted builds an accepted outcome.
func Accepted(rec CleanRecord) Outcome {
	return Outcome{Record: rec, Reason: ReasonNone}
}

// Rejected builds a rejected outcome.
func Rejected(reason RejectReason) Outcome {
	return Outcome{Reason: reason}
}

// IsAccepted reports whether the record passed validation.
func (o Outcome) IsAccepted() bool {
	return o.Reason == ReasonNone
}

// RejectionCounts tallies rejected records by reason.
// It never influences the cleaned output.
type RejectionCounts struct {
	MissingField      int `json:"missing_field"`
	InvalidEmail      int `json:"invalid_email"`
	IncompleteName    int `json:"incomplete_name"`
	IncompleteAddress int `json:"incomplete_address"`
}

// Add increments the counter for reason. ReasonNone is ignored.
func (c *RejectionCounts) Add(reason RejectReason) {
	switch reason {
	case ReasonMissingField:
		c.MissingField++
	case ReasonInvalidEmail:
		c.InvalidEmail++
	case ReasonIncompleteName:
		c.IncompleteName++
	case ReasonIncompleteAddress:
		c.IncompleteAddress++
	}
}

// Get returns the count for reason.
func (c RejectionCounts) Get(reason RejectReason) int {
	switch reason {
	case ReasonMissingField:
		return c.MissingField
	case ReasonInvalidEmail:
		return c.InvalidEmail
	case ReasonIncompleteName:
		return c.IncompleteName
	case ReasonIncompleteAddress:
		return c.IncompleteAddress
	default:
		return 0
	}
}

// Merge adds the counts of other into c.
func (c *RejectionCounts) Merge(other RejectionCounts) {
	c.MissingField += other.MissingField
	c.InvalidEmail += other.InvalidEmail
	c.IncompleteName += other.IncompleteName
	c.IncompleteAddress += other.IncompleteAddress
}

// Total returns the number of rejected records.
func (c RejectionCounts) Total() int {
	return c.MissingField + c.InvalidEmail + c.IncompleteName + c.IncompleteAddress
}
