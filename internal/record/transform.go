package record

import (
	"strings"

	"github.com/nao1215/userclean/internal/model"
)

// Transform builds a CleanRecord from fields returned by Validate.
// It must only be called with fields from a successful validation; Process
// enforces that ordering.
func Transform(f Fields) model.CleanRecord {
	return model.CleanRecord{
		FirstName: f.NameTokens[0],
		LastName:  strings.Join(f.NameTokens[1:], " "),
		Email:     f.Email,
		City:      f.AddressSegments[1],
	}
}

// Process validates raw and, when it passes, transforms it.
func Process(raw model.RawRecord) model.Outcome {
	fields, reason := Validate(raw)
	if reason != model.ReasonNone {
		return model.Rejected(reason)
	}
	return model.Accepted(Transform(fields))
}

// ProcessMinimal checks only the email of raw: it must be present and, after
// trimming and lowercasing, match the address pattern. The resulting record
// carries only Email.
func ProcessMinimal(raw model.RawRecord) model.Outcome {
	email, ok := nonEmpty(raw, model.FieldEmail)
	if !ok {
		return model.Rejected(model.ReasonMissingField)
	}
	email = NormalizeEmailMinimal(email)
	if !IsValidEmail(email) {
		return model.Rejected(model.ReasonInvalidEmail)
	}
	return model.Accepted(model.CleanRecord{Email: email})
}

// Processor returns the per-record function for mode.
func Processor(mode model.Mode) func(model.RawRecord) model.Outcome {
	if mode == model.ModeMinimal {
		return ProcessMinimal
	}
	return Process
}
