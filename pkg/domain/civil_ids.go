package domain

import (
	"strings"

	dErrors "custodia/pkg/domain-errors"
)

// TaxID is a person's tax identifier. Stored as digits only; formatting
// punctuation is stripped at parse time.
type TaxID string

// ParseTaxID constructs a TaxID from external input.
//
// Errors: returns CodeValidation when the cleaned value is not 11 digits.
func ParseTaxID(s string) (TaxID, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(cleaned) != 11 {
		return "", dErrors.New(dErrors.CodeValidation, "tax id must contain 11 digits")
	}
	return TaxID(cleaned), nil
}

func (t TaxID) String() string { return string(t) }

// NationalID is a person's national identity document number. Issuing formats
// vary by jurisdiction, so validation is limited to length bounds.
type NationalID string

// ParseNationalID constructs a NationalID from external input.
func ParseNationalID(s string) (NationalID, error) {
	trimmed := strings.TrimSpace(s)
	if l := len(trimmed); l < 4 || l > 20 {
		return "", dErrors.New(dErrors.CodeValidation, "national id must be 4 to 20 characters")
	}
	return NationalID(trimmed), nil
}

func (n NationalID) String() string { return string(n) }
