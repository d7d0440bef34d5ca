package domain

import (
	"time"

	dErrors "custodia/pkg/domain-errors"
)

// ComplianceStatus is the two-valued compliance state of a monitored person.
// It is a cached projection of nextDueDate vs. "today", never the source of
// truth: the recorder refreshes it on every write and the reconciliation
// sweep refreshes it for persons who never showed up.
type ComplianceStatus string

const (
	StatusCompliant  ComplianceStatus = "COMPLIANT"
	StatusDelinquent ComplianceStatus = "DELINQUENT"
)

// ParseComplianceStatus constructs a ComplianceStatus from external input.
func ParseComplianceStatus(s string) (ComplianceStatus, error) {
	switch status := ComplianceStatus(s); status {
	case StatusCompliant, StatusDelinquent:
		return status, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "invalid compliance status")
	}
}

func (s ComplianceStatus) IsValid() bool {
	return s == StatusCompliant || s == StatusDelinquent
}

func (s ComplianceStatus) String() string { return string(s) }

// StatusFor derives the status from a due date and a reference date.
// A nil due date means not yet scheduled, which is compliant; so is a due
// date equal to today. Only a strictly elapsed due date is delinquent.
func StatusFor(nextDueDate *time.Time, today time.Time) ComplianceStatus {
	if nextDueDate == nil {
		return StatusCompliant
	}
	if DateOf(*nextDueDate).Before(DateOf(today)) {
		return StatusDelinquent
	}
	return StatusCompliant
}
