package domain

import dErrors "custodia/pkg/domain-errors"

// AttendanceKind classifies a ledger entry.
// Invariant: the value must be one of the supported kinds.
//
// Usage: construct via ParseAttendanceKind at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type AttendanceKind string

const (
	// KindPresential is an in-person check-in validated at a supervision desk.
	KindPresential AttendanceKind = "PRESENTIAL"
	// KindRemote is a check-in over a video platform.
	KindRemote AttendanceKind = "REMOTE"
	// KindJustifiedAbsence excuses a specific past date. Also used, flagged
	// administrative, for the audit entry a reschedule leaves behind.
	KindJustifiedAbsence AttendanceKind = "JUSTIFIED_ABSENCE"
)

// validAttendanceKinds is the single source of truth for valid kinds.
var validAttendanceKinds = map[AttendanceKind]bool{
	KindPresential:       true,
	KindRemote:           true,
	KindJustifiedAbsence: true,
}

// ParseAttendanceKind constructs an AttendanceKind from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseAttendanceKind(s string) (AttendanceKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "attendance kind cannot be empty")
	}
	k := AttendanceKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid attendance kind")
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported enum values.
func (k AttendanceKind) IsValid() bool {
	return validAttendanceKinds[k]
}

func (k AttendanceKind) String() string { return string(k) }
