package db

import "strings"

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}

// IsStaleVersion reports whether an optimistic-concurrency save matched zero
// rows. Repositories surface this as a sentinel message so services can retry.
func IsStaleVersion(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stale shipment version")
}
