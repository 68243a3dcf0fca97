package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no matching row exists for the caller.
	ErrNotFound = errors.New("not found")

	// ErrNotVerified means the resolved connection is still pending and
	// cannot be used for resource access.
	ErrNotVerified = errors.New("connection is not verified yet")

	// errDuplicateRole is returned by Promote when the partial unique index
	// on (user_id, role_arn) rejects the update. The orchestrator treats it
	// as the reconciliation case, never as a fatal error.
	errDuplicateRole = errors.New("role already registered for user")
)

// ValidationError is malformed client input; the caller must correct and
// resubmit.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// RoleAssumptionError means STS rejected the AssumeRole call: the role does
// not exist, the trust policy rejects our principal, or the External ID does
// not match the trust condition. Reason carries the provider's diagnostic
// text; base credentials are never part of it.
type RoleAssumptionError struct {
	Reason string
}

func (e *RoleAssumptionError) Error() string {
	return fmt.Sprintf("role assumption failed: %s", e.Reason)
}

// AccessError means role assumption succeeded but the role lacks the minimum
// S3 permission for the attempted operation.
type AccessError struct {
	Reason string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}
