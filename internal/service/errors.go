package service

import (
	"errors"
)

var (
	// ErrUnauthorized means the caller lacks the permission level an
	// operation requires.
	ErrUnauthorized = errors.New("insufficient permission")

	// ErrQuotaExceeded is returned on upload only when quota
	// enforcement is enabled; by default quotas are advisory.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrCyclicMove means a folder move would create a parent cycle.
	ErrCyclicMove = errors.New("cannot move a folder into itself or a descendant")

	// ErrInvalidMoveTarget means the move destination does not exist
	// or is not a folder the caller may write to.
	ErrInvalidMoveTarget = errors.New("invalid move target")

	// ErrShareInactive covers revoked, expired, and exhausted shares.
	ErrShareInactive = errors.New("share link is no longer valid")

	// ErrSharePassword means the share requires a password and the
	// supplied one did not match.
	ErrSharePassword = errors.New("share password required or incorrect")

	// ErrNotTrashed means a restore or purge was attempted on a file
	// that is not in the trash.
	ErrNotTrashed = errors.New("file is not in the trash")
)
