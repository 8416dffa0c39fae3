package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns for a rejected request wraps exactly one of these,
// callers branch with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrUnauthenticated = errors.New("unauthenticated")
)

var (
	ErrRestaurantNotFound  = fmt.Errorf("%w: restaurant not found", ErrNotFound)
	ErrTableNotFound       = fmt.Errorf("%w: table not found", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)

	ErrSlotUnavailable  = fmt.Errorf("%w: table is no longer available for this slot", ErrConflict)
	ErrTableMaintenance = fmt.Errorf("%w: table is under maintenance", ErrConflict)
	ErrTableInUse       = fmt.Errorf("%w: table has upcoming reservations", ErrConflict)
	ErrTableNumberTaken = fmt.Errorf("%w: table number already used in this restaurant", ErrConflict)

	ErrPastDate          = fmt.Errorf("%w: date is in the past", ErrInvalidArgument)
	ErrSlotNotOffered    = fmt.Errorf("%w: time is not a bookable slot", ErrInvalidArgument)
	ErrInvalidPartySize  = fmt.Errorf("%w: guests must be between 1 and the maximum party size", ErrInvalidArgument)
	ErrExceedsCapacity   = fmt.Errorf("%w: guests exceed table capacity", ErrInvalidArgument)
	ErrInvalidTable      = fmt.Errorf("%w: table needs a number and a positive capacity", ErrInvalidArgument)
	ErrInvalidRestaurant = fmt.Errorf("%w: restaurant needs a name and valid opening hours", ErrInvalidArgument)

	ErrReservationLocked = fmt.Errorf("%w: reservation is already completed or cancelled", ErrInvalidState)

	ErrNotReservationOwner = fmt.Errorf("%w: reservation belongs to another user", ErrForbidden)
	ErrAdminOnlyStatus     = fmt.Errorf("%w: only admins may set this status", ErrForbidden)
)

var (
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid login or password", ErrUnauthenticated)
	ErrEmailNotVerified    = fmt.Errorf("%w: email address is not verified", ErrUnauthenticated)
	ErrRefreshTokenInvalid = fmt.Errorf("%w: refresh token is invalid or expired", ErrUnauthenticated)

	ErrEmailAlreadyExists = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrAlreadyVerified    = fmt.Errorf("%w: email already verified", ErrConflict)

	ErrInvalidVerificationToken = fmt.Errorf("%w: invalid verification link", ErrInvalidArgument)
	ErrVerificationExpired      = fmt.Errorf("%w: verification link has expired", ErrInvalidArgument)
	ErrInvalidResetToken        = fmt.Errorf("%w: invalid or expired reset token", ErrInvalidArgument)
	ErrWeakPassword             = fmt.Errorf("%w: password rejected", ErrInvalidArgument)
)
