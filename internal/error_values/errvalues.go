package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrHabitNotFound = errors.New("habit doesn't exist")
	ErrWrongOwner    = errors.New("habit has different owner")
	ErrUserHasHabit  = errors.New("user already has habit with such title")

	// ErrCompletionConflict means the habit row lock couldn't be taken;
	// the transaction was never committed and the caller may retry.
	ErrCompletionConflict = errors.New("habit is being logged concurrently")

	// ErrUnlockExists is an internal outcome of the unlock insert race,
	// swallowed by the achievement engine rather than surfaced.
	ErrUnlockExists = errors.New("achievement already unlocked")
)
