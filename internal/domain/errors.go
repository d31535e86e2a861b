package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the actor does not own the entity or lacks the role for the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrInvalidInput indicates missing or malformed input data.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrAlreadyExists indicates a uniqueness rule was violated: one active review per user and item,
	// one comment per user and review.
	ErrAlreadyExists = errors.New("entity already exists")
	// ErrSelfReport is returned when a user files a report against themselves.
	ErrSelfReport = errors.New("users cannot report themselves")
	// ErrInvalidTransition is a validation failure for a state change the state machine does not allow.
	ErrInvalidTransition = fmt.Errorf("%w: state transition not allowed", ErrInvalidInput)
	// ErrOptimisticLock indicates a conditional write lost to a concurrent modification.
	ErrOptimisticLock = errors.New("optimistic lock conflict: data was modified by another process")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
	// ErrTransient marks storage failures that may succeed when retried (network, timeouts).
	ErrTransient = errors.New("transient storage failure")
)
