package domain

import "errors"

var (
	// ErrDuplicateRiddle is returned when a submitted question matches an
	// existing one after normalization.
	ErrDuplicateRiddle = errors.New("riddle already submitted")
	// ErrEmptyPool is returned when a riddle is requested but none exist.
	ErrEmptyPool = errors.New("riddle pool is empty")
	// ErrRiddleNotFound indicates a riddle id is not in the pool.
	ErrRiddleNotFound = errors.New("riddle not found")
	// ErrNothingActive is returned when reveal is called with no riddle posted.
	ErrNothingActive = errors.New("no active riddle")
	// ErrGuessFailed is the generic failure for an unexpected error while
	// evaluating a guess; the attempt is not counted.
	ErrGuessFailed = errors.New("guess could not be evaluated")
)
