package sort

import "errors"

var (
	// ErrInvalidWorkers error returns when a strategy which needs workers gets none
	ErrInvalidWorkers = errors.New("number of workers must be positive")
	// ErrUnknownStrategy error returns when a strategy name or value is not recognized
	ErrUnknownStrategy = errors.New("unknown sort strategy")
	// ErrTaskFailed error returns when a merge task terminates abnormally, the sort call
	// is aborted as values may be left in an indeterminate order
	ErrTaskFailed = errors.New("merge task failed")
)
