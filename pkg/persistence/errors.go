package persistence

import "errors"

var (
	ErrWorkflowNotFound   = errors.New("workflow not found")
	ErrExecutionNotFound  = errors.New("execution not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

func IsSubmissionNotFound(err error) bool {
	return errors.Is(err, ErrSubmissionNotFound)
}
