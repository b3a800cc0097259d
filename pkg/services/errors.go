package services

import "errors"

var (
	// ErrNotWaiting marks submissions against an execution that is not
	// paused.
	ErrNotWaiting = errors.New("execution is not waiting for input")
	// ErrNodeMismatch marks submissions targeting a different node than the
	// one the execution is paused on.
	ErrNodeMismatch = errors.New("submission node does not match the waiting node")
	// ErrNotFormNode marks form requests against a node that is not a form.
	ErrNotFormNode = errors.New("node is not a form node")
)

func IsNotWaiting(err error) bool {
	return errors.Is(err, ErrNotWaiting)
}

func IsNodeMismatch(err error) bool {
	return errors.Is(err, ErrNodeMismatch)
}

func IsNotFormNode(err error) bool {
	return errors.Is(err, ErrNotFormNode)
}
