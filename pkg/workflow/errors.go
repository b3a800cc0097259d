package workflow

import "errors"

// ErrNotResumable marks resume attempts against an execution that is not
// waiting for input (already finished, still running, or unknown pause
// point).
var ErrNotResumable = errors.New("execution is not resumable")

func IsNotResumable(err error) bool {
	return errors.Is(err, ErrNotResumable)
}
