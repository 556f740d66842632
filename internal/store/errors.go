package store

import "fmt"

// UnexpectedError is the single error kind the store surfaces. Reason is a
// short description safe to show the host application; the wrapped cause
// stays available through errors.Is and errors.As.
type UnexpectedError struct {
	Reason string
	Err    error
}

func (e *UnexpectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relevancy: %s: %v", e.Reason, e.Err)
	}
	return "relevancy: " + e.Reason
}

func (e *UnexpectedError) Unwrap() error { return e.Err }
