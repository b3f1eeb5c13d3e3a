package awsssm

import "fmt"

// NotFoundError is returned when the parameter store has no value at Path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find SSM param at: %s", e.Path)
}

// RemoteError wraps any other failure reported by STS or SSM.
type RemoteError struct {
	Path string
	Err  error
}

func (e *RemoteError) Error() string {
	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
