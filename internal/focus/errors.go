package focus

import "fmt"

// ValidationError rejects a user action locally, e.g. starting without a focus label.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RemoteWriteError reports a failed session log.
type RemoteWriteError struct {
	Session Session
	Err     error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("log session %q (%ds): %v", e.Session.Task, e.Session.Seconds, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// RemoteReadError reports a failed analytics fetch.
type RemoteReadError struct {
	Op  string
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }
