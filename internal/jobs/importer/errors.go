package importer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies controller failures for the notification collaborator.
type ErrorKind string

const (
	// KindValidation is a local rejection before any network call.
	KindValidation ErrorKind = "validation"
	// KindSubmission is a remote or transport failure while starting a job.
	KindSubmission ErrorKind = "submission"
	// KindPollFetch is a failed status or log fetch. Polling continues.
	KindPollFetch ErrorKind = "poll_fetch"
	// KindRequest is a failed or rejected stop/done request.
	KindRequest ErrorKind = "request"
)

// Operations reported in ImportError.Op and the error event payload.
const (
	opSubmit = "submit"
	opStatus = "status"
	opLogs   = "logs"
	opStop   = "stop"
	opDone   = "done"
)

var (
	// ErrJobActive rejects a submission while another job is not yet cleared.
	ErrJobActive = errors.New("an import job is already active")
	// ErrNoActiveJob rejects a stop request when nothing is importing.
	ErrNoActiveJob = errors.New("no import job is running")
	// ErrNotTerminal rejects a done request before the job finished or failed.
	ErrNotTerminal = errors.New("import job has not finished or failed")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("import controller is closed")
)

// ImportError is the structured failure returned and published by the controller.
type ImportError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an ImportError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}
