package pulp

import "fmt"

// Errors fall into three kinds: transport/format problems
// (ResponseError), required keys missing from well-formed JSON
// (MissingFieldError), and semantic failures (TaskFailedError,
// TaskStateError, EmptyResultsError). Every message carries the
// operation label supplied by the caller.

// ResponseError reports a response that could not be used: either the
// status code was not a success, or the body was not valid JSON.
type ResponseError struct {
	Operation  string
	StatusCode int   // non-zero when the failure is status-related
	Err        error // underlying decode error for invalid JSON bodies
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid JSON response: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: response not successful (status %d)", e.Operation, e.StatusCode)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// MissingFieldError reports a required key absent from an otherwise
// well-formed JSON object.
type MissingFieldError struct {
	Operation string
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: response does not contain %s", e.Operation, e.Field)
}

// TaskFailedError reports a Pulp task that reached the failed state.
// Description holds the server-reported error description, or
// "Unknown error" when the task carried none.
type TaskFailedError struct {
	Operation   string
	Description string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("%s: Task failed: %s", e.Operation, e.Description)
}

// TaskStateError reports a task that is neither completed nor failed,
// so its success cannot be certified.
type TaskStateError struct {
	Operation string
	State     TaskState
}

func (e *TaskStateError) Error() string {
	return fmt.Sprintf("%s: task in state %q is not completed", e.Operation, e.State)
}

// EmptyResultsError reports an empty results list where at least one
// entry was required.
type EmptyResultsError struct {
	Operation string
}

func (e *EmptyResultsError) Error() string {
	return fmt.Sprintf("Empty results for %s", e.Operation)
}
