package pulp

import "fmt"

// unknownErrorDescription is reported for failed tasks that carry no
// server-side error description.
const unknownErrorDescription = "Unknown error"

// TaskState enumerates the lifecycle states a Pulp task reports.
type TaskState string

const (
	TaskStateWaiting   TaskState = "waiting"
	TaskStateSkipped   TaskState = "skipped"
	TaskStateRunning   TaskState = "running"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateCanceled  TaskState = "canceled"
	TaskStateCanceling TaskState = "canceling"
)

// Terminal reports whether the state is one the server will never leave.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateSkipped:
		return true
	}
	return false
}

// TaskError is the error block a failed task carries.
type TaskError struct {
	Description string `json:"description"`
	Traceback   string `json:"traceback,omitempty"`
}

// Task is the subset of the Pulp task record this module reads. The
// caller owns the value; nothing here mutates it.
type Task struct {
	PulpHref         string     `json:"pulp_href"`
	State            TaskState  `json:"state"`
	Error            *TaskError `json:"error,omitempty"`
	CreatedResources []string   `json:"created_resources,omitempty"`
}

// ErrorDescription returns the server-reported description, or the
// "Unknown error" fallback when the task carries none.
func (t Task) ErrorDescription() string {
	if t.Error == nil || t.Error.Description == "" {
		return unknownErrorDescription
	}
	return t.Error.Description
}

// ExtractCreatedResources returns the hrefs of resources the task
// created. Absent or empty is an empty slice; this never fails.
func ExtractCreatedResources(task Task, operation string) []string {
	_ = operation
	if len(task.CreatedResources) == 0 {
		return []string{}
	}
	return task.CreatedResources
}

// CheckTaskSuccess certifies that a task completed. A failed task yields
// a TaskFailedError embedding the error description; any other state
// yields a TaskStateError, since a task that is still waiting, running,
// or was canceled must not pass for a success.
func CheckTaskSuccess(task Task, operation string) error {
	switch task.State {
	case TaskStateCompleted:
		return nil
	case TaskStateFailed:
		return &TaskFailedError{Operation: operation, Description: task.ErrorDescription()}
	default:
		return &TaskStateError{Operation: operation, State: task.State}
	}
}

// TaskFromDocument decodes a task record out of a results entry using
// the typed access layer.
func TaskFromDocument(doc Document) (Task, error) {
	if _, ok := doc.Object(); !ok {
		return Task{}, fmt.Errorf("task entry is not a JSON object")
	}

	var task Task
	task.PulpHref, _ = doc.StringField("pulp_href")
	if state, ok := doc.StringField("state"); ok {
		task.State = TaskState(state)
	}
	if resources, ok := doc.StringSliceField("created_resources"); ok {
		task.CreatedResources = resources
	}
	if errField, ok := doc.Field("error"); ok && !errField.IsNull() {
		taskErr := &TaskError{}
		taskErr.Description, _ = errField.StringField("description")
		taskErr.Traceback, _ = errField.StringField("traceback")
		task.Error = taskErr
	}
	return task, nil
}
