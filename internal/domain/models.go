package domain

// Domain contains core models shared across the courier.

// Event kinds the monitor reports.
const (
	KindTaskFailed        = "task_failed"
	KindServerUnreachable = "server_unreachable"
)

// Incident describes a single reportable problem observed on a watched
// Pulp server.
type Incident struct {
	ID               string   `json:"id"`
	Kind             string   `json:"kind"`
	TaskHref         string   `json:"task_href,omitempty"`
	State            string   `json:"state,omitempty"`
	Description      string   `json:"description"`
	CreatedResources []string `json:"created_resources,omitempty"`
}
