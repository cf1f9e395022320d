package publishers

import (
	"time"

	"github.com/contentops-hq/pulp-courier/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	ServerID    string          `json:"server_id"`
	ServerName  string          `json:"server_name"`
	Kind        string          `json:"kind"`
	Incident    domain.Incident `json:"incident"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given server + incident.
func NewEvent(serverID, serverName string, incident domain.Incident) Event {
	return Event{
		ServerID:    serverID,
		ServerName:  serverName,
		Kind:        incident.Kind,
		Incident:    incident,
		CollectedAt: time.Now().UTC(),
	}
}
