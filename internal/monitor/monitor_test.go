package monitor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/contentops-hq/pulp-courier/internal/domain"
	"github.com/contentops-hq/pulp-courier/pkg/httpclient"
	"github.com/contentops-hq/pulp-courier/pkg/publishers"
	"github.com/contentops-hq/pulp-courier/pkg/servers"
)

type stubResponse struct {
	status int
	body   string
}

func (r stubResponse) Body() []byte    { return []byte(r.body) }
func (r stubResponse) StatusCode() int { return r.status }

// stubClient serves canned responses keyed by URL substring.
type stubClient struct {
	responses map[string]stubResponse
}

func (c *stubClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	for key, resp := range c.responses {
		if strings.Contains(url, key) {
			return resp, nil
		}
	}
	return nil, fmt.Errorf("no stub for %s", url)
}

type captureSink struct {
	events []publishers.Event
	err    error
}

func (s *captureSink) Publish(_ context.Context, evt publishers.Event) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.events = append(s.events, evt)
	return 1, nil
}

type mapStore struct {
	seen map[string]bool
}

func newMapStore() *mapStore { return &mapStore{seen: make(map[string]bool)} }

func (m *mapStore) SeenTask(href string) (bool, error) { return m.seen[href], nil }
func (m *mapStore) MarkTask(href string) error         { m.seen[href] = true; return nil }

func testServer() servers.Server {
	return servers.Server{
		ID:      "prod",
		Name:    "Production Pulp",
		BaseURL: "https://pulp.example.com",
		APIRoot: "/pulp/api/v3",
	}
}

const statusBody = `{"versions": [{"component": "core", "version": "3.49.0"}]}`

const tasksBody = `{
	"count": 3,
	"results": [
		{"pulp_href": "/pulp/api/v3/tasks/ok/", "state": "completed"},
		{"pulp_href": "/pulp/api/v3/tasks/bad/", "state": "failed",
		 "error": {"description": "sync interrupted"},
		 "created_resources": ["/pulp/api/v3/repositories/1/"]},
		{"pulp_href": "/pulp/api/v3/tasks/busy/", "state": "running"}
	]
}`

func TestRunReportsFailedTasksOnce(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"/status/": {status: 200, body: statusBody},
		"/tasks/":  {status: 200, body: tasksBody},
	}}
	sink := &captureSink{}
	store := newMapStore()

	svc := NewService(client, sink, store, nil, 25)

	if err := svc.Run(context.Background(), []servers.Server{testServer()}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	evt := sink.events[0]
	if evt.Kind != domain.KindTaskFailed {
		t.Fatalf("Kind = %s", evt.Kind)
	}
	if evt.Incident.TaskHref != "/pulp/api/v3/tasks/bad/" {
		t.Fatalf("TaskHref = %s", evt.Incident.TaskHref)
	}
	if evt.Incident.Description != "sync interrupted" {
		t.Fatalf("Description = %s", evt.Incident.Description)
	}
	if len(evt.Incident.CreatedResources) != 1 {
		t.Fatalf("CreatedResources = %#v", evt.Incident.CreatedResources)
	}

	// Second pass must not report the same task again.
	if err := svc.Run(context.Background(), []servers.Server{testServer()}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected dedupe, got %d events", len(sink.events))
	}
}

func TestRunFallsBackToUnknownErrorDescription(t *testing.T) {
	body := `{"results": [{"pulp_href": "/pulp/api/v3/tasks/x/", "state": "failed"}]}`
	client := &stubClient{responses: map[string]stubResponse{
		"/status/": {status: 200, body: statusBody},
		"/tasks/":  {status: 200, body: body},
	}}
	sink := &captureSink{}

	svc := NewService(client, sink, newMapStore(), nil, 25)
	if err := svc.Run(context.Background(), []servers.Server{testServer()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.events) != 1 || sink.events[0].Incident.Description != "Unknown error" {
		t.Fatalf("expected Unknown error fallback, got %#v", sink.events)
	}
}

func TestRunPublishesUnreachableOnStatusFailure(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"/status/": {status: 503, body: `{"detail": "down"}`},
	}}
	sink := &captureSink{}

	svc := NewService(client, sink, newMapStore(), nil, 25)
	err := svc.Run(context.Background(), []servers.Server{testServer()})
	if err == nil {
		t.Fatalf("expected joined error for unreachable server")
	}
	if len(sink.events) != 1 || sink.events[0].Kind != domain.KindServerUnreachable {
		t.Fatalf("expected server_unreachable event, got %#v", sink.events)
	}
}

func TestRunLeavesTaskUnmarkedWhenDeliveryFails(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"/status/": {status: 200, body: statusBody},
		"/tasks/":  {status: 200, body: tasksBody},
	}}
	sink := &captureSink{err: fmt.Errorf("sink down")}
	store := newMapStore()

	svc := NewService(client, sink, store, nil, 25)
	if err := svc.Run(context.Background(), []servers.Server{testServer()}); err == nil {
		t.Fatalf("expected delivery error")
	}
	if store.seen["/pulp/api/v3/tasks/bad/"] {
		t.Fatalf("task must stay eligible for the next pass")
	}
}

func TestRunWithoutServers(t *testing.T) {
	svc := NewService(&stubClient{}, &captureSink{}, newMapStore(), nil, 25)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty server list")
	}
}
