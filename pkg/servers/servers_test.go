package servers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRegistryYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "servers.yaml")
	content := `
servers:
  - id: prod
    name: Production Pulp
    base_url: https://pulp.example.com/
    request_delay_ms: 750
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write servers file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}

	all := reg.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 server, got %d", len(all))
	}

	s, ok := reg.ByID("prod")
	if !ok {
		t.Fatalf("expected server id prod to be loaded")
	}
	if s.BaseURL != "https://pulp.example.com" {
		t.Fatalf("base_url not normalized: %s", s.BaseURL)
	}
	if s.APIRoot != "/pulp/api/v3" {
		t.Fatalf("expected default api_root, got %s", s.APIRoot)
	}
	if s.RequestDelay() != 750*time.Millisecond {
		t.Fatalf("unexpected request delay: %v", s.RequestDelay())
	}
	if s.StatusURL() != "https://pulp.example.com/pulp/api/v3/status/" {
		t.Fatalf("StatusURL = %s", s.StatusURL())
	}
	if got := s.TasksURL(10); got != "https://pulp.example.com/pulp/api/v3/tasks/?ordering=-pulp_created&limit=10" {
		t.Fatalf("TasksURL = %s", got)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "servers.yaml")
	content := `
servers:
  - id: duplicate
    name: Server One
    base_url: https://p1.example
  - id: duplicate
    name: Server Two
    base_url: https://p2.example
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write servers file: %v", err)
	}

	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected duplicate server error, got nil")
	}
}

func TestLoadRegistryRejectsNonHTTPBaseURL(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "servers.json")
	content := `{"servers":[{"id":"bad","name":"Bad","base_url":"ftp://pulp.example"}]}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write servers file: %v", err)
	}

	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected validation error for non-http base_url")
	}
}

func TestHeadersFromConfig(t *testing.T) {
	s := Server{Config: map[string]any{
		"accept":      "application/json;version=3",
		"auth_header": "Basic abc123",
	}}

	headers := Headers(s)
	if headers["Accept"] != "application/json;version=3" {
		t.Fatalf("Accept = %s", headers["Accept"])
	}
	if headers["Authorization"] != "Basic abc123" {
		t.Fatalf("Authorization = %s", headers["Authorization"])
	}
}
