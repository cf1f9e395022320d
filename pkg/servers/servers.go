// Package servers loads the registry of watched Pulp servers from
// YAML/JSON config files.
package servers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultAPIRoot = "/pulp/api/v3"

// Server is a single watched Pulp instance declared in config files.
type Server struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	BaseURL        string         `json:"base_url" yaml:"base_url"`
	APIRoot        string         `json:"api_root" yaml:"api_root"`
	RequestDelayMs int            `json:"request_delay_ms" yaml:"request_delay_ms"`
	Config         map[string]any `json:"config" yaml:"config"`
}

type registryFile struct {
	Servers []Server `json:"servers" yaml:"servers"`
}

// Registry holds the loaded server definitions.
type Registry struct {
	mu      sync.RWMutex
	servers []Server
	idx     map[string]Server
}

var defaultRequestDelayMs = 250

// LoadRegistry loads the server registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("servers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open servers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read servers file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Servers) == 0 {
		return nil, errors.New("servers file contains no servers entries")
	}

	reg := &Registry{
		servers: make([]Server, len(fileReg.Servers)),
		idx:     make(map[string]Server, len(fileReg.Servers)),
	}

	for i := range fileReg.Servers {
		s := sanitizeServer(fileReg.Servers[i])
		if err := validateServer(s); err != nil {
			return nil, fmt.Errorf("servers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate server id %q", s.ID)
		}
		reg.servers[i] = s
		reg.idx[s.ID] = s
	}

	return reg, nil
}

// All returns a copy of the loaded servers.
func (r *Registry) All() []Server {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Server, len(r.servers))
	copy(out, r.servers)
	return out
}

// ByID returns the server entry for the given id, if loaded.
func (r *Registry) ByID(id string) (Server, bool) {
	if r == nil {
		return Server{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Server{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.idx[id]
	return s, ok
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("servers file format not recognized (expected YAML or JSON)")
}

func sanitizeServer(s Server) Server {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	s.APIRoot = strings.TrimSpace(s.APIRoot)

	if s.APIRoot == "" {
		s.APIRoot = defaultAPIRoot
	}
	if !strings.HasPrefix(s.APIRoot, "/") {
		s.APIRoot = "/" + s.APIRoot
	}
	s.APIRoot = strings.TrimRight(s.APIRoot, "/")

	if s.Config == nil {
		s.Config = map[string]any{}
	}
	if s.RequestDelayMs <= 0 {
		s.RequestDelayMs = defaultRequestDelayMs
	}

	return s
}

func validateServer(s Server) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for server %q", s.ID)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required for server %q", s.ID)
	}
	if !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("base_url for server %q must be http(s)", s.ID)
	}
	return nil
}

// RequestDelay returns the per-request throttle duration for the server.
func (s Server) RequestDelay() time.Duration {
	if s.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(s.RequestDelayMs) * time.Millisecond
}

// StatusURL is the server's status endpoint.
func (s Server) StatusURL() string {
	return s.BaseURL + s.APIRoot + "/status/"
}

// TasksURL is the newest-first task listing endpoint, limited to a
// single page of at most limit entries.
func (s Server) TasksURL(limit int) string {
	if limit <= 0 {
		limit = 25
	}
	return fmt.Sprintf("%s%s/tasks/?ordering=-pulp_created&limit=%d", s.BaseURL, s.APIRoot, limit)
}
