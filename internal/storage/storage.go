// Package storage provides the local dedupe store for reported incidents.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks task hrefs that have already been reported.
type Store interface {
	Close() error
	SeenTask(href string) (bool, error)
	MarkTask(href string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TaskTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTaskTTL         = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TaskTTL <= 0 {
		opts.TaskTTL = defaultTaskTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                  { return nil }
func (noopStore) SeenTask(string) (bool, error) { return false, nil }
func (noopStore) MarkTask(string) error         { return nil }
