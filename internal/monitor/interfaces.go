package monitor

import (
	"context"

	"github.com/contentops-hq/pulp-courier/pkg/publishers"
)

// EventSink dispatches incident events downstream. Satisfied by
// publishers.Fanout.
type EventSink interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// TaskStore remembers which task hrefs were already reported.
type TaskStore interface {
	SeenTask(href string) (bool, error)
	MarkTask(href string) error
}
