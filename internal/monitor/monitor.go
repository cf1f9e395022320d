package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contentops-hq/pulp-courier/internal/domain"
	"github.com/contentops-hq/pulp-courier/internal/logger"
	"github.com/contentops-hq/pulp-courier/pkg/httpclient"
	"github.com/contentops-hq/pulp-courier/pkg/publishers"
	"github.com/contentops-hq/pulp-courier/pkg/pulp"
	"github.com/contentops-hq/pulp-courier/pkg/servers"
)

// Service coordinates one watch pass across the configured Pulp servers.
type Service struct {
	client     httpclient.Client
	sink       EventSink
	store      TaskStore
	log        logger.Logger
	tasksLimit int
}

// NewService wires a monitor with its HTTP client, event sink, and dedupe store.
func NewService(client httpclient.Client, sink EventSink, store TaskStore, log logger.Logger, tasksLimit int) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if tasksLimit <= 0 {
		tasksLimit = 25
	}
	return &Service{
		client:     client,
		sink:       sink,
		store:      store,
		log:        log,
		tasksLimit: tasksLimit,
	}
}

// Run executes a watch pass for all configured servers.
func (s *Service) Run(ctx context.Context, cfgs []servers.Server) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("monitor service is not initialized")
	}
	if len(cfgs) == 0 {
		return fmt.Errorf("no servers configured for watching")
	}

	errs := make([]error, 0, len(cfgs))
	for _, srv := range cfgs {
		if err := s.watchServer(ctx, srv); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("server watch failed", "server_error", map[string]any{
				"server_id": srv.ID,
				"error":     err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

// watchServer probes the status endpoint and inspects the latest page of tasks.
func (s *Service) watchServer(ctx context.Context, srv servers.Server) error {
	headers := servers.Headers(srv)

	if err := s.probeStatus(ctx, srv, headers); err != nil {
		s.reportUnreachable(ctx, srv, err)
		return fmt.Errorf("probe server %s: %w", srv.ID, err)
	}

	if err := sleepCtx(ctx, srv.RequestDelay()); err != nil {
		return err
	}

	reported, err := s.inspectTasks(ctx, srv, headers)
	if err != nil {
		return fmt.Errorf("inspect tasks for server %s: %w", srv.ID, err)
	}

	s.log.InfoObj("server watch completed", "server_result", map[string]any{
		"server_id":          srv.ID,
		"incidents_reported": reported,
	})
	return nil
}

// probeStatus fetches /status/ and logs the component versions the server reports.
func (s *Service) probeStatus(ctx context.Context, srv servers.Server, headers map[string]string) error {
	operation := fmt.Sprintf("status probe for %s", srv.ID)

	resp, err := s.client.Get(ctx, srv.StatusURL(), headers)
	if err != nil {
		return err
	}

	versions, err := pulp.GetResponseField(resp, "versions", operation, nil)
	if err != nil {
		return err
	}

	s.log.DebugObj("server status fetched", "server_status", map[string]any{
		"server_id": srv.ID,
		"versions":  versions,
	})
	return nil
}

// inspectTasks reads the newest page of tasks and reports failed ones
// that were not reported before. It returns the number of incidents
// published.
func (s *Service) inspectTasks(ctx context.Context, srv servers.Server, headers map[string]string) (int, error) {
	operation := fmt.Sprintf("task listing for %s", srv.ID)

	resp, err := s.client.Get(ctx, srv.TasksURL(s.tasksLimit), headers)
	if err != nil {
		return 0, err
	}

	results, err := pulp.ExtractResultsList(resp, operation, true)
	if err != nil {
		return 0, err
	}

	reported := 0
	for _, doc := range results {
		task, err := pulp.TaskFromDocument(doc)
		if err != nil {
			s.log.WarnObj("skipping malformed task entry", "task_decode_error", map[string]any{
				"server_id": srv.ID,
				"error":     err.Error(),
			})
			continue
		}

		var failed *pulp.TaskFailedError
		if !errors.As(pulp.CheckTaskSuccess(task, operation), &failed) {
			continue
		}

		seen, err := s.store.SeenTask(task.PulpHref)
		if err != nil {
			return reported, fmt.Errorf("dedupe lookup: %w", err)
		}
		if seen {
			continue
		}

		incident := domain.Incident{
			ID:               task.PulpHref,
			Kind:             domain.KindTaskFailed,
			TaskHref:         task.PulpHref,
			State:            string(task.State),
			Description:      task.ErrorDescription(),
			CreatedResources: pulp.ExtractCreatedResources(task, operation),
		}
		if err := s.publish(ctx, srv, incident); err != nil {
			return reported, err
		}

		// Only a fully delivered incident counts as reported; partial
		// fanout failures leave the task eligible for the next pass.
		if err := s.store.MarkTask(task.PulpHref); err != nil {
			return reported, fmt.Errorf("mark task reported: %w", err)
		}
		reported++
	}
	return reported, nil
}

// reportUnreachable publishes a server_unreachable incident; delivery
// failures are logged, not escalated, since the probe error is already
// being returned.
func (s *Service) reportUnreachable(ctx context.Context, srv servers.Server, cause error) {
	incident := domain.Incident{
		ID:          "status:" + srv.ID,
		Kind:        domain.KindServerUnreachable,
		Description: cause.Error(),
	}
	if err := s.publish(ctx, srv, incident); err != nil {
		s.log.ErrorObj("unreachable event delivery failed", "publish_error", map[string]any{
			"server_id": srv.ID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) publish(ctx context.Context, srv servers.Server, incident domain.Incident) error {
	if s.sink == nil {
		return nil
	}
	evt := publishers.NewEvent(srv.ID, srv.Name, incident)
	if _, err := s.sink.Publish(ctx, evt); err != nil {
		return fmt.Errorf("publish incident %s: %w", incident.ID, err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
