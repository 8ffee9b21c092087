package usage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/paging"
)

type storedEvent struct {
	event      *api.Event
	createTime time.Time
}

// Service keeps usage events in memory. It is safe for concurrent use.
type Service struct {
	mu     sync.RWMutex
	events map[string]*storedEvent // keyed by event ID
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(opts ...Option) *Service {
	s := &Service{
		events: make(map[string]*storedEvent),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateEvent(ctx context.Context, req *api.CreateEventRequest) (*api.CreateEventResponse, error) {
	in := req.GetEvent()
	switch {
	case in == nil:
		return nil, status.Error(codes.InvalidArgument, "event is required")
	case in.Subject == "":
		return nil, status.Error(codes.InvalidArgument, "subject is required")
	case in.Source == "":
		return nil, status.Error(codes.InvalidArgument, "source is required")
	case in.Action == "":
		return nil, status.Error(codes.InvalidArgument, "action is required")
	case in.ExecutionDuration == nil:
		return nil, status.Error(codes.InvalidArgument, "execution_duration is required")
	case in.ExecutionDuration.Duration < 0:
		return nil, status.Error(codes.InvalidArgument, "execution_duration must not be negative")
	}

	id := s.newID()
	name, err := api.EventName.Compile(map[string]string{"event": id})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "event name: %v", err)
	}
	now := s.now()

	event := &api.Event{
		Name:              name,
		Subject:           in.Subject,
		Source:            in.Source,
		Action:            in.Action,
		ExecutionDuration: api.NewDuration(in.ExecutionDuration.Duration),
		CreateTime:        api.NewTimestamp(now.UTC()),
	}

	s.mu.Lock()
	s.events[id] = &storedEvent{event: event, createTime: now}
	s.mu.Unlock()

	return &api.CreateEventResponse{Event: event}, nil
}

// ListEvents returns events newest first. The page token is the name of the
// last event of the previous page.
func (s *Service) ListEvents(ctx context.Context, req *api.ListEventsRequest) (*api.ListEventsResponse, error) {
	if req == nil {
		req = &api.ListEventsRequest{}
	}

	s.mu.RLock()
	all := make([]*storedEvent, 0, len(s.events))
	for _, e := range s.events {
		all = append(all, e)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].createTime.Equal(all[j].createTime) {
			return all[i].event.Name > all[j].event.Name
		}
		return all[i].createTime.After(all[j].createTime)
	})

	page, next := paging.Page(
		all,
		func(e *storedEvent) string { return e.event.Name },
		paging.Size(req.PageSize),
		req.PageToken,
	)
	events := make([]*api.Event, len(page))
	for i, stored := range page {
		events[i] = stored.event
	}
	return &api.ListEventsResponse{Events: events, NextPageToken: next}, nil
}
