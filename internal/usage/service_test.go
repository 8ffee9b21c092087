package usage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jan-sykora/api-demo/internal/api"
)

func newTestService() *Service {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var tick, seq int
	return NewService(
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("%03d", seq)
		}),
	)
}

func validEvent() *api.Event {
	return &api.Event{
		Subject:           "users/anonymous",
		Source:            "animal-classifier",
		Action:            "classify",
		ExecutionDuration: api.NewDuration(1500 * time.Millisecond),
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc := newTestService()
	cases := []struct {
		name   string
		mutate func(*api.Event) *api.Event
	}{
		{name: "nil event", mutate: func(*api.Event) *api.Event { return nil }},
		{name: "subject", mutate: func(e *api.Event) *api.Event { e.Subject = ""; return e }},
		{name: "source", mutate: func(e *api.Event) *api.Event { e.Source = ""; return e }},
		{name: "action", mutate: func(e *api.Event) *api.Event { e.Action = ""; return e }},
		{name: "duration", mutate: func(e *api.Event) *api.Event { e.ExecutionDuration = nil; return e }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEvent(context.Background(), &api.CreateEventRequest{Event: tc.mutate(validEvent())})
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestCreateEventAssignsNameAndTime(t *testing.T) {
	svc := newTestService()
	resp, err := svc.CreateEvent(context.Background(), &api.CreateEventRequest{Event: validEvent()})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if resp.Event.Name != "events/001" {
		t.Fatalf("unexpected name %q", resp.Event.Name)
	}
	if resp.Event.CreateTime == nil || resp.Event.CreateTime.IsZero() {
		t.Fatalf("expected create time")
	}
	if resp.Event.ExecutionDuration.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected duration %v", resp.Event.ExecutionDuration)
	}
}

func TestListEventsPaginatesNewestFirst(t *testing.T) {
	svc := newTestService()
	for i := 0; i < 5; i++ {
		if _, err := svc.CreateEvent(context.Background(), &api.CreateEventRequest{Event: validEvent()}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	first, err := svc.ListEvents(context.Background(), &api.ListEventsRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(first.Events) != 2 || first.Events[0].Name != "events/005" || first.Events[1].Name != "events/004" {
		t.Fatalf("unexpected first page %v", names(first.Events))
	}
	if first.NextPageToken != "events/004" {
		t.Fatalf("unexpected next token %q", first.NextPageToken)
	}

	second, err := svc.ListEvents(context.Background(), &api.ListEventsRequest{PageSize: 2, PageToken: first.NextPageToken})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if got := names(second.Events); len(got) != 2 || got[0] != "events/003" {
		t.Fatalf("unexpected second page %v", got)
	}

	last, err := svc.ListEvents(context.Background(), &api.ListEventsRequest{PageSize: 2, PageToken: second.NextPageToken})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if got := names(last.Events); len(got) != 1 || got[0] != "events/001" || last.NextPageToken != "" {
		t.Fatalf("unexpected last page %v (next %q)", got, last.NextPageToken)
	}
}

func TestListEventsEmpty(t *testing.T) {
	resp, err := NewService().ListEvents(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(resp.Events) != 0 || resp.NextPageToken != "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func names(events []*api.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}
