package api

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/jan-sykora/api-demo/internal/gateway"
)

func TestEventJSONUsesProtobufWellKnownTypes(t *testing.T) {
	ev := Event{
		Name:              "events/1",
		ExecutionDuration: NewDuration(1500 * time.Millisecond),
		CreateTime:        NewTimestamp(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"events/1","executionDuration":"1.500s","createTime":"2024-05-01T10:00:00Z"}`
	if string(data) != want {
		t.Fatalf("unexpected json\n got: %s\nwant: %s", data, want)
	}

	var back Event
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ExecutionDuration.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected duration %v", back.ExecutionDuration)
	}
	if !back.CreateTime.Equal(ev.CreateTime.Time) {
		t.Fatalf("unexpected create time %v", back.CreateTime)
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Fatalf("expected error")
	}
}

func TestImageBindings(t *testing.T) {
	cfg := gateway.RequestConfig{BasePath: "http://localhost:8080"}
	req, err := DownloadImage.NewRequest(context.Background(), cfg, &DownloadImageRequest{Name: "images/abc"})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if got := req.URL.String(); got != "http://localhost:8080/v1/images/abc:download" {
		t.Fatalf("unexpected url %q", got)
	}

	req, err = CreateImage.NewRequest(context.Background(), cfg, &CreateImageRequest{Image: &Image{
		Filename: "cat.png",
		Data:     gateway.Bytes("png"),
	}})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	body, _ := io.ReadAll(req.Body)
	if string(body) != `{"data":"cG5n","filename":"cat.png"}` {
		t.Fatalf("unexpected body %s", body)
	}

	req, err = ListEvents.NewRequest(context.Background(), cfg, &ListEventsRequest{PageSize: 20, PageToken: "events/9"})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if got := req.URL.RawQuery; got != "pageSize=20&pageToken=events%2F9" {
		t.Fatalf("unexpected query %q", got)
	}
}

func TestResourceNames(t *testing.T) {
	vars, err := ImageName.Parse("images/0f8e")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if vars["image"] != "0f8e" {
		t.Fatalf("unexpected vars %v", vars)
	}
	name, err := EventName.Compile(map[string]string{"event": "42"})
	if err != nil || name != "events/42" {
		t.Fatalf("unexpected name %q (%v)", name, err)
	}
}
