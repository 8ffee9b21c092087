package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/imagestore"
	"github.com/jan-sykora/api-demo/internal/usage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv, err := New(Config{
		Logger: zerolog.Nop(),
		Events: usage.NewService(
			usage.WithClock(func() time.Time { return fixed }),
			usage.WithIDGenerator(func() string { return "e1" }),
		),
		Images: imagestore.NewService(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestCreateAndListEvents(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/events",
		`{"subject":"users/anonymous","source":"animal-classifier","action":"classify","executionDuration":"1.500s"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: status %d body %s", resp.StatusCode, body)
	}
	var created api.CreateEventResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Event.Name != "events/e1" {
		t.Fatalf("expected events/e1, got %q", created.Event.Name)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/v1/events?pageSize=10", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d body %s", resp.StatusCode, body)
	}
	var listed api.ListEventsResponse
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Events) != 1 || listed.Events[0].ExecutionDuration.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected list %s", body)
	}
}

func TestErrorsUseStatusBody(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/events", `{"subject":"users/anonymous"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var st struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode status: %v (%s)", err, body)
	}
	if st.Code != 3 || st.Message == "" {
		t.Fatalf("expected INVALID_ARGUMENT status, got %s", body)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/images/missing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing image, got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/v1/events", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for broken body, got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/events?pageSize=abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad page size, got %d", resp.StatusCode)
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, http.MethodGet, ts.URL+"/v1/unknown", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, http.MethodOptions, ts.URL+"/v1/events", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Fatalf("unexpected allowed methods %q", got)
	}
}

func TestImageRoutes(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()
	payload, err := json.Marshal(api.Image{Filename: "dot.png", Data: data})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, body := do(t, http.MethodPost, ts.URL+"/v1/images", string(payload))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create image: status %d body %s", resp.StatusCode, body)
	}
	var created api.CreateImageResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	name := created.Image.Name

	resp, body = do(t, http.MethodGet, ts.URL+"/v1/"+name, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get image: status %d body %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/v1/"+name+":download", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download image: status %d body %s", resp.StatusCode, body)
	}
	var downloaded api.DownloadImageResponse
	if err := json.Unmarshal(body, &downloaded); err != nil {
		t.Fatalf("decode download: %v", err)
	}
	if !bytes.Equal(downloaded.Data, data) || downloaded.MimeType != "image/png" {
		t.Fatalf("unexpected download %+v", downloaded.MimeType)
	}

	resp, _ = do(t, http.MethodDelete, ts.URL+"/v1/"+name, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/"+name, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestServeAnswersGRPCHealth(t *testing.T) {
	srv, err := New(Config{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, time.Second) }()

	conn, err := grpc.NewClient(ln.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(ctx, 5*time.Second)
	defer callCancel()
	resp, err := healthpb.NewHealthClient(conn).Check(callCtx, &healthpb.HealthCheckRequest{Service: api.EventServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}
}

func TestServeAnswersGRPCWithJSONCodec(t *testing.T) {
	srv, err := New(Config{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx, ln, time.Second) }()

	conn, err := grpc.NewClient(ln.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(JSONCodecName)),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(ctx, 5*time.Second)
	defer callCancel()

	var created api.CreateEventResponse
	req := &api.CreateEventRequest{Event: &api.Event{
		Subject:           "users/anonymous",
		Source:            "animal-classifier",
		Action:            "classify",
		ExecutionDuration: api.NewDuration(time.Second),
	}}
	if err := conn.Invoke(callCtx, "/"+api.EventServiceName+"/CreateEvent", req, &created); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if created.Event == nil || !strings.HasPrefix(created.Event.Name, "events/") {
		t.Fatalf("unexpected event %+v", created.Event)
	}

	var listed api.ListEventsResponse
	if err := conn.Invoke(callCtx, "/"+api.EventServiceName+"/ListEvents", &api.ListEventsRequest{}, &listed); err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(listed.Events) != 1 || listed.Events[0].Name != created.Event.Name {
		t.Fatalf("expected the created event, got %+v", listed.Events)
	}

	var got api.GetImageResponse
	err = conn.Invoke(callCtx, "/"+api.ImageServiceName+"/GetImage", &api.GetImageRequest{Name: "images/nope"}, &got)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	info := srv.grpc.GetServiceInfo()
	for _, name := range []string{api.EventServiceName, api.ImageServiceName} {
		if _, ok := info[name]; !ok {
			t.Fatalf("%s not registered on the grpc server", name)
		}
	}
}
