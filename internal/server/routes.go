package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/zerolog/hlog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/gateway"
)

const maxBodyBytes = 32 << 20

type EventService interface {
	CreateEvent(ctx context.Context, req *api.CreateEventRequest) (*api.CreateEventResponse, error)
	ListEvents(ctx context.Context, req *api.ListEventsRequest) (*api.ListEventsResponse, error)
}

type ImageService interface {
	CreateImage(ctx context.Context, req *api.CreateImageRequest) (*api.CreateImageResponse, error)
	GetImage(ctx context.Context, req *api.GetImageRequest) (*api.GetImageResponse, error)
	ListImages(ctx context.Context, req *api.ListImagesRequest) (*api.ListImagesResponse, error)
	DeleteImage(ctx context.Context, req *api.DeleteImageRequest) (*api.DeleteImageResponse, error)
	DownloadImage(ctx context.Context, req *api.DownloadImageRequest) (*api.DownloadImageResponse, error)
}

// newGatewayMux binds the HTTP rules of both services. The plain GET on an
// image is registered before the :download one because later registrations
// are matched first.
func newGatewayMux(events EventService, images ImageService) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux(runtime.WithErrorHandler(handleMuxError))
	routes := []struct {
		binding gateway.RPC
		handler runtime.HandlerFunc
	}{
		{api.CreateEvent.RPC, createEvent(events)},
		{api.ListEvents.RPC, listEvents(events)},
		{api.CreateImage.RPC, createImage(images)},
		{api.ListImages.RPC, listImages(images)},
		{api.GetImage.RPC, getImage(images)},
		{api.DeleteImage.RPC, deleteImage(images)},
		{api.DownloadImage.RPC, downloadImage(images)},
	}
	for _, route := range routes {
		if err := mux.HandlePath(string(route.binding.Method()), route.binding.Path(), route.handler); err != nil {
			return nil, fmt.Errorf("register %s: %w", route.binding, err)
		}
	}
	return mux, nil
}

func createEvent(svc EventService) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		var event api.Event
		if err := decodeBody(r, &event); err != nil {
			writeError(w, r, err)
			return
		}
		resp, err := svc.CreateEvent(r.Context(), &api.CreateEventRequest{Event: &event})
		writeResponse(w, r, resp, err)
	}
}

func listEvents(svc EventService) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		size, token, err := pageParams(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp, err := svc.ListEvents(r.Context(), &api.ListEventsRequest{PageSize: size, PageToken: token})
		writeResponse(w, r, resp, err)
	}
}

func createImage(svc ImageService) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		var image api.Image
		if err := decodeBody(r, &image); err != nil {
			writeError(w, r, err)
			return
		}
		resp, err := svc.CreateImage(r.Context(), &api.CreateImageRequest{Image: &image})
		writeResponse(w, r, resp, err)
	}
}

func listImages(svc ImageService) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		size, token, err := pageParams(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp, err := svc.ListImages(r.Context(), &api.ListImagesRequest{PageSize: size, PageToken: token})
		writeResponse(w, r, resp, err)
	}
}

func getImage(svc ImageService) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		resp, err := svc.GetImage(r.Context(), &api.GetImageRequest{Name: params["name"]})
		writeResponse(w, r, resp, err)
	}
}

func deleteImage(svc ImageService) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		resp, err := svc.DeleteImage(r.Context(), &api.DeleteImageRequest{Name: params["name"]})
		writeResponse(w, r, resp, err)
	}
}

func downloadImage(svc ImageService) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		resp, err := svc.DownloadImage(r.Context(), &api.DownloadImageRequest{Name: params["name"]})
		writeResponse(w, r, resp, err)
	}
}

// pageParams accepts both the JSON (pageSize) and proto (page_size) spellings.
func pageParams(r *http.Request) (int32, string, error) {
	q := r.URL.Query()
	rawSize := q.Get("pageSize")
	if rawSize == "" {
		rawSize = q.Get("page_size")
	}
	token := q.Get("pageToken")
	if token == "" {
		token = q.Get("page_token")
	}
	if rawSize == "" {
		return 0, token, nil
	}
	size, err := strconv.ParseInt(rawSize, 10, 32)
	if err != nil {
		return 0, "", status.Errorf(codes.InvalidArgument, "invalid page_size %q", rawSize)
	}
	return int32(size), token, nil
}

func decodeBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return status.Error(codes.InvalidArgument, "request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return status.Error(codes.ResourceExhausted, "request body too large")
		}
		return status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}
	return nil
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		writeError(w, r, status.Errorf(codes.Internal, "encode response: %v", err))
		return
	}
	w.Header().Set("Content-Type", gateway.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError answers with the google.rpc.Status JSON of err.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	st := status.Convert(err)
	code := runtime.HTTPStatusFromCode(st.Code())
	var httpErr *runtime.HTTPStatusError
	if errors.As(err, &httpErr) {
		st = status.Convert(httpErr.Err)
		code = httpErr.HTTPStatus
	}
	if code >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	}
	data, marshalErr := protojson.Marshal(st.Proto())
	if marshalErr != nil {
		http.Error(w, st.Message(), code)
		return
	}
	w.Header().Set("Content-Type", gateway.ContentTypeJSON)
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func handleMuxError(
	_ context.Context,
	_ *runtime.ServeMux,
	_ runtime.Marshaler,
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	writeError(w, r, err)
}
