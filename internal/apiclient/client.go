package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/jan-sykora/api-demo/internal/errdef"
	"github.com/jan-sykora/api-demo/internal/gateway"
	"github.com/jan-sykora/api-demo/internal/telemetry"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	BasePath    string
	BearerToken string
	TokenSource func() string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zerolog.Logger
	Telemetry   telemetry.Instrumenter
}

// Client talks to the EventService and ImageService over their HTTP bindings.
type Client struct {
	cfg       gateway.RequestConfig
	http      *http.Client
	telemetry telemetry.Instrumenter
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	instr := opts.Telemetry
	if instr == nil {
		instr = telemetry.Noop()
	}
	return &Client{
		cfg: gateway.RequestConfig{
			BasePath:    opts.BasePath,
			BearerToken: opts.BearerToken,
			TokenSource: opts.TokenSource,
			Logger:      opts.Logger,
		},
		http:      httpClient,
		telemetry: instr,
	}
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	HTTPStatus int
	Code       codes.Code
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.HTTPStatus, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.HTTPStatus, e.Code, e.Message)
}

// Do sends req and returns the body of a 2xx response. rpc and route name
// the call in traces.
func (c *Client) Do(ctx context.Context, rpc, route string, req *http.Request) (body []byte, err error) {
	ctx, span := c.telemetry.Start(ctx, telemetry.Call{RPC: rpc, Route: route, URL: req.URL})
	start := time.Now()
	statusCode := 0
	defer func() {
		result := telemetry.Result{Err: err, StatusCode: statusCode, Duration: time.Since(start)}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			result.Code = statusErr.Code
		}
		span.End(result)
	}()

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "%s %s", req.Method, req.URL.Redacted())
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	statusCode = resp.StatusCode

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := parseStatusError(resp.StatusCode, body)
		return nil, errdef.Wrap(errdef.CodeRPC, statusErr, "%s", rpc)
	}
	return body, nil
}

func parseStatusError(httpStatus int, body []byte) *StatusError {
	out := &StatusError{HTTPStatus: httpStatus, Code: codeFromHTTP(httpStatus)}
	var st spb.Status
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	if len(bytes.TrimSpace(body)) > 0 && opts.Unmarshal(body, &st) == nil {
		if st.GetCode() != 0 {
			out.Code = codes.Code(st.GetCode())
		}
		out.Message = st.GetMessage()
		return out
	}
	out.Message = string(bytes.TrimSpace(body))
	return out
}

// codeFromHTTP is used when the body carries no status.
func codeFromHTTP(status int) codes.Code {
	switch status {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusNotImplemented:
		return codes.Unimplemented
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	case http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Unknown
	}
}

func call[Req, Resp any](
	ctx context.Context,
	c *Client,
	rpc string,
	binding gateway.Typed[Req, Resp],
	req Req,
) (Resp, error) {
	var zero Resp
	httpReq, err := binding.NewRequest(ctx, c.cfg, req)
	if err != nil {
		return zero, errdef.Wrap(errdef.CodeRPC, err, "build %s", rpc)
	}
	body, err := c.Do(ctx, rpc, binding.String(), httpReq)
	if err != nil {
		return zero, err
	}
	resp, err := binding.Decode(bytes.NewReader(body))
	if err != nil {
		return zero, errdef.Wrap(errdef.CodeParse, err, "%s", rpc)
	}
	return resp, nil
}
