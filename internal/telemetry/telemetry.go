package telemetry

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
)

const (
	tracerName = "github.com/jan-sykora/api-demo/internal/telemetry"
	rpcSystem  = "http-json"
)

var (
	rpcRouteKey      = attribute.Key("apidemo.rpc.route")
	rpcDurationKey   = attribute.Key("apidemo.rpc.duration_ms")
	rpcStatusCodeKey = attribute.Key("rpc.grpc.status_code")
	httpStatusKey    = attribute.Key("http.response.status_code")
)

// Instrumenter opens one client span per RPC call.
type Instrumenter interface {
	Start(ctx context.Context, call Call) (context.Context, Span)
	Shutdown(ctx context.Context) error
}

// Call names an outgoing RPC. RPC is the fully qualified method, e.g.
// ai.h2o.usage.v1.EventService/ListEvents; Route is its HTTP binding.
type Call struct {
	RPC   string
	Route string
	URL   *url.URL
}

// Result is how a call ended. Code is the RPC status carried by an error
// response and is ignored when zero.
type Result struct {
	Err        error
	StatusCode int
	Code       codes.Code
	Duration   time.Duration
}

type Span interface {
	End(result Result)
}

type Option func(*[]sdktrace.TracerProviderOption)

// WithSpanProcessor adds proc next to any exporter.
func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(opts *[]sdktrace.TracerProviderOption) {
		if proc != nil {
			*opts = append(*opts, sdktrace.WithSpanProcessor(proc))
		}
	}
}

type tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

// New returns a no-op instrumenter unless cfg has an endpoint or an option
// adds a processor.
func New(cfg Config, opts ...Option) (Instrumenter, error) {
	var tpOpts []sdktrace.TracerProviderOption
	for _, opt := range opts {
		opt(&tpOpts)
	}
	if !cfg.Enabled() && len(tpOpts) == 0 {
		return Noop(), nil
	}

	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.serviceName())}
	if v := strings.TrimSpace(cfg.Version); v != "" {
		attrs = append(attrs, semconv.ServiceVersion(v))
	}
	res, err := resource.New(context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, err
	}
	tpOpts = append(tpOpts, sdktrace.WithResource(res))

	if cfg.Enabled() {
		exporter, err := newExporter(cfg)
		if err != nil {
			return nil, err
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &tracer{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (t *tracer) Start(ctx context.Context, call Call) (context.Context, Span) {
	if strings.TrimSpace(call.RPC) == "" {
		return ctx, noopSpan{}
	}
	ctx, span := t.tracer.Start(ctx, call.RPC,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(callAttributes(call)...),
	)
	return ctx, &rpcSpan{span: span}
}

func (t *tracer) Shutdown(ctx context.Context) error {
	var err error
	t.shutdown.Do(func() {
		err = t.provider.Shutdown(ctx)
	})
	return err
}

type rpcSpan struct {
	span trace.Span
}

func (s *rpcSpan) End(result Result) {
	if result.StatusCode > 0 {
		s.span.SetAttributes(httpStatusKey.Int(result.StatusCode))
	}
	if result.Code != codes.OK {
		s.span.SetAttributes(rpcStatusCodeKey.Int(int(result.Code)))
	}
	if result.Duration > 0 {
		s.span.SetAttributes(rpcDurationKey.Int64(result.Duration.Milliseconds()))
	}
	if result.Err != nil {
		s.span.RecordError(result.Err)
		s.span.SetStatus(otelcodes.Error, result.Err.Error())
	} else {
		s.span.SetStatus(otelcodes.Ok, "")
	}
	s.span.End()
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopSpan struct{}

func (noopInstrumenter) Start(ctx context.Context, _ Call) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopSpan) End(Result) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptrace.New(ctx, otlptracegrpc.NewClient(clientOpts...))
}

// callAttributes splits RPC into service and method the way gRPC spans do.
func callAttributes(call Call) []attribute.KeyValue {
	attrs := []attribute.KeyValue{semconv.RPCSystemKey.String(rpcSystem)}
	if service, method, ok := strings.Cut(strings.TrimPrefix(call.RPC, "/"), "/"); ok {
		attrs = append(attrs, semconv.RPCService(service), semconv.RPCMethod(method))
	}
	if route := strings.TrimSpace(call.Route); route != "" {
		attrs = append(attrs, rpcRouteKey.String(route))
	}
	if call.URL != nil {
		if call.URL.Host != "" {
			attrs = append(attrs, semconv.ServerAddress(call.URL.Hostname()))
		}
		attrs = append(attrs, semconv.URLFull(call.URL.Redacted()))
	}
	return attrs
}
