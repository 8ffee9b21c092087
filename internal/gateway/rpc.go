package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Method is an HTTP verb allowed by the google.api.http binding. Custom
// verbs are not supported.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

const ContentTypeJSON = "application/json; charset=utf-8"

// RequestConfig is the per-client part of request construction.
type RequestConfig struct {
	// BasePath is joined with the expanded route, e.g. https://api.example.com/prefix.
	BasePath string
	// Location is used instead of BasePath when it is empty, the way a
	// browser resolves a path against the current page.
	Location string
	// BearerToken is sent as Authorization: Bearer <token>. TokenSource,
	// when set, is consulted on every request and wins over BearerToken.
	BearerToken string
	TokenSource func() string
	// Logger receives warnings about fields that cannot be sent. Nil means
	// the global zerolog logger.
	Logger *zerolog.Logger
}

func (c RequestConfig) token() string {
	if c.TokenSource != nil {
		return c.TokenSource()
	}
	return c.BearerToken
}

func (c RequestConfig) logger() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return &zlog.Logger
}

// RPC describes one remote operation as declared by its HTTP binding:
// verb, route template and the optional request field sent as the body.
// An RPC is immutable and safe to share between goroutines.
type RPC struct {
	method  Method
	path    string
	bodyKey string
}

func NewRPC(method Method, path, bodyKey string) RPC {
	return RPC{method: method, path: path, bodyKey: bodyKey}
}

func (r RPC) Method() Method  { return r.method }
func (r RPC) Path() string    { return r.path }
func (r RPC) BodyKey() string { return r.bodyKey }

func (r RPC) String() string {
	return string(r.method) + " " + r.path
}

// NewRequest builds the HTTP request for one call. Path placeholders are
// filled from params, then the body is taken from params (never for GET and
// DELETE) and whatever is left goes to the query string.
func (r RPC) NewRequest(ctx context.Context, cfg RequestConfig, params Params) (*http.Request, error) {
	path, remaining, err := ReplacePathParameters(r.path, params)
	if err != nil {
		return nil, err
	}

	u, err := resolveURL(cfg, path)
	if err != nil {
		return nil, err
	}

	var body []byte
	if params != nil && r.method != MethodGet && r.method != MethodDelete {
		if r.bodyKey != "" {
			if value := Get(params, r.bodyKey); value != nil {
				body, err = json.Marshal(value)
				if err != nil {
					return nil, fmt.Errorf("encode body %q: %w", r.bodyKey, err)
				}
			}
			remaining = Unset(remaining, r.bodyKey)
		} else {
			body, err = json.Marshal(remaining)
			if err != nil {
				return nil, fmt.Errorf("encode body: %w", err)
			}
			remaining = nil
		}
	}

	if len(remaining) > 0 {
		query := u.Query()
		appendQuery(query, remaining, cfg.logger())
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, string(r.method), u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}
	if token := cfg.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func appendQuery(query url.Values, remaining Params, log *zerolog.Logger) {
	keys := make([]string, 0, len(remaining))
	for k := range remaining {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := remaining[key]
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				appendQueryParameter(query, key, rv.Index(i).Interface(), log)
			}
			continue
		}
		appendQueryParameter(query, key, value, log)
	}
}

func appendQueryParameter(query url.Values, key string, value any, log *zerolog.Logger) {
	if value == nil {
		return
	}
	if s, ok := scalarString(value); ok {
		query.Add(key, s)
		return
	}
	log.Warn().
		Str("field", key).
		Str("type", fmt.Sprintf("%T", value)).
		Msg("field is not sent in the request body and holds an object, which cannot be a query parameter; skipped")
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	}
	// named scalar types such as Int64String or enum strings
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	return "", false
}
