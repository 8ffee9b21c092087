package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Typed binds an RPC to its request and response types. The request type's
// JSON field names form the parameter object, so each operation is declared
// once and checked by the compiler at every call site.
type Typed[Req, Resp any] struct {
	RPC
}

func NewTyped[Req, Resp any](method Method, path, bodyKey string) Typed[Req, Resp] {
	return Typed[Req, Resp]{RPC: NewRPC(method, path, bodyKey)}
}

func (t Typed[Req, Resp]) NewRequest(ctx context.Context, cfg RequestConfig, req Req) (*http.Request, error) {
	params, err := ToParams(req)
	if err != nil {
		return nil, err
	}
	return t.RPC.NewRequest(ctx, cfg, params)
}

// Decode reads a JSON response body into Resp. Unknown fields are ignored.
func (t Typed[Req, Resp]) Decode(r io.Reader) (Resp, error) {
	var resp Resp
	data, err := io.ReadAll(r)
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}

	// pointer response types need a value to decode into
	if rt := reflect.TypeOf(resp); rt != nil && rt.Kind() == reflect.Pointer {
		resp = reflect.New(rt.Elem()).Interface().(Resp)
		if msg, ok := any(resp).(proto.Message); ok {
			if len(bytes.TrimSpace(data)) == 0 {
				return resp, nil
			}
			opts := protojson.UnmarshalOptions{DiscardUnknown: true}
			if err := opts.Unmarshal(data, msg); err != nil {
				return resp, fmt.Errorf("decode %T: %w", resp, err)
			}
			return resp, nil
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return resp, nil
		}
		if err := json.Unmarshal(data, resp); err != nil {
			return resp, fmt.Errorf("decode %T: %w", resp, err)
		}
		return resp, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, fmt.Errorf("decode %T: %w", resp, err)
	}
	return resp, nil
}

// ToParams converts a request value into a parameter object. Protobuf
// messages go through protojson, everything else through encoding/json.
// Numbers are kept as json.Number so large integers survive unchanged.
func ToParams(v any) (Params, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(Params); ok {
		return p, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if msg, ok := v.(proto.Message); ok {
		data, err = protojson.Marshal(msg)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var params Params
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("%T is not an object: %w", v, err)
	}
	return params, nil
}
