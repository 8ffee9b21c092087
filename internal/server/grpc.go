package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/jan-sykora/api-demo/internal/api"
)

// JSONCodecName is the codec that carries the api types over gRPC as JSON.
// Clients select it with grpc.CallContentSubtype(JSONCodecName).
const JSONCodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func unaryMethod[Req any](service, method string, call func(srv any, ctx context.Context, req *Req) (any, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(*Req))
			})
		},
	}
}

var eventServiceDesc = grpc.ServiceDesc{
	ServiceName: api.EventServiceName,
	HandlerType: (*EventService)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(api.EventServiceName, "CreateEvent", func(srv any, ctx context.Context, req *api.CreateEventRequest) (any, error) {
			return srv.(EventService).CreateEvent(ctx, req)
		}),
		unaryMethod(api.EventServiceName, "ListEvents", func(srv any, ctx context.Context, req *api.ListEventsRequest) (any, error) {
			return srv.(EventService).ListEvents(ctx, req)
		}),
	},
	Metadata: "ai/h2o/usage/v1/event_service.proto",
}

var imageServiceDesc = grpc.ServiceDesc{
	ServiceName: api.ImageServiceName,
	HandlerType: (*ImageService)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(api.ImageServiceName, "CreateImage", func(srv any, ctx context.Context, req *api.CreateImageRequest) (any, error) {
			return srv.(ImageService).CreateImage(ctx, req)
		}),
		unaryMethod(api.ImageServiceName, "GetImage", func(srv any, ctx context.Context, req *api.GetImageRequest) (any, error) {
			return srv.(ImageService).GetImage(ctx, req)
		}),
		unaryMethod(api.ImageServiceName, "ListImages", func(srv any, ctx context.Context, req *api.ListImagesRequest) (any, error) {
			return srv.(ImageService).ListImages(ctx, req)
		}),
		unaryMethod(api.ImageServiceName, "DeleteImage", func(srv any, ctx context.Context, req *api.DeleteImageRequest) (any, error) {
			return srv.(ImageService).DeleteImage(ctx, req)
		}),
		unaryMethod(api.ImageServiceName, "DownloadImage", func(srv any, ctx context.Context, req *api.DownloadImageRequest) (any, error) {
			return srv.(ImageService).DownloadImage(ctx, req)
		}),
	},
	Metadata: "ai/h2o/imagestore/v1/image_service.proto",
}
