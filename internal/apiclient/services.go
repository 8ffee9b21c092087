package apiclient

import (
	"context"

	"github.com/jan-sykora/api-demo/internal/api"
)

func rpcName(service, method string) string {
	return service + "/" + method
}

func (c *Client) CreateEvent(ctx context.Context, req *api.CreateEventRequest) (*api.CreateEventResponse, error) {
	return call(ctx, c, rpcName(api.EventServiceName, "CreateEvent"), api.CreateEvent, req)
}

func (c *Client) ListEvents(ctx context.Context, req *api.ListEventsRequest) (*api.ListEventsResponse, error) {
	return call(ctx, c, rpcName(api.EventServiceName, "ListEvents"), api.ListEvents, req)
}

func (c *Client) CreateImage(ctx context.Context, req *api.CreateImageRequest) (*api.CreateImageResponse, error) {
	return call(ctx, c, rpcName(api.ImageServiceName, "CreateImage"), api.CreateImage, req)
}

func (c *Client) ListImages(ctx context.Context, req *api.ListImagesRequest) (*api.ListImagesResponse, error) {
	return call(ctx, c, rpcName(api.ImageServiceName, "ListImages"), api.ListImages, req)
}

func (c *Client) GetImage(ctx context.Context, req *api.GetImageRequest) (*api.GetImageResponse, error) {
	return call(ctx, c, rpcName(api.ImageServiceName, "GetImage"), api.GetImage, req)
}

func (c *Client) DeleteImage(ctx context.Context, req *api.DeleteImageRequest) (*api.DeleteImageResponse, error) {
	return call(ctx, c, rpcName(api.ImageServiceName, "DeleteImage"), api.DeleteImage, req)
}

func (c *Client) DownloadImage(ctx context.Context, req *api.DownloadImageRequest) (*api.DownloadImageResponse, error) {
	return call(ctx, c, rpcName(api.ImageServiceName, "DownloadImage"), api.DownloadImage, req)
}
