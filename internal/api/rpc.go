package api

import "github.com/jan-sykora/api-demo/internal/gateway"

const (
	EventServiceName = "ai.h2o.usage.v1.EventService"
	ImageServiceName = "ai.h2o.imagestore.v1.ImageService"
)

// HTTP bindings of the EventService and ImageService methods.
var (
	CreateEvent = gateway.NewTyped[*CreateEventRequest, *CreateEventResponse](gateway.MethodPost, "/v1/events", "event")
	ListEvents  = gateway.NewTyped[*ListEventsRequest, *ListEventsResponse](gateway.MethodGet, "/v1/events", "")

	CreateImage   = gateway.NewTyped[*CreateImageRequest, *CreateImageResponse](gateway.MethodPost, "/v1/images", "image")
	ListImages    = gateway.NewTyped[*ListImagesRequest, *ListImagesResponse](gateway.MethodGet, "/v1/images", "")
	GetImage      = gateway.NewTyped[*GetImageRequest, *GetImageResponse](gateway.MethodGet, "/v1/{name=images/*}", "")
	DeleteImage   = gateway.NewTyped[*DeleteImageRequest, *DeleteImageResponse](gateway.MethodDelete, "/v1/{name=images/*}", "")
	DownloadImage = gateway.NewTyped[*DownloadImageRequest, *DownloadImageResponse](gateway.MethodGet, "/v1/{name=images/*}:download", "")
)

// Resource name patterns.
var (
	EventName = gateway.MustNameParser("events/{event}")
	ImageName = gateway.MustNameParser("images/{image}")
)
