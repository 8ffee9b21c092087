package api

import "github.com/jan-sykora/api-demo/internal/gateway"

type Image struct {
	// Name is images/{image}, assigned by the server.
	Name       string              `json:"name,omitempty"`
	Filename   string              `json:"filename,omitempty"`
	MimeType   string              `json:"mimeType,omitempty"`
	SizeBytes  gateway.Int64String `json:"sizeBytes,omitempty"`
	CreateTime *Timestamp          `json:"createTime,omitempty"`
	Preview    *ImagePreview       `json:"preview,omitempty"`
	// Data is input only; it is never returned by the server.
	Data gateway.Bytes `json:"data,omitempty"`
}

type ImagePreview struct {
	Data     gateway.Bytes `json:"data,omitempty"`
	MimeType string        `json:"mimeType,omitempty"`
}

type CreateImageRequest struct {
	Image *Image `json:"image,omitempty"`
}

type CreateImageResponse struct {
	Image *Image `json:"image,omitempty"`
}

type GetImageRequest struct {
	Name string `json:"name,omitempty"`
}

type GetImageResponse struct {
	Image *Image `json:"image,omitempty"`
}

type ListImagesRequest struct {
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type ListImagesResponse struct {
	Images        []*Image `json:"images"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type DeleteImageRequest struct {
	Name string `json:"name,omitempty"`
}

type DeleteImageResponse struct{}

type DownloadImageRequest struct {
	Name string `json:"name,omitempty"`
}

type DownloadImageResponse struct {
	Data     gateway.Bytes `json:"data,omitempty"`
	MimeType string        `json:"mimeType,omitempty"`
}

func (r *GetImageRequest) GetName() string {
	if r == nil {
		return ""
	}
	return r.Name
}

func (r *DeleteImageRequest) GetName() string {
	if r == nil {
		return ""
	}
	return r.Name
}

func (r *DownloadImageRequest) GetName() string {
	if r == nil {
		return ""
	}
	return r.Name
}
