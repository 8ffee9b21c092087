package imagestore

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/gateway"
	"github.com/jan-sykora/api-demo/internal/paging"
)

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type storedImage struct {
	image      *api.Image
	data       []byte
	createTime time.Time
}

// Service keeps images and their previews in memory. It is safe for
// concurrent use.
type Service struct {
	mu     sync.RWMutex
	images map[string]*storedImage // keyed by image ID
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(opts ...Option) *Service {
	s := &Service{
		images: make(map[string]*storedImage),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateImage(ctx context.Context, req *api.CreateImageRequest) (*api.CreateImageResponse, error) {
	if req == nil || req.Image == nil {
		return nil, status.Error(codes.InvalidArgument, "image is required")
	}
	if req.Image.Filename == "" {
		return nil, status.Error(codes.InvalidArgument, "filename is required")
	}
	data := []byte(req.Image.Data)
	if len(data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "data is required")
	}

	mimeType := http.DetectContentType(data)
	if !supportedTypes[mimeType] {
		return nil, status.Errorf(codes.InvalidArgument, "unsupported image type: %s", mimeType)
	}

	preview, err := generatePreview(data)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "generate preview: %v", err)
	}

	id := s.newID()
	name, err := api.ImageName.Compile(map[string]string{"image": id})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "image name: %v", err)
	}
	now := s.now()

	img := &api.Image{
		Name:       name,
		Filename:   req.Image.Filename,
		MimeType:   mimeType,
		SizeBytes:  gateway.ToInt64String(int64(len(data))),
		CreateTime: api.NewTimestamp(now.UTC()),
		Preview:    preview,
	}

	s.mu.Lock()
	s.images[id] = &storedImage{image: img, data: append([]byte(nil), data...), createTime: now}
	s.mu.Unlock()

	return &api.CreateImageResponse{Image: img}, nil
}

func (s *Service) GetImage(ctx context.Context, req *api.GetImageRequest) (*api.GetImageResponse, error) {
	stored, err := s.lookup(req.GetName())
	if err != nil {
		return nil, err
	}
	return &api.GetImageResponse{Image: stored.image}, nil
}

func (s *Service) ListImages(ctx context.Context, req *api.ListImagesRequest) (*api.ListImagesResponse, error) {
	if req == nil {
		req = &api.ListImagesRequest{}
	}

	s.mu.RLock()
	all := make([]*storedImage, 0, len(s.images))
	for _, img := range s.images {
		all = append(all, img)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].createTime.Equal(all[j].createTime) {
			return all[i].image.Name > all[j].image.Name
		}
		return all[i].createTime.After(all[j].createTime)
	})

	page, next := paging.Page(
		all,
		func(img *storedImage) string { return img.image.Name },
		paging.Size(req.PageSize),
		req.PageToken,
	)
	images := make([]*api.Image, len(page))
	for i, stored := range page {
		images[i] = stored.image
	}
	return &api.ListImagesResponse{Images: images, NextPageToken: next}, nil
}

func (s *Service) DeleteImage(ctx context.Context, req *api.DeleteImageRequest) (*api.DeleteImageResponse, error) {
	id, err := parseImageName(req.GetName())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[id]; !ok {
		return nil, status.Error(codes.NotFound, "image not found")
	}
	delete(s.images, id)
	return &api.DeleteImageResponse{}, nil
}

func (s *Service) DownloadImage(ctx context.Context, req *api.DownloadImageRequest) (*api.DownloadImageResponse, error) {
	stored, err := s.lookup(req.GetName())
	if err != nil {
		return nil, err
	}
	return &api.DownloadImageResponse{Data: stored.data, MimeType: stored.image.MimeType}, nil
}

func (s *Service) lookup(name string) (*storedImage, error) {
	id, err := parseImageName(name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	stored, ok := s.images[id]
	s.mu.RUnlock()
	if !ok {
		return nil, status.Error(codes.NotFound, "image not found")
	}
	return stored, nil
}

func parseImageName(name string) (string, error) {
	if name == "" {
		return "", status.Error(codes.InvalidArgument, "name is required")
	}
	vars, err := api.ImageName.Parse(name)
	if err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}
	return vars["image"], nil
}
