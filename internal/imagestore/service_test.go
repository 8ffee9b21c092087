package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jan-sykora/api-demo/internal/api"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestService() *Service {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var tick, seq int
	return NewService(
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("img%d", seq)
		}),
	)
}

func TestCreateImageBuildsPreview(t *testing.T) {
	svc := newTestService()
	data := pngBytes(t, 400, 100)

	resp, err := svc.CreateImage(context.Background(), &api.CreateImageRequest{Image: &api.Image{Filename: "wide.png", Data: data}})
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	img := resp.Image
	if img.Name != "images/img1" || img.MimeType != "image/png" {
		t.Fatalf("unexpected image %+v", img)
	}
	if size, _ := img.SizeBytes.Int64(); size != int64(len(data)) {
		t.Fatalf("unexpected size %q", img.SizeBytes)
	}
	if len(img.Data) != 0 {
		t.Fatalf("image data must not be echoed back")
	}
	preview, err := png.Decode(bytes.NewReader(img.Preview.Data))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if b := preview.Bounds(); b.Dx() != 200 || b.Dy() != 50 {
		t.Fatalf("unexpected preview size %v", b)
	}
}

func TestCreateImageValidation(t *testing.T) {
	svc := newTestService()
	cases := []struct {
		name string
		req  *api.CreateImageRequest
	}{
		{name: "nil", req: nil},
		{name: "no image", req: &api.CreateImageRequest{}},
		{name: "no filename", req: &api.CreateImageRequest{Image: &api.Image{Data: pngBytes(t, 2, 2)}}},
		{name: "no data", req: &api.CreateImageRequest{Image: &api.Image{Filename: "a.png"}}},
		{name: "not an image", req: &api.CreateImageRequest{Image: &api.Image{Filename: "a.txt", Data: []byte("hello world")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateImage(context.Background(), tc.req)
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestImageLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	data := pngBytes(t, 10, 10)
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateImage(ctx, &api.CreateImageRequest{Image: &api.Image{Filename: fmt.Sprintf("%d.png", i), Data: data}}); err != nil {
			t.Fatalf("CreateImage: %v", err)
		}
	}

	list, err := svc.ListImages(ctx, &api.ListImagesRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(list.Images) != 2 || list.Images[0].Name != "images/img3" || list.NextPageToken != "images/img2" {
		t.Fatalf("unexpected first page: %d images, next %q", len(list.Images), list.NextPageToken)
	}

	got, err := svc.GetImage(ctx, &api.GetImageRequest{Name: "images/img2"})
	if err != nil || got.Image.Filename != "1.png" {
		t.Fatalf("GetImage: %+v %v", got, err)
	}

	dl, err := svc.DownloadImage(ctx, &api.DownloadImageRequest{Name: "images/img2"})
	if err != nil {
		t.Fatalf("DownloadImage: %v", err)
	}
	if !bytes.Equal(dl.Data, data) || dl.MimeType != "image/png" {
		t.Fatalf("unexpected download %d bytes %q", len(dl.Data), dl.MimeType)
	}

	if _, err := svc.DeleteImage(ctx, &api.DeleteImageRequest{Name: "images/img2"}); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if _, err := svc.GetImage(ctx, &api.GetImageRequest{Name: "images/img2"}); status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if _, err := svc.DeleteImage(ctx, &api.DeleteImageRequest{Name: "images/img2"}); status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound on second delete, got %v", err)
	}
}

func TestImageNameValidation(t *testing.T) {
	svc := newTestService()
	for _, name := range []string{"", "img1", "events/1", "images/a/b"} {
		if _, err := svc.GetImage(context.Background(), &api.GetImageRequest{Name: name}); status.Code(err) != codes.InvalidArgument {
			t.Fatalf("name %q: expected InvalidArgument, got %v", name, err)
		}
	}
}

func TestPreviewSize(t *testing.T) {
	cases := []struct{ w, h, ww, wh int }{
		{400, 100, 200, 50},
		{100, 400, 50, 200},
		{300, 300, 200, 200},
		{50, 20, 50, 20},
		{10000, 1, 200, 1},
	}
	for _, tc := range cases {
		w, h := previewSize(tc.w, tc.h)
		if w != tc.ww || h != tc.wh {
			t.Fatalf("previewSize(%d,%d) = %d,%d want %d,%d", tc.w, tc.h, w, h, tc.ww, tc.wh)
		}
	}
}
