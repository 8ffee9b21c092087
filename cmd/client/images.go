package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/gateway"
	"github.com/jan-sykora/api-demo/internal/ui"
)

func newImagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage images in the image store",
	}
	cmd.AddCommand(
		newImagesUploadCmd(a),
		newImagesListCmd(a),
		newImagesGetCmd(a),
		newImagesDeleteCmd(a),
		newImagesDownloadCmd(a),
	)
	return cmd
}

// imageName accepts either images/{image} or the bare id.
func imageName(arg string) (string, error) {
	if strings.Contains(arg, "/") {
		if _, err := api.ImageName.Parse(arg); err != nil {
			return "", err
		}
		return arg, nil
	}
	return api.ImageName.Compile(map[string]string{"image": arg})
}

func imageLine(img *api.Image) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s bytes\t%s",
		img.Name, img.Filename, img.MimeType, img.SizeBytes, ui.FormatTimestamp(img.CreateTime))
}

func newImagesUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.CreateImage(cmd.Context(), &api.CreateImageRequest{Image: &api.Image{
				Filename: filepath.Base(args[0]),
				Data:     gateway.Bytes(data),
			}})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, resp, func() string {
				return imageLine(resp.Image)
			})
		},
	}
}

func newImagesListCmd(a *app) *cobra.Command {
	var (
		pageSize  int32
		pageToken string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List images, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("page-size") {
				pageSize = a.settings.Client.PageSize
			}
			resp, err := a.client.ListImages(cmd.Context(), &api.ListImagesRequest{PageSize: pageSize, PageToken: pageToken})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, resp, func() string {
				if len(resp.Images) == 0 {
					return "No images found"
				}
				lines := make([]string, 0, len(resp.Images)+1)
				for _, img := range resp.Images {
					lines = append(lines, imageLine(img))
				}
				if resp.NextPageToken != "" {
					lines = append(lines, "next page: --page-token "+resp.NextPageToken)
				}
				return strings.Join(lines, "\n")
			})
		},
	}
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "images per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "token from a previous page")
	return cmd
}

func newImagesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show image metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := imageName(args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.GetImage(cmd.Context(), &api.GetImageRequest{Name: name})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, resp, func() string {
				return imageLine(resp.Image)
			})
		},
	}
}

func newImagesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := imageName(args[0])
			if err != nil {
				return err
			}
			if _, err := a.client.DeleteImage(cmd.Context(), &api.DeleteImageRequest{Name: name}); err != nil {
				return err
			}
			a.log.Info().Str("name", name).Msg("image deleted")
			return nil
		},
	}
}

func newImagesDownloadCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <name>",
		Short: "Download the original image bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := imageName(args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.DownloadImage(cmd.Context(), &api.DownloadImageRequest{Name: name})
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(resp.Data)
				return err
			}
			if err := os.WriteFile(out, resp.Data, 0o644); err != nil {
				return err
			}
			a.log.Info().Str("file", out).Str("mime", resp.MimeType).Int("bytes", len(resp.Data)).Msg("image saved")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "file", "f", "", "write to this file instead of stdout")
	return cmd
}
