package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jan-sykora/api-demo/internal/errdef"
	"github.com/jan-sykora/api-demo/internal/gallery"
	"github.com/jan-sykora/api-demo/internal/ui"
)

func newGalleryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Local animal gallery with mock classification",
	}
	cmd.AddCommand(newGalleryAddCmd(a), newGalleryListCmd(a))
	return cmd
}

func newGalleryAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Add images to the gallery and classify them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kv, err := a.openStore()
			if err != nil {
				return err
			}
			defer kv.Close()

			uploader, err := gallery.NewUploader(ctx, kv, gallery.NewClassifier(), a.client)
			if err != nil {
				return err
			}
			items, err := a.readImages(args)
			if err != nil {
				return err
			}
			// uploads classify concurrently and finish in any order
			g, gctx := errgroup.WithContext(ctx)
			for _, item := range items {
				g.Go(func() error {
					item, err := uploader.UploadItem(gctx, item)
					if errdef.CodeOf(err) == errdef.CodeRPC {
						a.log.Warn().Err(err).Str("id", item.ID).Msg("classified but usage event not recorded")
						return nil
					}
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, uploader.State().Items, func() string {
				return ui.RenderGallery(ui.DefaultTheme(), uploader.State())
			})
		},
	}
}

// readImages loads every path before any upload starts. Files that are not
// images are skipped with a warning.
func (a *app) readImages(paths []string) ([]gallery.Item, error) {
	items := make([]gallery.Item, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		item, err := gallery.NewItem(filepath.Base(path), data)
		if err != nil {
			a.log.Warn().Err(err).Str("path", path).Msg("skipping file")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func newGalleryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kv, err := a.openStore()
			if err != nil {
				return err
			}
			defer kv.Close()
			state, err := gallery.Load(cmd.Context(), kv)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, state.Items, func() string {
				return ui.RenderGallery(ui.DefaultTheme(), state)
			})
		},
	}
}
