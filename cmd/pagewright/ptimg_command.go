package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pagewright/internal/imageio"
	"pagewright/internal/logging"
	"pagewright/internal/preflight"
	"pagewright/internal/ptimg"
	"pagewright/internal/unscramble"
)

func newPtimgCommand(ctx *commandContext) *cobra.Command {
	var mapPath string
	var imagesDir string
	var title string
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "ptimg",
		Short: "Reconstruct pages from an explicit scramble map",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			m, err := ptimg.LoadMap(mapPath)
			if err != nil {
				return err
			}
			dir := imagesDir
			if strings.TrimSpace(dir) == "" {
				dir = filepath.Dir(mapPath)
			}
			if err := preflight.AsError(preflight.CheckReadableDirectory("images", dir)); err != nil {
				return err
			}
			logger := ctx.log()
			images, loadErrs := imageio.LoadDir(dir)
			if images == nil {
				return errors.Join(loadErrs...)
			}
			for _, loadErr := range loadErrs {
				logging.WarnWithContext(logger, "source image unreadable", "image_load_failed",
					logging.Error(loadErr),
					logging.Impact("tiles drawn from this image are skipped"),
				)
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(mapPath), filepath.Ext(mapPath))
			}

			results, err := unscramble.Descramble(cmd.Context(), m, images, logger)
			if err != nil {
				return err
			}
			pub, err := unscramble.Publish(cmd.Context(), results, unscramble.PublishOptions{
				Dir:     cfg.Paths.OutputDir,
				Title:   title,
				Quality: cfg.Output.JPEGQuality,
				Archive: cfg.Output.Archive && !noArchive,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"publication": pub,
					"views":       summarize(results),
				})
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{
					strconv.Itoa(r.Index),
					strconv.Itoa(r.Tiles),
					strconv.Itoa(r.Result.Applied),
					strconv.Itoa(len(r.Result.Failures)),
				})
			}
			writeRows(cmd, []string{"View", "Tiles", "Applied", "Skipped"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight})
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d pages to %s\n", len(pub.Entries), pub.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mapPath, "map", "m", "", "Scramble map JSON document")
	cmd.Flags().StringVar(&imagesDir, "images", "", "Directory holding the source images (default: the map's directory)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Output title (default: the map file name)")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Write loose JPEG files instead of a zip archive")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}
