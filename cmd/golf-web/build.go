package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/code-golf/internal/config"
	"github.com/terra-clan/code-golf/internal/site"
)

func newBuildCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the static page into an output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Site.OutDir = outDir
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			pages, err := buildPages(ctx, cfg)
			if err != nil {
				return err
			}

			if err := site.Compile(cfg.Site.OutDir, pages); err != nil {
				return err
			}

			slog.Info("build finished", "out", cfg.Site.OutDir, "pages", len(pages))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides SITE_OUT_DIR)")
	return cmd
}

// buildPages compiles the configured manifest, fetching fonts unless disabled
func buildPages(ctx context.Context, cfg *config.Config) ([]site.Page, error) {
	manifest, err := site.LoadManifest(cfg.Site.Manifest)
	if err != nil {
		return nil, err
	}

	var fonts *site.FontImporter
	if cfg.Site.Fonts != "false" {
		fonts = site.NewFontImporter(cfg.Site.Fonts, nil)
	}

	return site.Build(ctx, manifest, fonts)
}
