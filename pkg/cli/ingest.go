package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sarops/medkit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func ingestCommand() *cli.Command {
	var (
		cfg          config
		dir          string
		manifestPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"i"},
			Usage:       "Directory of reference documents (.pdf, .txt, .md)",
			Value:       "documents",
			Sources:     cli.EnvVars("MEDKIT_DOCUMENTS_DIR"),
			Destination: &dir,
		},
		&cli.StringFlag{
			Name:        "manifest",
			Usage:       "Path to the processed-documents manifest",
			Sources:     cli.EnvVars("MEDKIT_MANIFEST"),
			Destination: &manifestPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Index reference documents for retrieval (offline batch step)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.New(cfg.logLevel, os.Stderr)
			logging.SetDefault(logger)
			ctx = logging.With(ctx, logger)

			if err := cfg.loadSettings(); err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			if manifestPath == "" {
				manifestPath = filepath.Join(dir, "processed.json")
			}

			uc := cfg.newKnowledge(repo, gemini)
			if err := uc.IngestDir(ctx, dir, manifestPath); err != nil {
				return err
			}

			logger.Info("ingestion completed", "dir", dir)
			return nil
		},
	}
}
