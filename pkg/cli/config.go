package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/adapter"
	"github.com/sarops/medkit/pkg/repository"
	"github.com/sarops/medkit/pkg/usecase/knowledge"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string
	local    bool

	// Adapters
	geminiProject  string
	geminiLocation string
	bucket         string

	// Knowledge / session tuning, overridable via settings file
	logLevel     string
	settingsPath string
	settings     settings
}

// settings are the tunables read from an optional YAML file
type settings struct {
	GenerativeModel string `yaml:"generative_model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	EmbeddingDims   int    `yaml:"embedding_dims"`
	TopK            int    `yaml:"top_k"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.BoolFlag{
			Name:        "local",
			Usage:       "Use an in-memory passage index instead of Firestore",
			Sources:     cli.EnvVars("MEDKIT_LOCAL"),
			Destination: &cfg.local,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("MEDKIT_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "settings",
			Usage:       "Path to YAML settings file",
			Sources:     cli.EnvVars("MEDKIT_SETTINGS"),
			Destination: &cfg.settingsPath,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// loadSettings reads the optional settings file into cfg.settings
func (cfg *config) loadSettings() error {
	if cfg.settingsPath == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.settingsPath)
	if err != nil {
		return goerr.Wrap(err, "failed to read settings file", goerr.V("path", cfg.settingsPath))
	}
	if err := yaml.Unmarshal(data, &cfg.settings); err != nil {
		return goerr.Wrap(err, "failed to parse settings file", goerr.V("path", cfg.settingsPath))
	}
	return nil
}

// newRepository creates a passage index, in-memory or Firestore backed
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.local {
		return repository.NewMemory(), nil
	}

	if cfg.project == "" {
		return nil, goerr.New("project is required (or use --local)")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.settings.GenerativeModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.settings.GenerativeModel))
	}
	if cfg.settings.EmbeddingModel != "" {
		opts = append(opts, adapter.WithEmbeddingModel(cfg.settings.EmbeddingModel))
	}

	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

// newKnowledge wires the document index and retrieval service
func (cfg *config) newKnowledge(repo repository.Repository, gemini adapter.Gemini) *knowledge.UseCase {
	var opts []knowledge.Option
	if cfg.settings.EmbeddingDims > 0 {
		opts = append(opts, knowledge.WithEmbeddingDims(cfg.settings.EmbeddingDims))
	}
	return knowledge.New(repo, gemini, opts...)
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}
