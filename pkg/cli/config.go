package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/craigdossantos/onceline/pkg/adapter"
	"github.com/craigdossantos/onceline/pkg/assistant"
	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/policy"
	"github.com/craigdossantos/onceline/pkg/repository"
	"github.com/craigdossantos/onceline/pkg/usecase/timeline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values shared across commands
type config struct {
	configPath string
	dataDir    string
	user       string

	// Repository
	project  string
	database string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
	bucket         string
	policyDir      string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("ONCELINE_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory for the anonymous local timeline",
			Sources:     cli.EnvVars("ONCELINE_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Authenticated user ID; switches to the remote store",
			Sources:     cli.EnvVars("ONCELINE_USER"),
			Destination: &cfg.user,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for Firestore",
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
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of rego policies deciding event privacy",
			Sources:     cli.EnvVars("ONCELINE_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
	}
}

// llmFlags returns flags for the extraction assistant
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
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Generative model name",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// storageFlags returns flags for event image storage
func storageFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for event images",
			Sources:     cli.EnvVars("ONCELINE_BUCKET"),
			Destination: &cfg.bucket,
		},
	}
}

// fileConfig mirrors the YAML config file. Values fill in flags that
// were left unset.
type fileConfig struct {
	DataDir        string `yaml:"data_dir"`
	User           string `yaml:"user"`
	Project        string `yaml:"project"`
	Database       string `yaml:"database"`
	GeminiProject  string `yaml:"gemini_project"`
	GeminiLocation string `yaml:"gemini_location"`
	GeminiModel    string `yaml:"gemini_model"`
	Bucket         string `yaml:"bucket"`
	PolicyDir      string `yaml:"policy_dir"`
}

// applyFile loads the YAML config file and back-fills unset values
func (cfg *config) applyFile() error {
	path := cfg.configPath
	if path == "" {
		path = filepath.Join(cfg.defaultDir(), "config.yml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse YAML config", goerr.V("path", path))
	}

	if cfg.dataDir == "" {
		cfg.dataDir = fc.DataDir
	}
	if cfg.user == "" {
		cfg.user = fc.User
	}
	if cfg.project == "" {
		cfg.project = fc.Project
	}
	if fc.Database != "" && (cfg.database == "" || cfg.database == "(default)") {
		cfg.database = fc.Database
	}
	if cfg.geminiProject == "" {
		cfg.geminiProject = fc.GeminiProject
	}
	if fc.GeminiLocation != "" && (cfg.geminiLocation == "" || cfg.geminiLocation == "us-central1") {
		cfg.geminiLocation = fc.GeminiLocation
	}
	if cfg.geminiModel == "" {
		cfg.geminiModel = fc.GeminiModel
	}
	if cfg.bucket == "" {
		cfg.bucket = fc.Bucket
	}
	if cfg.policyDir == "" {
		cfg.policyDir = fc.PolicyDir
	}

	return nil
}

func (cfg *config) defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".onceline"
	}
	return filepath.Join(home, ".onceline")
}

// newAssistant creates the extraction client, or nil when Gemini is not
// configured
func (cfg *config) newAssistant(ctx context.Context) (assistant.Client, error) {
	if cfg.geminiProject == "" {
		return nil, nil
	}

	opts := []adapter.GeminiOption{}
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}

	return assistant.New(gemini), nil
}

// newUseCase wires the reconciliation engine and initializes it in
// local or remote mode depending on whether a user ID is configured.
func (cfg *config) newUseCase(ctx context.Context) (*timeline.UseCase, error) {
	if err := cfg.applyFile(); err != nil {
		return nil, err
	}

	dataDir := cfg.dataDir
	if dataDir == "" {
		dataDir = cfg.defaultDir()
	}
	local := repository.NewLocal(dataDir)

	opts := []timeline.Option{}

	assistantClient, err := cfg.newAssistant(ctx)
	if err != nil {
		return nil, err
	}
	if assistantClient != nil {
		opts = append(opts, timeline.WithAssistant(assistantClient))
	}

	if cfg.policyDir != "" {
		privacy, err := policy.Load(ctx, cfg.policyDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, timeline.WithPrivacy(privacy))
	}

	if cfg.bucket != "" {
		storage, err := adapter.NewStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, err
		}
		opts = append(opts, timeline.WithStorage(storage))
	}

	if cfg.user != "" {
		if cfg.project == "" {
			return nil, goerr.New("project is required for remote mode")
		}
		remote, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, err
		}
		opts = append(opts, timeline.WithRemote(remote))
	}

	uc := timeline.New(local, opts...)

	if cfg.user != "" {
		if err := uc.InitAsRemote(ctx, model.UserID(cfg.user)); err != nil {
			return nil, goerr.Wrap(err, "failed to load remote timeline")
		}
	} else {
		uc.InitAsLocal(ctx)
	}

	return uc, nil
}
