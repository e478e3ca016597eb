package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"media2text/internal/app/errors"
)

// Config is the whole runtime configuration of m2t. It is built once in
// main and passed to constructors.
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Database    DatabaseConfig    `yaml:"database"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type PathsConfig struct {
	Input   string `yaml:"input" validate:"required"`
	Archive string `yaml:"archive" validate:"required"`
	Temp    string `yaml:"temp" validate:"required"`
	Prompt  string `yaml:"prompt" validate:"required"`
}

type PipelineConfig struct {
	Project                  string `yaml:"project" validate:"required"`
	TranscriptionBudgetBytes int64  `yaml:"transcription_budget_bytes" validate:"gt=0"`
	MinSegmentBytes          int64  `yaml:"min_segment_bytes" validate:"gte=0"`
	MaxChunkChars            int    `yaml:"max_chunk_chars" validate:"gt=0"`
	Language                 string `yaml:"language"`
	Diarization              bool   `yaml:"diarization"`
}

type TranscriberConfig struct {
	Provider          string        `yaml:"provider" validate:"oneof=openai whisperx"`
	Model             string        `yaml:"model"`
	Prompt            string        `yaml:"prompt"`
	BaseURL           string        `yaml:"base_url" validate:"required_if=Provider whisperx,omitempty,url"`
	HuggingFaceToken  string        `yaml:"huggingface_token"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
}

type GeneratorConfig struct {
	Provider       string        `yaml:"provider" validate:"oneof=gemini openai"`
	Model          string        `yaml:"model"`
	BaseURL        string        `yaml:"base_url" validate:"omitempty,url"`
	Temperature    float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxAttempts    int           `yaml:"max_attempts" validate:"gte=1,lte=10"`
	BaseDelay      time.Duration `yaml:"base_delay" validate:"gte=0"`
	ThinkingBudget int32         `yaml:"thinking_budget" validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	Path   string `yaml:"path" validate:"required_if=Driver sqlite"`
	DSN    string `yaml:"dsn" validate:"required_if=Driver postgres"`
}

type ArchiveConfig struct {
	Backend string      `yaml:"backend" validate:"oneof=fs minio"`
	Minio   MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type LoggingConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
}

type MetricsConfig struct {
	// TextfilePath, when set, receives the registry after each batch run in
	// node-exporter textfile format.
	TextfilePath string `yaml:"textfile_path"`
}

// DefaultProject groups files that were processed without a project name.
const DefaultProject = "Transcriptions"

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Input:   "input",
			Archive: "archive",
			Temp:    filepath.Join(os.TempDir(), "media2text"),
			Prompt:  filepath.Join("prompts", "post_processing.txt"),
		},
		Pipeline: PipelineConfig{
			Project:                  DefaultProject,
			TranscriptionBudgetBytes: 24 << 20,
			MinSegmentBytes:          10 << 10,
			MaxChunkChars:            80000,
		},
		Transcriber: TranscriberConfig{
			Provider: "openai",
			Model:    "whisper-1",
		},
		Generator: GeneratorConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			Temperature: 0.1,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join("data", "media2text.db"),
		},
		Archive: ArchiveConfig{
			Backend: "fs",
			Minio: MinioConfig{
				Bucket:    "media2text-archive",
				AccessKey: "${MINIO_ACCESS_KEY}",
				SecretKey: "${MINIO_SECRET_KEY}",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, expands ${VAR}
// references and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, errors.NotFound("config file", path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), cfg); err != nil {
			return nil, errors.Kind(errors.ErrInvalidConfig, err, "failed to parse YAML %s", path)
		}
	}
	cfg.expandSecrets()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${VAR} with the environment value. Bare $VAR is left
// alone.
func ExpandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// expandSecrets resolves ${VAR} in defaults that were not overridden.
func (c *Config) expandSecrets() {
	c.Archive.Minio.AccessKey = ExpandEnv(c.Archive.Minio.AccessKey)
	c.Archive.Minio.SecretKey = ExpandEnv(c.Archive.Minio.SecretKey)
	c.Transcriber.HuggingFaceToken = ExpandEnv(c.Transcriber.HuggingFaceToken)
	if c.Transcriber.HuggingFaceToken == "" {
		c.Transcriber.HuggingFaceToken = os.Getenv("HF_TOKEN")
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateArchive, ArchiveConfig{})
	return v
}

func validateArchive(sl validator.StructLevel) {
	a := sl.Current().Interface().(ArchiveConfig)
	if a.Backend != "minio" {
		return
	}
	if a.Minio.Endpoint == "" {
		sl.ReportError(a.Minio.Endpoint, "minio.endpoint", "Endpoint", "required", "")
	}
	if a.Minio.Bucket == "" {
		sl.ReportError(a.Minio.Bucket, "minio.bucket", "Bucket", "required", "")
	}
}

// Validate checks struct tags and reports every invalid field at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Kind(errors.ErrInvalidConfig, err, "validation failed")
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldError := range validationErrs {
		field := strings.TrimPrefix(fieldError.Namespace(), "Config.")
		switch fieldError.Tag() {
		case "required", "required_if":
			problems = append(problems, field+" is required")
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s]", field, fieldError.Param()))
		case "url":
			problems = append(problems, field+" must be a valid URL")
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", field, fieldError.Tag(), fieldError.Param()))
		}
	}
	return errors.Kind(errors.ErrInvalidConfig, nil, "%s", strings.Join(problems, "; "))
}
