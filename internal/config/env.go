package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"media2text/internal/app/errors"
)

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI         string
	Gemini         string
	HuggingFace    string
	MinioAccessKey string
	MinioSecretKey string
}

// DefaultEnvFiles are tried in order; the first one found is loaded.
var DefaultEnvFiles = []string{".env", ".env.local", "../.env", "../../.env"}

// LoadEnv loads the first existing file of paths into the process
// environment and returns its path. A missing file is not an error since
// variables may be set system-wide. Variables already set win.
func LoadEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = DefaultEnvFiles
	}
	for _, envPath := range paths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", errors.Wrapf(err, "error loading %s file", envPath)
		}
		return envPath, nil
	}
	return "", nil
}

// GetAPIKeys reads API keys from the environment and checks their format.
// Empty keys are allowed here; RequireAPIKey enforces presence.
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI:         strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		HuggingFace:    strings.TrimSpace(os.Getenv("HF_TOKEN")),
		MinioAccessKey: strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
		MinioSecretKey: strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
	}

	checks := []struct {
		name, value string
	}{
		{"OpenAI", apiKeys.OpenAI},
		{"Gemini", apiKeys.Gemini},
		{"HuggingFace", apiKeys.HuggingFace},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if err := ValidateAPIKey(c.value, c.name); err != nil {
			return nil, err
		}
	}
	return apiKeys, nil
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return errors.Kind(errors.ErrMissingAPIKey, nil, "%s", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return errors.Kind(errors.ErrInvalidAPIKey, nil, "OPENAI_API_KEY must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return errors.Kind(errors.ErrInvalidAPIKey, nil, "OPENAI_API_KEY too short")
		}
	case "Gemini":
		if !strings.HasPrefix(apiKey, "AIza") {
			return errors.Kind(errors.ErrInvalidAPIKey, nil, "GEMINI_API_KEY must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return errors.Kind(errors.ErrInvalidAPIKey, nil, "GEMINI_API_KEY too short")
		}
	case "HuggingFace":
		if !strings.HasPrefix(apiKey, "hf_") {
			return errors.Kind(errors.ErrInvalidAPIKey, nil, "HF_TOKEN must start with 'hf_'")
		}
	}
	return nil
}

// Available lists the providers that have a key configured.
func (k *APIKeys) Available() []string {
	var names []string
	if k.OpenAI != "" {
		names = append(names, "OpenAI")
	}
	if k.Gemini != "" {
		names = append(names, "Gemini")
	}
	if k.HuggingFace != "" {
		names = append(names, "HuggingFace")
	}
	if k.MinioAccessKey != "" && k.MinioSecretKey != "" {
		names = append(names, "MinIO")
	}
	return names
}

// RequireAPIKey fails fast when the key a provider needs is missing.
func (k *APIKeys) RequireAPIKey(provider string) error {
	var value, env string
	switch provider {
	case "openai":
		value, env = k.OpenAI, "OPENAI_API_KEY"
	case "gemini":
		value, env = k.Gemini, "GEMINI_API_KEY"
	case "whisperx":
		value, env = k.HuggingFace, "HF_TOKEN"
	default:
		return errors.Kind(errors.ErrInvalidConfig, nil, "unknown provider %q", provider)
	}
	if value == "" {
		return errors.Kind(errors.ErrMissingAPIKey, nil, "%s requires %s in the environment or .env file", provider, env)
	}
	return nil
}
