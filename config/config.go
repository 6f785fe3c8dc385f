package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const DefaultInstruction = "You are an assistant that reads construction documents. Answer the question below using the information provided."

// ErrMissingAPIKey is fatal: the service refuses to start without a model credential.
var ErrMissingAPIKey = errors.New("missing API key for model provider")

type Config struct {
	Port         string        `mapstructure:"port"`
	Provider     string        `mapstructure:"provider"`
	AIEndpoint   string        `mapstructure:"ai_endpoint"`
	Model        string        `mapstructure:"model"`
	OpenAIAPIKey string        `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string        `mapstructure:"GEMINI_API_KEY"`
	ScratchDir   string        `mapstructure:"scratch_dir"`
	MaxUpload    int64         `mapstructure:"max_upload_bytes"`
	Log          LogConfig     `mapstructure:"log"`
	Archive      ArchiveConfig `mapstructure:"archive"`
	Extract      ExtractConfig `mapstructure:"extract"`
	Cache        CacheConfig   `mapstructure:"cache"`
	QA           QAConfig      `mapstructure:"qa"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ArchiveConfig struct {
	MaxEntries           int   `mapstructure:"max_entries"`
	MaxUncompressedBytes int64 `mapstructure:"max_uncompressed_bytes"`
}

type ExtractConfig struct {
	Extensions   []string `mapstructure:"extensions"`
	PreviewChars int      `mapstructure:"preview_chars"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type QAConfig struct {
	MaxContextChars int           `mapstructure:"max_context_chars"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Temperature     float32       `mapstructure:"temperature"`
	Instruction     string        `mapstructure:"instruction"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("ai_endpoint", "")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("scratch_dir", os.TempDir())
	v.SetDefault("max_upload_bytes", 64<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("archive.max_entries", 10000)
	v.SetDefault("archive.max_uncompressed_bytes", 512<<20)
	v.SetDefault("extract.extensions", []string{".pdf"})
	v.SetDefault("extract.preview_chars", 500)
	v.SetDefault("cache.size", 128)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("qa.max_context_chars", 5000)
	v.SetDefault("qa.timeout", 60*time.Second)
	v.SetDefault("qa.temperature", 0.3)
	v.SetDefault("qa.instruction", DefaultInstruction)
}

// LoadConfig reads the YAML file at configPath (optional) and overlays
// environment variables. Credentials are only ever read from the environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.OpenAIAPIKey = v.GetString("OPENAI_API_KEY")
	config.GeminiAPIKey = v.GetString("GEMINI_API_KEY")
	config.Extract.Extensions = normalizeExtensions(config.Extract.Extensions)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("%w %q: set %s", ErrMissingAPIKey, c.Provider, c.APIKeyEnv())
	}
	if len(c.Extract.Extensions) == 0 {
		return errors.New("extract.extensions must list at least one extension")
	}
	if c.QA.Timeout <= 0 {
		return errors.New("qa.timeout must be positive")
	}
	return nil
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) APIKeyEnv() string {
	if c.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
