package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"agenthub/internal/domain"
)

// Loader reads the static server list and runtime settings from a YAML
// config file. Individually malformed server entries are skipped and
// logged; they never fail the whole load.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("catalog")}
}

// Config is the fully decoded configuration.
type Config struct {
	Servers []domain.ServerSpec
	Runtime RuntimeConfig
	Oracle  OracleConfig
}

// RuntimeConfig holds client-side runtime settings.
type RuntimeConfig struct {
	CallTimeoutSeconds    int
	ConnectTimeoutSeconds int
	ObservabilityAddress  string
}

// OracleConfig configures the text-generation oracle used for intent
// classification and free-text replies.
type OracleConfig struct {
	Provider     string
	Model        string
	APIKey       string
	APIKeyEnvVar string
	BaseURL      string
}

type rawConfig struct {
	Servers          []rawServerSpec `mapstructure:"servers"`
	rawRuntimeConfig `mapstructure:",squash"`
	Oracle           rawOracleConfig `mapstructure:"oracle"`
}

type rawServerSpec struct {
	Name     string `mapstructure:"name"`
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"apiKey"`
}

type rawRuntimeConfig struct {
	CallTimeoutSeconds    int                    `mapstructure:"callTimeoutSeconds"`
	ConnectTimeoutSeconds int                    `mapstructure:"connectTimeoutSeconds"`
	Observability         rawObservabilityConfig `mapstructure:"observability"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

type rawOracleConfig struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"apiKey"`
	APIKeyEnvVar string `mapstructure:"apiKeyEnvVar"`
	BaseURL      string `mapstructure:"baseURL"`
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("callTimeoutSeconds", domain.DefaultCallTimeoutSeconds)
	v.SetDefault("connectTimeoutSeconds", domain.DefaultConnectTimeoutSeconds)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("oracle.provider", "openai")
	v.SetDefault("oracle.model", "gpt-4o-mini")
	v.SetDefault("oracle.apiKeyEnvVar", "OPENAI_API_KEY")
	return v
}

// Load reads, expands, and validates the config file at path.
func (l *Loader) Load(ctx context.Context, path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing := expandConfigEnv(data)
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config",
			zap.String("path", path), zap.Strings("missing", missing))
	}

	cfg, err := l.Parse(expanded)
	if err != nil {
		return Config{}, err
	}
	return cfg, ctx.Err()
}

// Parse decodes an already-expanded YAML document.
func (l *Loader) Parse(document string) (Config, error) {
	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewBufferString(document)); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	runtime, errs := normalizeRuntimeConfig(raw.rawRuntimeConfig)
	if len(errs) > 0 {
		return Config{}, errors.New(strings.Join(errs, "; "))
	}

	specs := make([]domain.ServerSpec, 0, len(raw.Servers))
	seen := make(map[string]struct{})
	for i, entry := range raw.Servers {
		spec := domain.ServerSpec{
			Name:     strings.TrimSpace(entry.Name),
			Endpoint: strings.TrimSpace(entry.Endpoint),
			APIKey:   strings.TrimSpace(entry.APIKey),
		}
		if reason := validateServerSpec(spec); reason != "" {
			l.logger.Warn("skipping malformed server entry",
				zap.Int("index", i), zap.String("server", spec.Name), zap.String("reason", reason))
			continue
		}
		if _, dup := seen[spec.Name]; dup {
			l.logger.Warn("skipping server entry with duplicate name",
				zap.Int("index", i), zap.String("server", spec.Name))
			continue
		}
		seen[spec.Name] = struct{}{}
		specs = append(specs, spec)
	}

	return Config{
		Servers: specs,
		Runtime: runtime,
		Oracle: OracleConfig{
			Provider:     raw.Oracle.Provider,
			Model:        raw.Oracle.Model,
			APIKey:       raw.Oracle.APIKey,
			APIKeyEnvVar: raw.Oracle.APIKeyEnvVar,
			BaseURL:      raw.Oracle.BaseURL,
		},
	}, nil
}

func validateServerSpec(spec domain.ServerSpec) string {
	if spec.Name == "" {
		return "name is required"
	}
	if spec.Endpoint == "" {
		return "endpoint is required"
	}
	parsed, err := url.Parse(spec.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "endpoint is not an absolute URL"
	}
	if spec.APIKey == "" {
		return "apiKey is required"
	}
	return ""
}

func normalizeRuntimeConfig(raw rawRuntimeConfig) (RuntimeConfig, []string) {
	var errs []string
	if raw.CallTimeoutSeconds <= 0 {
		errs = append(errs, "callTimeoutSeconds must be > 0")
	}
	if raw.ConnectTimeoutSeconds <= 0 {
		errs = append(errs, "connectTimeoutSeconds must be > 0")
	}
	return RuntimeConfig{
		CallTimeoutSeconds:    raw.CallTimeoutSeconds,
		ConnectTimeoutSeconds: raw.ConnectTimeoutSeconds,
		ObservabilityAddress:  raw.Observability.ListenAddress,
	}, errs
}

func expandConfigEnv(raw []byte) (string, []string) {
	missing := make(map[string]struct{})
	expanded := os.Expand(string(raw), func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		missing[key] = struct{}{}
		return ""
	})

	if len(missing) == 0 {
		return expanded, nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return expanded, names
}
