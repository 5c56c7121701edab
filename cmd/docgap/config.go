package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/oss"
	"github.com/spf13/viper"
)

// Config is the file and environment configuration of docgap.
type Config struct {
	Store   StoreConfig           `mapstructure:"store"`
	LLM     LLMConfig             `mapstructure:"llm"`
	Fetch   FetchConfig           `mapstructure:"fetch"`
	Jobs    JobsConfig            `mapstructure:"jobs"`
	Server  ServerConfig          `mapstructure:"server"`
	Domains []docgap.DomainConfig `mapstructure:"domains"`
}

// StoreConfig selects and configures the object store backend.
type StoreConfig struct {
	Backend    string      `mapstructure:"backend"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Dir        string      `mapstructure:"dir"`
	Redis      RedisConfig `mapstructure:"redis"`
	OSS        oss.Config  `mapstructure:"oss"`
}

// RedisConfig locates the Redis server. A zero TTL keeps keys until they
// are cleared.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider       string  `mapstructure:"provider"`
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
}

// FetchConfig controls how documentation pages are fetched and read.
type FetchConfig struct {
	Renderer          string        `mapstructure:"renderer"`
	Extractor         string        `mapstructure:"extractor"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// JobsConfig points health jobs at a remote service. An empty URL runs
// them in-process.
type JobsConfig struct {
	URL              string `mapstructure:"url"`
	ProbeConcurrency int    `mapstructure:"probe_concurrency"`
}

// ServerConfig configures "docgap serve".
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Backends, providers, renderers and extractors accepted in configuration.
var (
	storeBackends  = []string{"sqlite", "fs", "redis", "oss"}
	llmProviders   = []string{"gemini", "openai"}
	fetchRenderers = []string{"http", "rod"}
	extractors     = []string{"goquery", "regexp", "trafilatura", "readability"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite_path", defaultDataPath("docgap.db"))
	v.SetDefault("store.dir", defaultDataPath("cache"))
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "docgap:")
	v.SetDefault("store.redis.ttl", time.Duration(0))
	v.SetDefault("store.oss.endpoint", "")
	v.SetDefault("store.oss.access_key_id", "")
	v.SetDefault("store.oss.access_key_secret", "")
	v.SetDefault("store.oss.bucket", "")
	v.SetDefault("store.oss.prefix", "docgap/")
	v.SetDefault("store.oss.disable_ssl", false)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.embedding_model", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 4096)

	v.SetDefault("fetch.renderer", "http")
	v.SetDefault("fetch.extractor", "goquery")
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.requests_per_second", 10.0)

	v.SetDefault("jobs.url", "")
	v.SetDefault("jobs.probe_concurrency", 10)

	v.SetDefault("server.addr", ":8080")
}

// LoadConfig reads configuration from path, or from docgap.yaml in the
// working directory or ~/.docgap when path is empty. DOCGAP_ environment
// variables override file values, e.g. DOCGAP_STORE_BACKEND=redis.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DOCGAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docgap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".docgap"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerAPIKey(cfg.LLM.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an EINVALID error for unsupported settings.
func (c *Config) Validate() error {
	if !slices.Contains(storeBackends, c.Store.Backend) {
		return docgap.Errorf(docgap.EINVALID, "unknown store backend %q (want one of %s)", c.Store.Backend, strings.Join(storeBackends, ", "))
	}
	if !slices.Contains(llmProviders, c.LLM.Provider) {
		return docgap.Errorf(docgap.EINVALID, "unknown llm provider %q (want one of %s)", c.LLM.Provider, strings.Join(llmProviders, ", "))
	}
	if !slices.Contains(fetchRenderers, c.Fetch.Renderer) {
		return docgap.Errorf(docgap.EINVALID, "unknown fetch renderer %q (want one of %s)", c.Fetch.Renderer, strings.Join(fetchRenderers, ", "))
	}
	if !slices.Contains(extractors, c.Fetch.Extractor) {
		return docgap.Errorf(docgap.EINVALID, "unknown extractor %q (want one of %s)", c.Fetch.Extractor, strings.Join(extractors, ", "))
	}
	for _, d := range c.Domains {
		if d.Domain == "" || d.SitemapURL == "" {
			return docgap.Errorf(docgap.EINVALID, "domain overrides need domain and sitemap_url")
		}
	}
	return nil
}

// RegisterDomains merges the configured domain overrides into the domain
// table.
func (c *Config) RegisterDomains() {
	for _, d := range c.Domains {
		docgap.RegisterDomain(d)
	}
}

// providerAPIKey reads the provider's conventional API key variable.
func providerAPIKey(provider string) string {
	switch provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".docgap", name)
}
