package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"SignalPull/pkg/util"
)

// ProviderConfig describes one market-data provider. Enabled is derived from
// credential presence at load time; the struct is read-only afterwards.
type ProviderConfig struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Priority    int    `yaml:"priority"` // lower = tried first
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	RateLimit   int    `yaml:"rate_limit"` // requests/minute, informational
	Enabled     bool   `yaml:"-"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Providers []ProviderConfig `yaml:"providers"`
	Market    struct {
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		ProviderTimeout time.Duration `yaml:"provider_timeout"`
	} `yaml:"market"`
	Signals struct {
		CacheTTL      time.Duration `yaml:"cache_ttl"`
		PredictionTTL time.Duration `yaml:"prediction_ttl"`
		Stream        struct {
			Interval   time.Duration `yaml:"interval"`
			MaxSymbols int           `yaml:"max_symbols"`
			Symbols    []string      `yaml:"symbols"`
		} `yaml:"stream"`
	} `yaml:"signals"`
	Analysis struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"analysis"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		SignalsTopic string   `yaml:"signals_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Predictions struct {
			Topic      string        `yaml:"topic"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"predictions"`
	} `yaml:"kafka"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled"`
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	c.deriveProviderState()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Provider API keys come from <NAME>_API_KEY (e.g. FINNHUB_API_KEY).
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	for i := range c.Providers {
		env := strings.ToUpper(c.Providers[i].Name) + "_API_KEY"
		if v := os.Getenv(env); v != "" {
			c.Providers[i].APIKey = v
		}
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("STREAM_SYMBOLS"); v != "" {
		c.Signals.Stream.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("ANALYSIS_SERVICE_URL"); v != "" {
		c.Analysis.ServiceURL = v
	}

	c.applyDefaults()
	c.deriveProviderState()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Market.CacheTTL <= 0 {
		c.Market.CacheTTL = 2 * time.Minute
	}
	if c.Market.ProviderTimeout <= 0 {
		c.Market.ProviderTimeout = 10 * time.Second
	}
	if c.Signals.CacheTTL <= 0 {
		c.Signals.CacheTTL = 5 * time.Minute
	}
	if c.Signals.PredictionTTL <= 0 {
		c.Signals.PredictionTTL = 15 * time.Minute
	}
	if c.Signals.Stream.Interval <= 0 {
		c.Signals.Stream.Interval = 60 * time.Second
	}
	if c.Signals.Stream.MaxSymbols <= 0 {
		c.Signals.Stream.MaxSymbols = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// deriveProviderState marks providers enabled when a credential is present and
// keeps the list sorted by ascending priority.
func (c *Config) deriveProviderState() {
	for i := range c.Providers {
		c.Providers[i].Enabled = c.Providers[i].APIKey != ""
		if c.Providers[i].DisplayName == "" {
			c.Providers[i].DisplayName = c.Providers[i].Name
		}
	}
	sort.SliceStable(c.Providers, func(i, j int) bool {
		return c.Providers[i].Priority < c.Providers[j].Priority
	})
}

// EnabledProviders returns the providers with a credential, in priority order.
func (c *Config) EnabledProviders() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("providers cannot be empty")
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider '%s'", p.Name)
		}
		seen[p.Name] = true
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.SignalsTopic == "" {
			return fmt.Errorf("kafka.signals_topic is required when kafka is enabled")
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	return nil
}
