package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

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
	Scheduler struct {
		PollInterval time.Duration `yaml:"poll_interval"`
		GracePeriod  time.Duration `yaml:"grace_period"`
		Realm        string        `yaml:"realm"`
		QueueSize    int           `yaml:"queue_size"`
	} `yaml:"scheduler"`
	Configs struct {
		Backend string `yaml:"type"` // redis or memory
	} `yaml:"configs"`
	Datapoints struct {
		Backend string `yaml:"type"` // rest or clickhouse
		Cache   struct {
			Enabled bool          `yaml:"enabled"`
			TTL     time.Duration `yaml:"ttl"`
		} `yaml:"cache"`
		REST struct {
			BaseURL           string        `yaml:"base_url"`
			Token             string        `yaml:"token"`
			Timeout           time.Duration `yaml:"timeout"`
			RequestsPerSecond float64       `yaml:"requests_per_second"`
		} `yaml:"rest"`
	} `yaml:"datapoints"`
	Provider struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"provider"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		PoolSize     int           `yaml:"pool_size"`
		MinIdleConns int           `yaml:"min_idle_conns"`
		PoolTimeout  time.Duration `yaml:"pool_timeout"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
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

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("DATAPOINTS_BACKEND"); v != "" {
		c.Datapoints.Backend = v
	}
	if v := os.Getenv("DATAPOINTS_API_TOKEN"); v != "" {
		c.Datapoints.REST.Token = v
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Provider.ServiceURL = v
	}
	if v := os.Getenv("SCHEDULER_REALM"); v != "" {
		c.Scheduler.Realm = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Datapoints.Backend == "" {
		return fmt.Errorf("datapoints.type is required")
	}
	if c.Datapoints.Backend != "rest" && c.Datapoints.Backend != "clickhouse" {
		return fmt.Errorf("datapoints.type must be 'rest' or 'clickhouse', got '%s'", c.Datapoints.Backend)
	}
	if c.Datapoints.Backend == "rest" && c.Datapoints.REST.BaseURL == "" {
		return fmt.Errorf("datapoints.rest.base_url is required")
	}
	if c.Configs.Backend != "" && c.Configs.Backend != "redis" && c.Configs.Backend != "memory" {
		return fmt.Errorf("configs.type must be 'redis' or 'memory', got '%s'", c.Configs.Backend)
	}
	if c.Provider.ServiceURL == "" {
		return fmt.Errorf("provider.service_url is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
