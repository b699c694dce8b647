package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Redis     RedisConfig
	DB        DBConfig
	Session   SessionConfig
	CacheTTLs CacheTTLConfig

	// resolvedLLM is LLM as of the last ResolveProvider call.
	resolvedLLM *LLMConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string
	Level string
}

// LLMConfig selects the text-generation provider used by every study flow.
type LLMConfig struct {
	Provider        string // ollama | openai | gemini
	Model           string
	ServerURL       string
	APIKey          string
	Timeout         time.Duration
	Temperature     float64
	MaxContextChars int
}

type EmbeddingConfig struct {
	Source    string // ollama | openai | none
	Model     string
	ServerURL string
	APIKey    string
	TopK      int
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DBConfig is optional. Quiz attempt history is disabled when Host is empty.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type SessionConfig struct {
	TTL time.Duration
}

type CacheTTLConfig struct {
	FlowResult string
	Embedding  string
}

func setDefaults() {
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 120)
	viper.SetDefault("server.write_timeout", 120)
	viper.SetDefault("server.body_limit_mb", 50)

	viper.SetDefault("logger.env", "development")
	viper.SetDefault("logger.level", "info")

	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.timeout", 60)
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_context_chars", 60000)

	viper.SetDefault("embedding.source", "none")
	viper.SetDefault("embedding.top_k", 8)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("session.ttl", "2h")
	viper.SetDefault("cache_ttls.flow_result", "24h")
	viper.SetDefault("cache_ttls.embedding", "168h")
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  time.Duration(viper.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(viper.GetInt("server.write_timeout")) * time.Second,
			BodyLimit:    viper.GetInt("server.body_limit_mb") * 1024 * 1024,
		},
		Logger: LoggerConfig{
			Env:   viper.GetString("logger.env"),
			Level: viper.GetString("logger.level"),
		},
		LLM: LLMConfig{
			Provider:        viper.GetString("llm.provider"),
			Model:           viper.GetString("llm.model"),
			ServerURL:       viper.GetString("llm.server"),
			APIKey:          viper.GetString("llm.api_key"),
			Timeout:         time.Duration(viper.GetInt("llm.timeout")) * time.Second,
			Temperature:     viper.GetFloat64("llm.temperature"),
			MaxContextChars: viper.GetInt("llm.max_context_chars"),
		},
		Embedding: EmbeddingConfig{
			Source:    viper.GetString("embedding.source"),
			Model:     viper.GetString("embedding.model"),
			ServerURL: viper.GetString("embedding.server"),
			APIKey:    viper.GetString("embedding.api_key"),
			TopK:      viper.GetInt("embedding.top_k"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Session: SessionConfig{
			TTL: viper.GetDuration("session.ttl"),
		},
		CacheTTLs: CacheTTLConfig{
			FlowResult: viper.GetString("cache_ttls.flow_result"),
			Embedding:  viper.GetString("cache_ttls.embedding"),
		},
	}

	applyEnvOverrides(config)
	config.ResolveProvider()

	return config, nil
}

// ResolveProvider settles the settings that depend on LLM.Provider. When the
// provider changed since the last call, the server, model and key that were
// set for the previous provider are dropped. An empty key then falls back to
// the provider's own environment variable.
func (c *Config) ResolveProvider() {
	if prev := c.resolvedLLM; prev != nil && prev.Provider != c.LLM.Provider {
		if c.LLM.ServerURL == prev.ServerURL {
			c.LLM.ServerURL = ""
		}
		if c.LLM.Model == prev.Model {
			c.LLM.Model = ""
		}
		if c.LLM.APIKey == prev.APIKey {
			c.LLM.APIKey = ""
		}
	}

	// Provider specific keys, in the names the SDKs document.
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			c.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	}

	resolved := c.LLM
	c.resolvedLLM = &resolved
}

// applyEnvOverrides maps the flat environment variable names used by
// docker-compose onto the nested config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if env := os.Getenv("ENV"); env != "" {
		config.Logger.Env = env
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if llmServer := os.Getenv("LLM_SERVER"); llmServer != "" {
		config.LLM.ServerURL = llmServer
	}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if source := os.Getenv("EMBEDDING_SOURCE"); source != "" {
		config.Embedding.Source = source
	}
	if config.Embedding.APIKey == "" && config.Embedding.Source == "openai" {
		config.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
}

// HistoryEnabled reports whether a database is configured for quiz attempts.
func (c *Config) HistoryEnabled() bool {
	return c.DB.Host != ""
}

func (c *Config) GetDSN() string {
	// Oracle DSN format: user/password@host:port/service
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}

// ParseTTLStringOrDefault parses a duration string, falling back to defaultTTL
// when the value is empty or malformed.
func (c *Config) ParseTTLStringOrDefault(ttlString string, defaultTTL time.Duration) time.Duration {
	if ttlString == "" {
		return defaultTTL
	}
	d, err := time.ParseDuration(ttlString)
	if err != nil || d <= 0 {
		return defaultTTL
	}
	return d
}
