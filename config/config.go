package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

const (
	JudgeProviderGemini    = "gemini"
	JudgeProviderAnthropic = "anthropic"

	DefaultGeminiJudgeModel    = "gemini-2.0-flash-lite"
	DefaultAnthropicJudgeModel = "claude-3-5-haiku-latest"

	// headroom left in a request for everything but synthesis and validation
	requestOverhead = 5 * time.Second
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
		Audience  string `mapstructure:"audience"`
	} `mapstructure:"auth"`
	Catalog struct {
		TTL            time.Duration `mapstructure:"ttl"`
		CityTTL        time.Duration `mapstructure:"cityTTL"`
		CandidateLimit int           `mapstructure:"candidateLimit"`
		PlanTTL        time.Duration `mapstructure:"planTTL"`
	} `mapstructure:"catalog"`
	LLM struct {
		Models      []string      `mapstructure:"models"`
		Timeout     time.Duration `mapstructure:"timeout"`
		Temperature float32       `mapstructure:"temperature"`
	} `mapstructure:"llm"`
	Embedding struct {
		Model    string        `mapstructure:"model"`
		Timeout  time.Duration `mapstructure:"timeout"`
		MaxChars int           `mapstructure:"maxChars"`
	} `mapstructure:"embedding"`
	Judge struct {
		Provider string        `mapstructure:"provider"`
		Model    string        `mapstructure:"model"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"judge"`
	Routing struct {
		BaseURL       string        `mapstructure:"baseURL"`
		Mode          string        `mapstructure:"mode"`
		Timeout       time.Duration `mapstructure:"timeout"`
		RatePerSecond float64       `mapstructure:"ratePerSecond"`
	} `mapstructure:"routing"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// PLANNER_LLM_TIMEOUT overrides llm.timeout, etc.
	v.SetEnvPrefix("planner")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	config.applyDefaults()
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// applyDefaults fills zero values left by partial config files.
func (c *Config) applyDefaults() {
	if c.Catalog.TTL <= 0 {
		c.Catalog.TTL = 10 * time.Minute
	}
	if c.Catalog.CityTTL <= 0 {
		c.Catalog.CityTTL = 24 * time.Hour
	}
	if c.Catalog.CandidateLimit <= 0 {
		c.Catalog.CandidateLimit = 25
	}
	if c.Catalog.PlanTTL <= 0 {
		c.Catalog.PlanTTL = time.Hour
	}
	if len(c.LLM.Models) == 0 {
		c.LLM.Models = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-2.0-flash-lite"}
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 25 * time.Second
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "gemini-embedding-001"
	}
	if c.Embedding.Timeout <= 0 {
		c.Embedding.Timeout = 8 * time.Second
	}
	if c.Embedding.MaxChars <= 0 {
		c.Embedding.MaxChars = 1000
	}
	if c.Judge.Provider == "" {
		c.Judge.Provider = JudgeProviderGemini
	}
	if c.Judge.Model == "" {
		c.Judge.Model = DefaultGeminiJudgeModel
		if c.Judge.Provider == JudgeProviderAnthropic {
			c.Judge.Model = DefaultAnthropicJudgeModel
		}
	}
	if c.Judge.Timeout <= 0 {
		c.Judge.Timeout = 6 * time.Second
	}
	if c.Routing.Mode == "" {
		c.Routing.Mode = "foot"
	}
	if c.Routing.Timeout <= 0 {
		c.Routing.Timeout = 10 * time.Second
	}
	if c.Routing.RatePerSecond <= 0 {
		c.Routing.RatePerSecond = 1
	}
	c.fitSynthesisBudget()
}

// fitSynthesisBudget shrinks llm.timeout so that every model in the priority
// list, followed by validation, can run inside one server request timeout.
func (c *Config) fitSynthesisBudget() {
	if c.Server.Timeout <= 0 || len(c.LLM.Models) == 0 {
		return
	}
	validation := max(c.Embedding.Timeout, c.Judge.Timeout)
	perAttempt := (c.Server.Timeout - validation - requestOverhead) / time.Duration(len(c.LLM.Models))
	if perAttempt > 0 && c.LLM.Timeout > perAttempt {
		fmt.Printf("Warning: llm.timeout %s lowered to %s to fit %d models in server.HTTPTimeout %s\n",
			c.LLM.Timeout, perAttempt, len(c.LLM.Models), c.Server.Timeout)
		c.LLM.Timeout = perAttempt
	}
}
