package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ExchangeKuCoin = "kucoin"

	ProviderOpenAI = "OPENAI"
	ProviderClaude = "CLAUDE"
	ProviderNoop   = "NOOP"

	DefaultPrompt = "Seek common price action patterns such as triangles, wedges, breakthroughs, " +
		"Double Bottoms, Double Tops, or ..."
)

// SupportedTimeframes lists every timeframe the market data source can serve.
var SupportedTimeframes = []string{"1m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "8h", "12h", "1d", "1w"}

type Config struct {
	Exchange      string   `yaml:"exchange"`
	Symbols       []string `yaml:"symbols"`
	Timeframes    []string `yaml:"timeframes"`
	DefaultLimit  int      `yaml:"default_limit"`
	DefaultPrompt string   `yaml:"default_prompt"`
	Chart         struct {
		Path          string `yaml:"path"`
		Width         int    `yaml:"width"`
		Height        int    `yaml:"height"`
		DisplayWidth  int    `yaml:"display_width"`
		DisplayHeight int    `yaml:"display_height"`
		SMAWindows    []int  `yaml:"sma_windows"`
	} `yaml:"chart"`
	Market struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"market"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		Label          string  `yaml:"label"`
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		APIKeyEnv      string  `yaml:"api_key_env"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		ImageDetail    string  `yaml:"image_detail"`
	} `yaml:"llm"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Exchange == "" {
		c.Exchange = ExchangeKuCoin
	}
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"BTC/USDT", "ETH/USDT", "XRP/USDT", "LTC/USDT", "NOT/USDT", "SOL/USDT", "DOGE/USDT"}
	}
	if len(c.Timeframes) == 0 {
		c.Timeframes = []string{"1h", "4h", "1d", "1w"}
	}
	if c.DefaultLimit == 0 {
		c.DefaultLimit = 100
	}
	if c.DefaultPrompt == "" {
		c.DefaultPrompt = DefaultPrompt
	}
	if c.Chart.Path == "" {
		c.Chart.Path = "chart.png"
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1200
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 700
	}
	if c.Chart.DisplayWidth == 0 {
		c.Chart.DisplayWidth = 500
	}
	if c.Chart.DisplayHeight == 0 {
		c.Chart.DisplayHeight = 300
	}
	if c.Chart.SMAWindows == nil {
		c.Chart.SMAWindows = []int{20, 50}
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = "https://api.kucoin.com"
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 30
	}
	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	switch c.LLM.Provider {
	case ProviderClaude:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "https://api.anthropic.com/v1"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "claude-3-5-sonnet-latest"
		}
		if c.LLM.MaxTokens == 0 {
			// The messages API requires max_tokens
			c.LLM.MaxTokens = 1024
		}
		if c.LLM.Label == "" {
			c.LLM.Label = "Claude"
		}
	case ProviderNoop:
		if c.LLM.Label == "" {
			c.LLM.Label = "offline"
		}
	default:
		if c.LLM.Label == "" {
			c.LLM.Label = "AvalAI"
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "https://api.avalai.ir/v1"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-4o"
		}
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "API_KEY"
	}
	if c.LLM.ImageDetail == "" {
		c.LLM.ImageDetail = "auto"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("CHART_PATH"); v != "" {
		c.Chart.Path = v
	}
}

func (c *Config) Validate() error {
	if c.Exchange != ExchangeKuCoin {
		return fmt.Errorf("invalid exchange '%s': only '%s' is supported", c.Exchange, ExchangeKuCoin)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	for _, s := range c.Symbols {
		base, quote, ok := strings.Cut(s, "/")
		if !ok || base == "" || quote == "" {
			return fmt.Errorf("invalid symbol '%s': want BASE/QUOTE", s)
		}
	}
	if len(c.Timeframes) == 0 {
		return errors.New("timeframes cannot be empty")
	}
	for _, tf := range c.Timeframes {
		if !IsSupportedTimeframe(tf) {
			return fmt.Errorf("unsupported timeframe '%s'", tf)
		}
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Chart.DisplayWidth <= 0 || c.Chart.DisplayHeight <= 0 {
		return fmt.Errorf("chart display size must be positive, got %dx%d", c.Chart.DisplayWidth, c.Chart.DisplayHeight)
	}
	for _, w := range c.Chart.SMAWindows {
		if w <= 1 {
			return fmt.Errorf("chart.sma_windows entries must be > 1, got %d", w)
		}
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderNoop:
	default:
		return fmt.Errorf("llm.provider must be one of %s, %s, %s, got '%s'", ProviderOpenAI, ProviderClaude, ProviderNoop, c.LLM.Provider)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds cannot be negative, got %d", c.LLM.TimeoutSeconds)
	}
	switch c.LLM.ImageDetail {
	case "auto", "low", "high":
	default:
		return fmt.Errorf("llm.image_detail must be auto, low or high, got '%s'", c.LLM.ImageDetail)
	}
	return nil
}

// IsSupportedTimeframe reports whether tf is one of SupportedTimeframes.
func IsSupportedTimeframe(tf string) bool {
	for _, s := range SupportedTimeframes {
		if s == tf {
			return true
		}
	}
	return false
}

// APIKey returns the inference credential named by llm.api_key_env.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

// LoadConfig reads path, applies defaults and environment overrides, then validates.
// A missing file is not an error: the defaults describe a working setup.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.applyEnv()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
