package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DataDir     string        `mapstructure:"data_dir"`
	DBFile      string        `mapstructure:"db_file"`
	LogLevel    string        `mapstructure:"log_level"`
	PrettyLog   bool          `mapstructure:"pretty_log"`
	ClearScreen bool          `mapstructure:"clear_screen"`
	GitHub      GitHubConfig  `mapstructure:"github"`
	LLM         LLMConfig     `mapstructure:"llm"`
	Scraper     ScraperConfig `mapstructure:"scraper"`
}

type GitHubConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	PerPage int           `mapstructure:"per_page"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
}

type ScraperConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load resolves configuration from defaults, ~/.barky/config.yaml, a .env
// file in the working directory and BARKY_* environment variables.
// A non-empty dataDir (usually the --data-dir flag) wins over all of them.
func Load(dataDir string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".barky")

	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("db_file", "bookmarks.db")
	v.SetDefault("log_level", "warn")
	v.SetDefault("pretty_log", true)
	v.SetDefault("clear_screen", true)
	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.timeout", 30*time.Second)
	v.SetDefault("github.per_page", 0)
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	v.SetDefault("scraper.enabled", true)
	v.SetDefault("scraper.base_url", "https://r.jina.ai/")
	v.SetDefault("scraper.timeout", 30*time.Second)

	v.SetEnvPrefix("BARKY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about
	for _, key := range []string{"github.token", "llm.base_url", "llm.api_key"} {
		_ = v.BindEnv(key)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultDataDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}
