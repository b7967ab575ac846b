package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quiz-save/internal/domain"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Client    ClientConfig
	Logger    LoggerConfig
	Page      PageConfig
	Feedback  FeedbackConfig
	Questions []QuestionConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StaticDir    string
	OpenBrowser  bool
}

// ClientConfig configures the outbound save call. A zero Timeout means the
// call is only bounded by its context.
type ClientConfig struct {
	BaseURL  string
	Endpoint string
	Timeout  time.Duration
}

type LoggerConfig struct {
	Env   string
	Level string
}

type PageConfig struct {
	AnchorID string
}

type FeedbackConfig struct {
	Message string
}

type QuestionConfig struct {
	Key     string         `mapstructure:"key"`
	Options []OptionConfig `mapstructure:"options"`
}

type OptionConfig struct {
	Code      string `mapstructure:"code"`
	ElementID string `mapstructure:"element_id"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 20)
	v.SetDefault("server.write_timeout", 20)
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.open_browser", false)
	v.SetDefault("client.base_url", "http://127.0.0.1:3000")
	v.SetDefault("client.endpoint", "/save")
	v.SetDefault("client.timeout", 0)
	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("page.anchor_id", "save_button")
	v.SetDefault("feedback.message", "Saved!")
}

// LoadConfig reads config.yaml from the usual search paths. A missing file is
// not an error; defaults reproduce the stock answer page.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	return load(v, true)
}

// LoadConfigFile reads the configuration from an explicit path.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, false)
}

func load(v *viper.Viper, optional bool) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !optional || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	readTimeout, err := durationSetting(v, "server.read_timeout")
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationSetting(v, "server.write_timeout")
	if err != nil {
		return nil, err
	}
	clientTimeout, err := durationSetting(v, "client.timeout")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			StaticDir:    v.GetString("server.static_dir"),
			OpenBrowser:  v.GetBool("server.open_browser"),
		},
		Client: ClientConfig{
			BaseURL:  v.GetString("client.base_url"),
			Endpoint: v.GetString("client.endpoint"),
			Timeout:  clientTimeout,
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		Page: PageConfig{
			AnchorID: v.GetString("page.anchor_id"),
		},
		Feedback: FeedbackConfig{
			Message: v.GetString("feedback.message"),
		},
	}

	if err := v.UnmarshalKey("questions", &config.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	// Override with environment variables if set
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &config.Server.Port); err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
	}
	if open := os.Getenv("OPEN_BROWSER"); open != "" {
		b, err := strconv.ParseBool(open)
		if err != nil {
			return nil, fmt.Errorf("invalid OPEN_BROWSER %q: %w", open, err)
		}
		config.Server.OpenBrowser = b
	}
	if baseURL := os.Getenv("SAVE_BASE_URL"); baseURL != "" {
		config.Client.BaseURL = baseURL
	}
	if env := os.Getenv("ENV"); env != "" {
		config.Logger.Env = env
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}

	return config, nil
}

// durationSetting reads a bare number as seconds and anything else as a Go
// duration string such as "5s" or "1m30s".
func durationSetting(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return d, nil
}

// QuestionSet converts the configured questions into the domain type,
// falling back to the stock two-question page when none are configured.
func (c *Config) QuestionSet() (domain.QuestionSet, error) {
	if len(c.Questions) == 0 {
		return domain.DefaultQuestionSet(), nil
	}

	qs := make(domain.QuestionSet, 0, len(c.Questions))
	for _, q := range c.Questions {
		question := domain.Question{Key: q.Key, Options: make([]domain.Option, 0, len(q.Options))}
		for _, o := range q.Options {
			question.Options = append(question.Options, domain.Option{
				Code:      domain.OptionCode(o.Code),
				ElementID: o.ElementID,
			})
		}
		qs = append(qs, question)
	}
	if err := qs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question configuration: %w", err)
	}
	return qs, nil
}

// SaveURL joins the client base URL and endpoint.
func (c *Config) SaveURL() string {
	return strings.TrimRight(c.Client.BaseURL, "/") + "/" + strings.TrimLeft(c.Client.Endpoint, "/")
}
