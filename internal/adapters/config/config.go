package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/msgdash/internal/adapters/twilio"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".msgdash"
	configFile = "config.toml"
	envPrefix  = "MSGDASH"

	keyVersion           = "version"
	keyAccountSID        = "twilio.account_sid"
	keyAuthToken         = "twilio.auth_token"
	keyBaseURL           = "api.base_url"
	keyPageSize          = "api.page_size"
	keyRequestsPerSecond = "api.requests_per_second"
	keyTimeout           = "api.timeout"
	keyMaxAgeDays        = "fetch.max_age_days"
	keyDefaultDays       = "fetch.default_days"
	keyMaxRecipients     = "filter.max_recipients"
	keyListen            = "server.listen"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Credentials domain.Credentials
	API         APIConfig
	Fetch       FetchConfig
	Filter      FilterConfig
	Server      ServerConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type APIConfig struct {
	BaseURL           string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration
}

type FetchConfig struct {
	MaxAgeDays  int
	DefaultDays int
}

type FilterConfig struct {
	MaxRecipients int
}

type ServerConfig struct {
	Listen string
}

func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:           twilio.DefaultBaseURL,
			PageSize:          twilio.DefaultPageSize,
			RequestsPerSecond: 5,
			Timeout:           60 * time.Second,
		},
		Fetch: FetchConfig{
			MaxAgeDays:  int(domain.MaxQueryAge.Hours() / 24),
			DefaultDays: int(domain.DefaultWindow.Hours() / 24),
		},
		Filter: FilterConfig{MaxRecipients: domain.MaxManualRecipients},
		Server: ServerConfig{Listen: "127.0.0.1:8501"},
	}
}

func (c Config) MaxQueryAge() time.Duration {
	return time.Duration(c.Fetch.MaxAgeDays) * 24 * time.Hour
}

func (c Config) DefaultWindow() time.Duration {
	return time.Duration(c.Fetch.DefaultDays) * 24 * time.Hour
}

// DefaultPath is $HOME/.msgdash/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir, configFile), nil
}

// Load reads the config file, then lets MSGDASH_* variables override it.
// An explicit path must exist; the default location is optional.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, configDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if version := v.GetInt(keyVersion); version > currentSchemaVersion {
		return Config{}, fmt.Errorf("%w: unsupported config schema version %d (current %d)", ErrInvalidConfig, version, currentSchemaVersion)
	}

	cfg := Config{
		Credentials: domain.Credentials{
			AccountSID: strings.TrimSpace(v.GetString(keyAccountSID)),
			AuthToken:  strings.TrimSpace(v.GetString(keyAuthToken)),
		},
		API: APIConfig{
			BaseURL:           strings.TrimSpace(v.GetString(keyBaseURL)),
			PageSize:          v.GetInt(keyPageSize),
			RequestsPerSecond: v.GetFloat64(keyRequestsPerSecond),
			Timeout:           v.GetDuration(keyTimeout),
		},
		Fetch: FetchConfig{
			MaxAgeDays:  v.GetInt(keyMaxAgeDays),
			DefaultDays: v.GetInt(keyDefaultDays),
		},
		Filter: FilterConfig{MaxRecipients: v.GetInt(keyMaxRecipients)},
		Server: ServerConfig{Listen: strings.TrimSpace(v.GetString(keyListen))},
		File:   v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.API.BaseURL == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, keyBaseURL)
	case c.API.PageSize < 1 || c.API.PageSize > twilio.DefaultPageSize:
		return fmt.Errorf("%w: %s must be between 1 and %d", ErrInvalidConfig, keyPageSize, twilio.DefaultPageSize)
	case c.API.RequestsPerSecond < 0:
		return fmt.Errorf("%w: %s cannot be negative", ErrInvalidConfig, keyRequestsPerSecond)
	case c.API.Timeout <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, keyTimeout)
	case c.Fetch.MaxAgeDays < 1:
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidConfig, keyMaxAgeDays)
	case c.Fetch.DefaultDays < 1:
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidConfig, keyDefaultDays)
	case c.Filter.MaxRecipients < 1:
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidConfig, keyMaxRecipients)
	case c.Server.Listen == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, keyListen)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := Defaults()
	v.SetDefault(keyBaseURL, defaults.API.BaseURL)
	v.SetDefault(keyPageSize, defaults.API.PageSize)
	v.SetDefault(keyRequestsPerSecond, defaults.API.RequestsPerSecond)
	v.SetDefault(keyTimeout, defaults.API.Timeout)
	v.SetDefault(keyMaxAgeDays, defaults.Fetch.MaxAgeDays)
	v.SetDefault(keyDefaultDays, defaults.Fetch.DefaultDays)
	v.SetDefault(keyMaxRecipients, defaults.Filter.MaxRecipients)
	v.SetDefault(keyListen, defaults.Server.Listen)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(keyAccountSID, envPrefix+"_TWILIO_ACCOUNT_SID", "TWILIO_ACCOUNT_SID"); err != nil {
		return fmt.Errorf("bind account sid env: %w", err)
	}
	if err := v.BindEnv(keyAuthToken, envPrefix+"_TWILIO_AUTH_TOKEN", "TWILIO_AUTH_TOKEN"); err != nil {
		return fmt.Errorf("bind auth token env: %w", err)
	}

	return nil
}
