package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("hubspot-connect version %s, commit %s, built at %s", version, commit, date)
}

const envPrefix = "HUBSPOT_CONNECT"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	HubSpot HubSpotConfig `mapstructure:"hubspot"`
	Store   StoreConfig   `mapstructure:"store"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

// AuthType represents the type of authentication to use
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
)

// ClientAuth selects how client credentials reach the token endpoint.
type ClientAuth string

const (
	ClientAuthBody  ClientAuth = "body"
	ClientAuthBasic ClientAuth = "basic"
)

type ServerMode string

const (
	ServerModeHTTP  ServerMode = "http"
	ServerModeSTDIO ServerMode = "stdio"
)

type ServerConfig struct {
	Port    int           `mapstructure:"port"`
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"`
	Mode    ServerMode    `mapstructure:"mode"`
	Name    string        `mapstructure:"name"`
	Version string        `mapstructure:"version"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// HubSpotConfig holds the OAuth client registration and API endpoints.
type HubSpotConfig struct {
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	RedirectURI    string        `mapstructure:"redirect_uri"`
	Scopes         []string      `mapstructure:"scopes"`
	AuthURL        string        `mapstructure:"auth_url"`
	TokenURL       string        `mapstructure:"token_url"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	AppBaseURL     string        `mapstructure:"app_base_url"`
	ClientAuth     ClientAuth    `mapstructure:"client_auth"`
	StateTTL       time.Duration `mapstructure:"state_ttl"`
	CredentialsTTL time.Duration `mapstructure:"credentials_ttl"`
	PageSize       int           `mapstructure:"page_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StoreDriver string

const (
	StoreDriverRedis  StoreDriver = "redis"
	StoreDriverMemory StoreDriver = "memory"
)

type StoreConfig struct {
	Driver StoreDriver `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("mode", "", "Server mode (http|stdio)")
	fs.String("config", "", "Path to a config file")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.mode", string(ServerModeHTTP))
	v.SetDefault("server.name", "hubspot-connect")
	v.SetDefault("server.version", version)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", false)
	v.SetDefault("logging.disable_stacktrace", false)
	v.SetDefault("logging.output_path", "")
	v.SetDefault("logging.append_to_file", false)
	v.SetDefault("logging.disable_console", false)

	// Keys without a default are invisible to Unmarshal when only set in the environment
	v.SetDefault("hubspot.client_id", "")
	v.SetDefault("hubspot.client_secret", "")

	v.SetDefault("hubspot.scopes", []string{"crm.objects.contacts.read", "crm.objects.contacts.write"})
	v.SetDefault("hubspot.auth_url", "https://app.hubspot.com/oauth/authorize")
	v.SetDefault("hubspot.token_url", "https://api.hubapi.com/oauth/v1/token")
	v.SetDefault("hubspot.api_base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot.app_base_url", "https://app.hubspot.com")
	v.SetDefault("hubspot.redirect_uri", "http://localhost:8000/integrations/hubspot/oauth2callback")
	v.SetDefault("hubspot.client_auth", string(ClientAuthBody))
	v.SetDefault("hubspot.state_ttl", 600*time.Second)
	v.SetDefault("hubspot.credentials_ttl", 600*time.Second)
	v.SetDefault("hubspot.page_size", 100)
	v.SetDefault("hubspot.request_timeout", 30*time.Second)

	v.SetDefault("store.driver", string(StoreDriverRedis))
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)

	v.SetDefault("cors.allow_origins", []string{})
}

// Load reads configuration from config files, environment and flags.
// A missing config file is not an error; everything has a default or an env override.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, err
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hubspot-connect")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	//Loading additionals config files
	if _, err := os.Stat("/config/config.yaml"); err == nil {
		v.SetConfigFile("/config/config.yaml")
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merge /config/config.yaml: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Scopes from the environment arrive as one space separated string
	if raw := v.GetString("hubspot.scopes"); len(config.HubSpot.Scopes) == 1 && strings.Contains(raw, " ") {
		config.HubSpot.Scopes = strings.Fields(raw)
	}

	if mode := v.GetString("mode"); mode != "" {
		switch ServerMode(mode) {
		case ServerModeHTTP, ServerModeSTDIO:
			config.Server.Mode = ServerMode(mode)
		default:
			return nil, fmt.Errorf("unsupported server mode: %s", mode)
		}
	}

	return &config, nil
}

// Validate checks the settings the OAuth handshake cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.HubSpot.ClientID == "" {
		missing = append(missing, "hubspot.client_id")
	}
	if c.HubSpot.ClientSecret == "" {
		missing = append(missing, "hubspot.client_secret")
	}
	if c.HubSpot.RedirectURI == "" {
		missing = append(missing, "hubspot.redirect_uri")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings %s, set them in config.yaml or as %s_* environment variables",
			strings.Join(missing, ", "), envPrefix)
	}

	switch c.HubSpot.ClientAuth {
	case ClientAuthBody, ClientAuthBasic:
	default:
		return fmt.Errorf("unsupported hubspot.client_auth: %q", c.HubSpot.ClientAuth)
	}

	switch c.Store.Driver {
	case StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported store.driver: %q", c.Store.Driver)
	}
	return nil
}
