package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the process configuration, loaded once at startup and passed
// down explicitly to every component that needs it.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	CRM     CRMConfig     `mapstructure:"crm"`
	App     AppConfig     `mapstructure:"app"`
	QR      QRConfig      `mapstructure:"qr"`
	AskAdam AskAdamConfig `mapstructure:"askadam"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// CRMConfig describes the upstream entity API and its token endpoint.
type CRMConfig struct {
	TenantID     string        `mapstructure:"tenant_id" validate:"required"`
	ClientID     string        `mapstructure:"client_id" validate:"required"`
	ClientSecret string        `mapstructure:"client_secret" validate:"required"`
	Resource     string        `mapstructure:"resource" validate:"required,url"`
	Authority    string        `mapstructure:"authority" validate:"required,url"`
	APIVersion   string        `mapstructure:"api_version" validate:"required"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout" validate:"gt=0"`

	// Navigation properties on the event entity that expand to accounts.
	SponsorsRelationship        string `mapstructure:"sponsors_relationship" validate:"required"`
	PrimarySponsorsRelationship string `mapstructure:"primary_sponsors_relationship" validate:"required"`
}

type AppConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

type QRConfig struct {
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

type AskAdamConfig struct {
	Window            time.Duration `mapstructure:"window" validate:"gt=0"`
	PollInterval      time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	MaxQuestionLength int           `mapstructure:"max_question_length" validate:"gt=0"`
}

// RedisConfig is optional; an empty Addr selects the in-process guard.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TokenURL is the OAuth2 v2 token endpoint for the configured tenant.
func (c CRMConfig) TokenURL() string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(c.Authority, "/"), url.PathEscape(c.TenantID))
}

// Scope is the client-credentials scope covering the whole resource.
func (c CRMConfig) Scope() string {
	return strings.TrimRight(c.Resource, "/") + "/.default"
}

// BaseURL is the root of the OData web API.
func (c CRMConfig) BaseURL() string {
	return fmt.Sprintf("%s/api/data/%s", strings.TrimRight(c.Resource, "/"), c.APIVersion)
}

// legacyEnv maps config keys onto the environment names the portal has
// always been deployed with.
var legacyEnv = map[string]string{
	"crm.tenant_id":     "TENANT_ID",
	"crm.client_id":     "CLIENT_ID",
	"crm.client_secret": "CLIENT_SECRET",
	"crm.resource":      "RESOURCE",
	"app.base_url":      "APP_BASE_URL",
	"server.addr":       "ADDR",
	"redis.addr":        "REDIS_ADDR",
}

// Load reads configs/config.yaml (optional) and the environment, applies
// defaults and validates the result. path overrides the search locations.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
	}

	v.SetEnvPrefix("EVENTPORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, legacy := range legacyEnv {
		prefixed := "EVENTPORTAL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", 60*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.development", false)

	v.SetDefault("crm.tenant_id", "")
	v.SetDefault("crm.client_id", "")
	v.SetDefault("crm.client_secret", "")
	v.SetDefault("crm.resource", "")
	v.SetDefault("crm.authority", "https://login.microsoftonline.com")
	v.SetDefault("crm.api_version", "v9.2")
	v.SetDefault("crm.http_timeout", 30*time.Second)
	v.SetDefault("crm.sponsors_relationship", "wdrgns_wdrgns_event_account_sponsors")
	v.SetDefault("crm.primary_sponsors_relationship", "wdrgns_wdrgns_event_account_primarysponsors")

	v.SetDefault("app.base_url", "")
	v.SetDefault("qr.endpoint", "https://quickchart.io/qr")

	v.SetDefault("askadam.window", 5*time.Minute)
	v.SetDefault("askadam.poll_interval", 10*time.Second)
	v.SetDefault("askadam.max_question_length", 2000)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
