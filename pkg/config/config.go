package config

import (
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
	EnvironmentProduction  = "production"

	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "./config.yaml"
	portENV           = "PORT"
)

type Config struct {
	BodyLimit                 string        `koanf:"body_limit"`
	CORSOrigins               []string      `koanf:"cors_origins"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	DatabaseURL               string        `koanf:"database_url" required:"true"`
	Environment               string        `koanf:"environment"`
	RateLimitMaxRequests      int           `koanf:"rate_limit_max_requests"`
	RateLimitWindow           time.Duration `koanf:"rate_limit_window"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
}

func defaults() *Config {
	return &Config{
		BodyLimit:                 "10M",
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		Environment:               EnvironmentDevelopment,
		RateLimitMaxRequests:      10000,
		RateLimitWindow:           15 * time.Minute,
		ServerHost:                "0.0.0.0",
		ServerPort:                5000,
	}
}

// New loads the configuration. Sources are applied in order of increasing
// precedence: defaults, the YAML file named by CONFIG_FILE, then environment
// variables (a .env file in the working directory is loaded into the
// environment first if present).
func New() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "loading config file %s", path)
		}
	}

	keys := knownKeys()
	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		name := strings.ToLower(key)
		if value == "" || (!keys[name] && key != portENV) {
			return "", nil
		}
		return name, value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !k.Exists("server_port") && k.Exists("port") {
		if err := k.Set("server_port", k.String("port")); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	environment := k.String("environment")
	if environment == "" {
		environment = EnvironmentDevelopment
	}
	cfg := defaults()
	switch environment {
	case EnvironmentDevelopment:
		loadDevelopmentConfig(cfg)
	case EnvironmentTest:
		loadTestConfig(cfg)
	case EnvironmentProduction:
	default:
		return nil, errors.Errorf("unknown environment %q", environment)
	}

	err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			ZeroFields:       true,
		},
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.checkRequired(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a configuration backed by an in-memory SQLite database.
func NewForTest() *Config {
	cfg := defaults()
	loadTestConfig(cfg)
	cfg.DatabaseURL = ":memory:"
	return cfg
}

func loadDevelopmentConfig(cfg *Config) {
	cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	cfg.DatabaseDebug = true
}

func loadTestConfig(cfg *Config) {
	cfg.Environment = EnvironmentTest
	cfg.ServerHost = "127.0.0.1"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
}

// Addr is the host:port the server listens on.
func (cfg *Config) Addr() string {
	return net.JoinHostPort(cfg.ServerHost, strconv.Itoa(cfg.ServerPort))
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == EnvironmentProduction
}

func (cfg *Config) IsTest() bool {
	return cfg.Environment == EnvironmentTest
}

func (cfg *Config) checkRequired() error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	missing := []string{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("required") != "true" || !v.Field(i).IsZero() {
			continue
		}
		key := toSnakeCase(f.Name)
		missing = append(missing, fmt.Sprintf("%s (env) / %s (yaml)", strings.ToUpper(key), key))
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func knownKeys() map[string]bool {
	keys := map[string]bool{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		keys[t.Field(i).Tag.Get("koanf")] = true
	}
	return keys
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
