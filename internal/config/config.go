package config

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/spf13/viper"
)

const envPrefix = "LINKGUARD"

type DatabaseConfig struct {
    Driver   string `mapstructure:"driver"`
    URL      string `mapstructure:"url"`
    MaxConns int32  `mapstructure:"max_conns"`
}

type AuthConfig struct {
    Mode            string `mapstructure:"mode"`
    UsersServiceURL string `mapstructure:"users_service_url"`
    UsersServiceKey string `mapstructure:"users_service_api_key"`
}

type ThreatsConfig struct {
    FeedPath        string        `mapstructure:"feed_path"`
    RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type Config struct {
    Env            string         `mapstructure:"env"`
    ListenAddr     string         `mapstructure:"listen_addr"`
    LogLevel       string         `mapstructure:"log_level"`
    AllowedOrigins []string       `mapstructure:"allowed_origins"`
    ScanWorkers    int            `mapstructure:"scan_workers"`
    Database       DatabaseConfig `mapstructure:"database"`
    Auth           AuthConfig     `mapstructure:"auth"`
    Threats        ThreatsConfig  `mapstructure:"threats"`
}

func setDefaults(v *viper.Viper) {
    v.SetDefault("env", "development")
    v.SetDefault("listen_addr", ":8080")
    v.SetDefault("log_level", "info")
    v.SetDefault("allowed_origins", []string{})
    v.SetDefault("scan_workers", 4)
    v.SetDefault("database.driver", "sqlite")
    v.SetDefault("database.url", "linkguard.db")
    v.SetDefault("database.max_conns", 10)
    v.SetDefault("auth.mode", "header")
    v.SetDefault("auth.users_service_url", "")
    v.SetDefault("auth.users_service_api_key", "")
    v.SetDefault("threats.feed_path", "")
    v.SetDefault("threats.refresh_interval", "0s")
}

// Load reads defaults, then the YAML file at path (if any), then
// LINKGUARD_* environment variables. DATABASE_URL is honoured as well.
func Load(path string) (Config, error) {
    v := viper.New()
    setDefaults(v)
    v.SetEnvPrefix(envPrefix)
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
    v.AutomaticEnv()
    _ = v.BindEnv("database.url", envPrefix+"_DATABASE_URL", "DATABASE_URL")

    if path != "" {
        v.SetConfigFile(path)
        if err := v.ReadInConfig(); err != nil {
            return Config{}, fmt.Errorf("reading config: %w", err)
        }
    }

    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return Config{}, fmt.Errorf("parsing config: %w", err)
    }
    return cfg, cfg.Validate()
}

func (c Config) Validate() error {
    var errs []error
    switch c.Database.Driver {
    case "postgres", "sqlite", "memory":
    default:
        errs = append(errs, fmt.Errorf("database.driver must be postgres, sqlite or memory, got %q", c.Database.Driver))
    }
    if c.Database.Driver != "memory" && c.Database.URL == "" {
        errs = append(errs, errors.New("database.url is required"))
    }
    switch c.Auth.Mode {
    case "header":
    case "users_service":
        if c.Auth.UsersServiceURL == "" {
            errs = append(errs, errors.New("auth.users_service_url is required in users_service mode"))
        }
    default:
        errs = append(errs, fmt.Errorf("auth.mode must be header or users_service, got %q", c.Auth.Mode))
    }
    if c.ScanWorkers < 1 {
        errs = append(errs, fmt.Errorf("scan_workers must be at least 1, got %d", c.ScanWorkers))
    }
    if c.Threats.RefreshInterval < 0 {
        errs = append(errs, errors.New("threats.refresh_interval cannot be negative"))
    }
    return errors.Join(errs...)
}

func (c Config) Production() bool { return c.Env == "production" }
