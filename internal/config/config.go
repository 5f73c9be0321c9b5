package config

import (
	"errors"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env string `validate:"required,oneof=dev prod test"`
	} `mapstructure:"app"`

	// Database credentials are the three strings the offer tooling has always been configured with.
	Database struct {
		User     string `validate:"required"`
		Password string
		Host     string `validate:"required"`
		MaxConns int32  `mapstructure:"max_conns" validate:"gte=0"`
	} `mapstructure:"database"`

	HTTP struct {
		Addr string `validate:"required"`
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// Load reads the YAML config at path (optional) with APP_* env overrides,
// e.g. APP_DATABASE_HOST.
func Load(path string) (Config, error) {
	// .env is optional; values there become regular env vars for viper.
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("app.env", "prod")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("database.max_conns", 4)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range []string{"database.user", "database.password", "database.host"} {
		_ = v.BindEnv(k)
	}

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if err := validator.New().Struct(c); err != nil {
		return c, err
	}
	return c, nil
}
