package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds every runtime setting for the server binary. Values come
// from config.yml when present, overridden by environment variables.
type AppConfig struct {
	Port         int    `mapstructure:"port" yaml:"port"`
	ClientOrigin string `mapstructure:"client_origin" yaml:"client_origin"`
	DatabaseURL  string `mapstructure:"database_url" yaml:"database_url"`
	JwtSecret    string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JwtExpireH   int    `mapstructure:"jwt_expire_h" yaml:"jwt_expire_h"`
}

// Load reads config.yml (optional) and the environment. Environment keys are
// the upper-cased field keys: PORT, CLIENT_ORIGIN, DATABASE_URL, JWT_SECRET,
// JWT_EXPIRE_H.
func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("port", 5000)
	v.SetDefault("client_origin", "http://localhost:3000")
	v.SetDefault("database_url", "host=localhost user=chat password=chat dbname=chat port=5432 sslmode=disable")
	v.SetDefault("jwt_secret", "chat_secret")
	v.SetDefault("jwt_expire_h", 24)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat("config.yml"); err == nil {
		v.SetConfigFile("config.yml")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
