package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

type Logging struct {
	JSONFormat bool   `yaml:"json_format" env:"KEYDECK_LOG_JSON"`
	Level      string `yaml:"level" env:"KEYDECK_LOG_LEVEL" env-default:"info"`
}

type Prometheus struct {
	Enabled bool `yaml:"enabled"`
}

type API struct {
	Port                int    `yaml:"port" env:"KEYDECK_API_PORT" env-default:"8080"`
	HealthCheckFailFile string `yaml:"healthcheck_fail_file"`
}

type Database struct {
	Type     string         `yaml:"type" env:"KEYDECK_DB_TYPE" env-default:"sqlite"`
	Settings map[string]any `yaml:"settings"`
}

// Usage holds the feature-wide cap on summed key usage. The aggregate
// limit gates the playground as a whole, not individual keys.
type Usage struct {
	AggregateLimit int64 `yaml:"aggregate_limit" env:"KEYDECK_USAGE_LIMIT" env-default:"10000"`
}

type OAuth struct {
	ClientID     string `yaml:"client_id" env:"KEYDECK_OAUTH_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"KEYDECK_OAUTH_CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url" env:"KEYDECK_OAUTH_REDIRECT_URL"`
	AuthURL      string `yaml:"auth_url" env-default:"https://accounts.google.com/o/oauth2/auth"`
	TokenURL     string `yaml:"token_url" env-default:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string `yaml:"userinfo_url" env-default:"https://www.googleapis.com/oauth2/v2/userinfo"`
	JWTSecret    string `yaml:"jwt_secret" env:"KEYDECK_JWT_SECRET"`
}

type KeydeckConfig struct {
	Logging    Logging    `yaml:"logging"`
	API        API        `yaml:"api"`
	Database   Database   `yaml:"database"`
	Usage      Usage      `yaml:"usage"`
	OAuth      OAuth      `yaml:"oauth"`
	Prometheus Prometheus `yaml:"prometheus"`
}

func Load(path string) (KeydeckConfig, error) {
	var conf KeydeckConfig
	if path == "" {
		err := cleanenv.ReadEnv(&conf)
		return conf, err
	}

	err := cleanenv.ReadConfig(path, &conf)
	return conf, err
}
