package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server      Server      `yaml:"server"`
	Logger      Logger      `yaml:"logger"`
	PostgresDB  PostgresDB  `yaml:"db"`
	Auth        Auth        `yaml:"auth"`
	RecipeCache RecipeCache `yaml:"rdb"`
	ImageStore  ImageStore  `yaml:"s3"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

type PostgresDB struct {
	Addr     string `yaml:"addr"`
	Username string `env:"POSTGRES_USER"     env-required:"true" yaml:"username"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	DB       string `env:"POSTGRES_DB"       env-required:"true" yaml:"db"`
	SSLmode  string `yaml:"sslmode"`
	MaxConns string `yaml:"maxConns"`
	Reload   bool   `yaml:"reload"`
	Version  int    `yaml:"version"`
}

type Auth struct {
	TTL    time.Duration `yaml:"ttl"`
	Secret string        `env:"SECRET" env-required:"true" yaml:"secret"`

	// Superuser bootstrap. When AdminEmail is set, the app ensures a
	// staff superuser with these credentials exists on start.
	AdminEmail    string `yaml:"adminEmail"`
	AdminPassword string `env:"ADMIN_PASSWORD" yaml:"adminPassword"`
}

type RecipeCache struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	ExpTime  time.Duration `yaml:"exp"`
}

type ImageStore struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `env:"S3_ACCESS_KEY" yaml:"accessKey"`
	SecretKey string `env:"S3_SECRET_KEY" yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"useSSL"`
}

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	return cfg, nil
}
