package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var ErrUnknownStorage = errors.New("unknown storage")

type Config struct {
	LogLevel       string        `yaml:"log-level"       env:"LOG_LEVEL"       env-default:"info"`
	HTTPPort       string        `yaml:"http-port"       env:"HTTP_PORT"       env-default:"9090"`
	SocketPort     string        `yaml:"socket-port"     env:"SOCKET_PORT"     env-default:"9091"`
	Storage        string        `yaml:"storage"         env:"STORAGE"         env-default:"memory"`
	SessionTTL     time.Duration `yaml:"session-ttl"     env:"SESSION_TTL"     env-default:"24h"`
	JWTSecretKey   string        `yaml:"jwt-secret-key"  env:"JWT_SECRET_KEY"`
	AllowedOrigins []string      `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-separator:","`
	Redis          Redis         `yaml:"redis"`
}

type Redis struct {
	Host     string `yaml:"host"     env:"REDIS_HOST"     env-default:"localhost"`
	Port     string `yaml:"port"     env:"REDIS_PORT"     env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

// MustLoad - load all configurations from the yaml file at path, with environment
// overrides. A missing file is not an error: the environment alone is used.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, err
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage)
	}

	if that.JWTSecretKey == "" {
		return apperror.ErrEmptySecret
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
