package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// 支持的存储驱动
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config 服务配置，YAML文件为主，环境变量覆盖
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	VoteLock  VoteLockConfig  `yaml:"vote_lock"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

type HTTPConfig struct {
	Port         int           `yaml:"port" env:"SERVER_PORT" env-default:"8090"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

// AuthConfig 令牌签名配置。JWTSecret 只在启动时读取一次
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"120h"`
	Header    string        `yaml:"header" env-default:"x-auth-token"`
}

type StorageConfig struct {
	Driver   string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	DSN      string        `yaml:"dsn" env:"STORAGE_DSN" env-default:"voting.db"`
	Database string        `yaml:"database" env:"STORAGE_DATABASE" env-default:"voting"`
	Timeout  time.Duration `yaml:"timeout" env-default:"5s"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	// EventsChannel 多实例之间广播投票事件的频道
	EventsChannel string `yaml:"events_channel" env:"REDIS_EVENTS_CHANNEL" env-default:"poll_events"`
}

type VoteLockConfig struct {
	Expiry time.Duration `yaml:"expiry" env-default:"5s"`
	Tries  int           `yaml:"tries" env-default:"32"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"false"`
	RPS     float64 `yaml:"rps" env-default:"10"`
	Burst   int     `yaml:"burst" env-default:"20"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins" env-default:"*"`
}

// Load 读取指定路径的配置文件
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch cfg.Storage.Driver {
	case DriverMySQL, DriverSQLite, DriverMongo:
	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}

	if cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0 {
		return nil, fmt.Errorf("%s: rate_limit.rps and rate_limit.burst must be positive", op)
	}

	return &cfg, nil
}

// MustLoad 从 -config 参数或 CONFIG_PATH 环境变量解析路径并加载，失败直接退出
func MustLoad() *Config {
	path := fetchConfigPath()

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "config/local.yaml"
	}
	return res
}
