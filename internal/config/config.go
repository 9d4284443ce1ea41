package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Environment variables overriding secrets from the config file.
const (
	envPostgresPassword = "LZY_POSTGRES_PASSWORD"
	envRedisPassword    = "LZY_REDIS_PASSWORD"
	envReceiptSecret    = "LZY_RECEIPT_SECRET"
)

// MinReceiptSecretLength is the shortest receipt secret accepted in prod.
const MinReceiptSecretLength = 32

// ErrMissingReceiptSecret is returned when the prod environment has no strong receipt secret configured.
var ErrMissingReceiptSecret = errors.New("receipt secret of at least 32 bytes is required in prod")

type Config struct {
	Env        string `yaml:"env"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Redis      `yaml:"redis"`
	Shortener  `yaml:"shortener"`
	RateLimit  `yaml:"rate_limit"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
	// BehindProxy makes the server take the client address from X-Real-IP or X-Forwarded-For.
	// Enable it only when every request passes through a proxy that sets those headers.
	BehindProxy bool `yaml:"behind_proxy"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Redis backs the password attempt limiter. An empty Addr disables it.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r *Redis) Enabled() bool {
	return r.Addr != ""
}

type Shortener struct {
	BaseURL          string        `yaml:"base_url"`
	Salt             string        `yaml:"salt"`
	MinLength        int           `yaml:"min_length"`
	PasswordAlphabet string        `yaml:"password_alphabet"`
	PasswordLength   int           `yaml:"password_length"`
	HelpTextPath     string        `yaml:"help_text_path"`
	ReceiptSecret    string        `yaml:"receipt_secret"`
	ReceiptTTL       time.Duration `yaml:"receipt_ttl"`
}

var defaultShortener = Shortener{
	BaseURL:          "http://localhost:8080",
	MinLength:        3,
	PasswordAlphabet: "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
	PasswordLength:   16,
	HelpTextPath:     "static/text.txt",
	ReceiptSecret:    "insecure-dev-secret",
	ReceiptTTL:       10 * time.Minute,
}

type RateLimit struct {
	Attempts int           `yaml:"attempts"`
	Window   time.Duration `yaml:"window"`
}

var defaultRateLimit = RateLimit{
	Attempts: 20,
	Window:   time.Minute,
}

// Load reads the .env file in the working directory, if any, and then the YAML config at path.
// An empty path falls back to the CONFIG_PATH variable, which may come from .env.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: failed to load .env file: %w", op, err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	applyEnv(&cfg)

	if cfg.Env == EnvProd && !strongReceiptSecret(cfg.Shortener.ReceiptSecret) {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingReceiptSecret)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Shortener = defaultShortener
	cfg.RateLimit = defaultRateLimit
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(envPostgresPassword); ok {
		cfg.Postgres.Password = v
	}
	if v, ok := os.LookupEnv(envRedisPassword); ok {
		cfg.Redis.Password = v
	}
	if v, ok := os.LookupEnv(envReceiptSecret); ok {
		cfg.Shortener.ReceiptSecret = v
	}
}

func strongReceiptSecret(secret string) bool {
	return secret != defaultShortener.ReceiptSecret && len(secret) >= MinReceiptSecretLength
}
