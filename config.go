package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/snehendu098/ghost/galasigner/pkg/galachain"
	"github.com/snehendu098/ghost/galasigner/pkg/log"
)

const (
	configDirPathEnv     = "SIGNER_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."

	// privateKeyEnv is also named in the hint returned for key errors.
	privateKeyEnv = "GALA_PK_HEX"
)

// Config represents the overall application configuration.
type Config struct {
	// PrivateKeyHex is read once at startup and never logged.
	PrivateKeyHex string `env:"GALA_PK_HEX" env-description:"secp256k1 private key, 64 hex characters with optional 0x prefix"`

	ListenAddr      string        `env:"SIGNER_LISTEN_ADDR" env-default:"127.0.0.1:17777" env-description:"Address of the signing API"`
	MetricsAddr     string        `env:"SIGNER_METRICS_LISTEN_ADDR" env-default:":4242" env-description:"Address of the Prometheus metrics server"`
	MetricsEndpoint string        `env:"SIGNER_METRICS_ENDPOINT" env-default:"/metrics" env-description:"Path of the Prometheus metrics endpoint"`
	BodyLimit       int64         `env:"SIGNER_BODY_LIMIT" env-default:"1048576" env-description:"Largest accepted request body in bytes"`
	ShutdownTimeout time.Duration `env:"SIGNER_SHUTDOWN_TIMEOUT" env-default:"5s" env-description:"Grace period for in-flight requests on shutdown"`

	PublicKey galachain.Config
	Log       log.Config

	dotEnvPath   string
	dotEnvLoaded bool
}

// LoadConfig loads an optional .env file from SIGNER_CONFIG_DIR_PATH and then
// reads the configuration from the environment. Variables already set in the
// environment take precedence over the .env file.
func LoadConfig() (*Config, error) {
	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	cfg := Config{dotEnvPath: filepath.Join(configDirPath, ".env")}
	cfg.dotEnvLoaded = godotenv.Load(cfg.dotEnvPath) == nil

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LogSummary reports where the configuration came from. The private key is
// reported only as present or absent.
func (c *Config) LogSummary(logger log.Logger) {
	logger = logger.WithName("config")
	if c.dotEnvLoaded {
		logger.Info("loaded .env file", "path", c.dotEnvPath)
	} else {
		logger.Debug(".env file not found", "path", c.dotEnvPath)
	}
	logger.Info("configuration loaded",
		"listenAddr", c.ListenAddr,
		"metricsAddr", c.MetricsAddr,
		"bodyLimit", c.BodyLimit,
		"publicKeyEndpoint", c.PublicKey.Endpoint,
		"privateKeyConfigured", c.PrivateKeyHex != "",
	)
}
