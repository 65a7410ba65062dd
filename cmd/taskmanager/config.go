package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/avolkov/taskmanager/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction

	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 30 * 24 * time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the taskmanager service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Access tokens are signed with this symmetric key
	SecretKey string

	// Environment (dev, prod)
	Environment string

	// Token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func NewConfig() *Config {
	return &Config{
		LogLevel:        defaultLoggingLevel,
		ListenAddr:      defaultListenAddr,
		Environment:     defaultEnvironment,
		AccessTokenTTL:  defaultAccessTokenTTL,
		RefreshTokenTTL: defaultRefreshTokenTTL,
	}
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	// Set option to duration if it parses
	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if d, err := time.ParseDuration(value); err == nil && d > 0 {
				*o = d
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"SECRET_KEY":        setString(&c.SecretKey),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
		"ACCESS_TOKEN_TTL":  setDuration(&c.AccessTokenTTL),
		"REFRESH_TOKEN_TTL": setDuration(&c.RefreshTokenTTL),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("taskmanager", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "Refresh token lifetime")

	return fs.Parse(args)
}
