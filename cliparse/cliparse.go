// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort        = 3318
	DefaultDatabaseURL = "file:voter-desk.db"
	DefaultSessionTTL  = 30 * time.Minute
)

type Config struct {
	Port         int
	APIBaseURL   string
	DatabaseURL  string
	DatabaseType string
	ConfirmSalt  string
	SessionTTL   time.Duration
	CameraDir    string
	Production   bool
}

// ParseFlags reads flags, then the optional env file, then the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("voter-desk", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.APIBaseURL, "api", "", "Voter backend base URL")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Session database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Wizard session lifetime")
	fs.StringVar(&cfg.CameraDir, "camera-dir", "", "Read camera frames from this directory instead of the browser")
	fs.BoolVar(&cfg.Production, "prod", false, "Hide test OTPs from responses")
	fs.StringVar(&envFile, "env", "", "Load environment from this file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ConfirmSalt, "confirm-salt", "", "Confirmation token salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Existing environment wins over the file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	}
	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("API base URL required (use -api or API_BASE_URL env)")
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = DefaultDatabaseURL
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.SessionTTL == 0 {
		if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
			d, err := time.ParseDuration(ttl)
			if err != nil {
				return Config{}, errors.New("invalid SESSION_TTL env variable")
			}
			cfg.SessionTTL = d
		} else {
			cfg.SessionTTL = DefaultSessionTTL
		}
	}

	if cfg.CameraDir == "" {
		cfg.CameraDir = os.Getenv("CAMERA_DIR")
	}

	if !cfg.Production {
		if v := os.Getenv("PRODUCTION"); v != "" {
			prod, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid PRODUCTION env variable")
			}
			cfg.Production = prod
		}
	}

	// Secrets - MUST be provided
	if cfg.ConfirmSalt == "" {
		cfg.ConfirmSalt = os.Getenv("CONFIRM_SALT")
	}
	if cfg.ConfirmSalt == "" {
		return Config{}, errors.New("CONFIRM_SALT required")
	}

	return cfg, nil
}
