package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"congregation/internal/adapters/email"
	"congregation/internal/application/listutil"
)

// config is the process configuration resolved from the environment.
type config struct {
	Env             string
	Addr            string
	DBPath          string
	HistoryPageSize int
	CSRFKey         []byte
	ResendKey       string
	MailFrom        string
	AllowedOrigins  []string
}

func (c config) production() bool {
	return c.Env == "production"
}

// loadDotEnv loads path into the environment when it exists. Variables that
// are already set win over the file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadConfig reads CONGREGATION_* variables.
// PRE: the environment is populated (loadDotEnv has run)
// POST: Returns a complete config, or an error for malformed or missing production values
func loadConfig(getenv func(string) string) (config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := config{
		Env:       get("CONGREGATION_ENV", "development"),
		Addr:      get("CONGREGATION_ADDR", ":8080"),
		DBPath:    get("CONGREGATION_DB_PATH", "congregation.db"),
		ResendKey: get("CONGREGATION_RESEND_KEY", ""),
		MailFrom:  get("CONGREGATION_MAIL_FROM", email.DefaultFrom),
	}

	pageSize, err := strconv.Atoi(get("CONGREGATION_HISTORY_PAGE_SIZE", strconv.Itoa(listutil.DefaultPerPage)))
	if err != nil || pageSize < 1 {
		return config{}, errors.New("CONGREGATION_HISTORY_PAGE_SIZE must be a positive integer")
	}
	cfg.HistoryPageSize = pageSize

	for _, o := range strings.Split(get("CONGREGATION_ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	key, err := csrfKey(getenv("CONGREGATION_CSRF_KEY"), cfg.production())
	if err != nil {
		return config{}, err
	}
	cfg.CSRFKey = key
	return cfg, nil
}

// csrfKey decodes a hex-encoded 32-byte key. In production the key MUST be
// set; in development a random key is generated per startup.
func csrfKey(keyHex string, production bool) ([]byte, error) {
	if keyHex = strings.TrimSpace(keyHex); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("CONGREGATION_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("CONGREGATION_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	log.Println("WARNING: using random CSRF key (form tokens won't survive restart). Set CONGREGATION_CSRF_KEY for production.")
	return key, nil
}
