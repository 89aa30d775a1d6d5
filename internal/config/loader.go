package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STANFORDWHO_"

// LoadConfig накладывает YAML (если путь задан) и переменные окружения на
// Default(). Пустой путь: только значения по умолчанию и окружение.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		if err := decodeFile(filePath, cfg); err != nil {
			return nil, err
		}
	}

	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}

func decodeFile(filePath string, cfg *Config) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем: иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv переносит STANFORDWHO_* поверх конфига.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("START_URL", &cfg.Scrape.StartURL)
	str("OUTPUT", &cfg.Scrape.OutputPath)
	str("EMAIL_DOMAIN", &cfg.Scrape.EmailDomain)
	str("CHROME_PATH", &cfg.Rod.ChromePath)
	str("SELECTORS_FILE", &cfg.SelectorsFile)
	str("DSN", &cfg.Storage.DSN)
	str("LOG_PATH", &cfg.Observability.LogPath)
	str("LOG_LEVEL", &cfg.Observability.LogLevel)

	return errors.Join(
		num("WAIT_TIMEOUT_S", &cfg.Scrape.WaitTimeoutS),
		num("MAX_PAGES", &cfg.Scrape.MaxPages),
		flag("HEADLESS", &cfg.Rod.Headless),
		flag("FOLLOW_PROFILE", &cfg.Scrape.FollowProfile),
		flag("NO_LOGIN_WAIT", &cfg.Scrape.SkipLoginWait),
		flag("ROD_ENABLED", &cfg.Rod.Enabled),
		flag("STORAGE_ENABLED", &cfg.Storage.Enabled),
	)
}
