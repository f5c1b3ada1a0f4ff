package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mzotova/threadline/internal/common/constants"
	commonerrors "github.com/mzotova/threadline/internal/common/errors"
)

type AppConfig struct {
	HTTPPort           string
	DatabaseURL        string
	SessionSecret      string
	SessionTTL         time.Duration
	MaxSessionsPerUser int
	RequestTimeout     time.Duration
	SubmitTimeout      time.Duration
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
}

func Load() (AppConfig, error) {
	secret, err := mustEnv("SESSION_SECRET")
	if err != nil {
		return AppConfig{}, err
	}

	if len(secret) < constants.SessionSecretMinLen {
		return AppConfig{}, commonerrors.ErrInvalidSessionSecret.WithCause(
			fmt.Errorf("got %d bytes", len(secret)))
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		HTTPPort:           getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:        databaseURL,
		SessionSecret:      secret,
		SessionTTL:         getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		MaxSessionsPerUser: getIntEnv("MAX_SESSIONS_PER_USER", constants.DefaultMaxSessions),
		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		SubmitTimeout:      getDurationEnv("SUBMIT_TIMEOUT", constants.DefaultSubmitTimeout),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
