package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Settings struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseDSN    string `env:"DATABASE_DSN"`
	AutoMigrate    bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`
	SessionSecret string        `env:"SESSION_SECRET"`
	CryptoKey     string        `env:"CRYPTO_KEY"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/auth/google/callback"`
	FrontendURL        string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AdminEmails    []string `env:"ADMIN_EMAILS" envSeparator:","`

	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey   string `env:"LLM_API_KEY"`
	LLMModel    string `env:"LLM_MODEL"`
	LLMBaseURL  string `env:"LLM_BASE_URL"`

	GenerationTimeout      time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	GenerationMaxTokens    int           `env:"GENERATION_MAX_TOKENS" envDefault:"3000"`
	GenerationTemperature  float64       `env:"GENERATION_TEMPERATURE" envDefault:"0.8"`
	GenerationLanguage     string        `env:"GENERATION_LANGUAGE" envDefault:"Korean"`
	GenerationAllowPartial bool          `env:"GENERATION_ALLOW_PARTIAL" envDefault:"false"`
}

// Load reads a .env file when present and then parses the process environment.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch s.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", s.DatabaseDriver)
	}
	if s.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if s.GenerationMaxTokens <= 0 {
		return fmt.Errorf("GENERATION_MAX_TOKENS must be positive")
	}
	return nil
}

func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// IsAdmin reports whether the email is listed in ADMIN_EMAILS.
func (s *Settings) IsAdmin(email string) bool {
	for _, e := range s.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
