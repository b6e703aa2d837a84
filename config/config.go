package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage and transport
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres" validate:"oneof=postgres memory"`
	PostgresURL  string `envconfig:"POSTGRES_URL"`
	RedisAddr    string `envconfig:"REDIS_ADDR"`

	BaseURL          string `envconfig:"BASE_URL" default:"http://localhost:8080" validate:"url"`
	PaymentsProvider string `envconfig:"PAYMENTS_PROVIDER" default:"stripe" validate:"oneof=stripe fake"`
	Currency         string `envconfig:"CURRENCY" default:"usd" validate:"len=3"`
	LessonTimezone   string `envconfig:"LESSON_TIMEZONE" default:"UTC"`
	SeedCatalog      bool   `envconfig:"SEED_CATALOG" default:"true"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// Resend
	ResendAPIKey      string `envconfig:"RESEND_API_KEY"`
	BookingsFromEmail string `envconfig:"BOOKINGS_FROM_EMAIL" validate:"omitempty,email"`

	location *time.Location
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set take precedence.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("loading .env: %w", err)
	}

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, fmt.Errorf("processing environment: %w", err)
	}

	return c.validate()
}

func (c App) validate() (App, error) {
	if err := validator.New().Struct(c); err != nil {
		return App{}, fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(c.LessonTimezone)
	if err != nil {
		return App{}, fmt.Errorf("invalid LESSON_TIMEZONE: %w", err)
	}
	c.location = loc

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.Currency = strings.ToLower(c.Currency)

	return c, nil
}

// Location is the time zone lesson dates and times are interpreted in.
func (c App) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c App) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c App) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

func (c App) EmailConfigured() bool {
	return c.ResendAPIKey != "" && c.BookingsFromEmail != ""
}
