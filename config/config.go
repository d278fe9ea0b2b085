package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Env      string
	LogLevel string
	Port     string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBSSLMode   string
	AutoMigrate bool

	DefaultPageSize int
	MaxPageSize     int

	JWTSecret string

	ImageFetchTimeout     time.Duration
	ImageFetchConcurrency int
	ImageCacheTTL         time.Duration
	CommonsAPIURL         string
	CommonsUserAgent      string
	CommonsRatePerSec     float64
	CommonsBreakerTrips   uint32
	RefetchBuffer         int
	RefetchWorkers        int

	ShutdownTimeout time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() (*Settings, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	s := &Settings{
		Env:      getEnv("ENV", "local"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		Port:     getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		CommonsAPIURL:    getEnv("COMMONS_API_URL", "https://commons.wikimedia.org/w/api.php"),
		CommonsUserAgent: getEnv("COMMONS_USER_AGENT", "TravelPointAPI/1.0 (https://travel-point.app)"),
	}

	env := &envReader{}
	s.AutoMigrate = env.Bool("AUTO_MIGRATE", true)
	s.DefaultPageSize = env.Int("DEFAULT_PAGE_SIZE", 20)
	s.MaxPageSize = env.Int("MAX_PAGE_SIZE", 100)
	s.ImageFetchTimeout = env.Duration("IMAGE_FETCH_TIMEOUT", 5*time.Second)
	s.ImageFetchConcurrency = env.Int("IMAGE_FETCH_CONCURRENCY", 100)
	s.ImageCacheTTL = env.Duration("IMAGE_CACHE_TTL", 7*24*time.Hour)
	s.CommonsRatePerSec = env.Float("COMMONS_RATE_PER_SEC", 5)
	s.CommonsBreakerTrips = uint32(env.Int("COMMONS_BREAKER_TRIPS", 5))
	s.RefetchBuffer = env.Int("REFETCH_BUFFER", 256)
	s.RefetchWorkers = env.Int("REFETCH_WORKERS", 2)
	s.ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if env.err != nil {
		return nil, env.err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	var errs []error
	if s.MaxPageSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_PAGE_SIZE must be >= 1, got %d", s.MaxPageSize))
	}
	if s.DefaultPageSize < 1 || s.DefaultPageSize > s.MaxPageSize {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE must be in [1, %d], got %d", s.MaxPageSize, s.DefaultPageSize))
	}
	if s.ImageFetchTimeout <= 0 {
		errs = append(errs, errors.New("IMAGE_FETCH_TIMEOUT must be positive"))
	}
	if s.ImageFetchConcurrency < 1 {
		errs = append(errs, errors.New("IMAGE_FETCH_CONCURRENCY must be >= 1"))
	}
	if s.CommonsRatePerSec <= 0 {
		errs = append(errs, errors.New("COMMONS_RATE_PER_SEC must be positive"))
	}
	if s.RefetchWorkers < 1 {
		errs = append(errs, errors.New("REFETCH_WORKERS must be >= 1"))
	}
	return errors.Join(errs...)
}

// DSN returns DATABASE_URL, or a DSN assembled from the DB_* parts.
func (s *Settings) DSN() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envReader parses typed values and keeps the first error.
type envReader struct {
	err error
}

func (r *envReader) lookup(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != "" && r.err == nil
}

func (r *envReader) fail(key, kind, v string, err error) {
	r.err = fmt.Errorf("%s: invalid %s %q: %w", key, kind, v, err)
}

func (r *envReader) Int(key string, fallback int) int {
	v, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, "integer", v, err)
	}
	return n
}

func (r *envReader) Float(key string, fallback float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, "number", v, err)
	}
	return f
}

func (r *envReader) Bool(key string, fallback bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, "boolean", v, err)
	}
	return b
}

func (r *envReader) Duration(key string, fallback time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, "duration", v, err)
	}
	return d
}
