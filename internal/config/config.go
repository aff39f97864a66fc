package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const devSecret = "basket-dev-secret"

type Config struct {
	Port        string        `envconfig:"PORT" default:"3000"`
	DBDSN       string        `envconfig:"DB_DSN" default:"basket.db"`
	LogFile     string        `envconfig:"LOG_FILE"`
	JWTSecret   string        `envconfig:"JWT_SECRET"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	RedisAddr   string        `envconfig:"REDIS_ADDR"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	DeliveryFee float64       `envconfig:"DELIVERY_FEE" default:"50"`
	FreeAbove   float64       `envconfig:"FREE_DELIVERY_THRESHOLD" default:"500"`
	CORSOrigins string        `envconfig:"CORS_ORIGINS" default:"*"`
	BodyLimit   int           `envconfig:"BODY_LIMIT" default:"10485760"`
	// RateLimit caps requests per client IP per minute; 0 turns it off.
	RateLimit   int           `envconfig:"RATE_LIMIT" default:"60"`
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("[config] %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Printf("[warn] JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devSecret
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REDIS_ADDR=%s TOKEN_TTL=%s DELIVERY_FEE=%.2f FREE_DELIVERY_THRESHOLD=%.2f",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.RedisAddr, cfg.TokenTTL, cfg.DeliveryFee, cfg.FreeAbove)
	return cfg
}

// Test returns a configuration suitable for in-memory test servers.
func Test() Config {
	return Config{
		Port:        "0",
		DBDSN:       ":memory:",
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		CacheTTL:    time.Minute,
		DeliveryFee: 50,
		FreeAbove:   500,
		CORSOrigins: "*",
		BodyLimit:   1 << 20,
		RateLimit:   1000,
	}
}
