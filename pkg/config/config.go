package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"

	devJWTSecret = "supersecretjwtkey"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	PostgresConnStr string        `env:"POSTGRES_CONN_STR,notEmpty"`
	MongoURI        string        `env:"MONGO_URI,notEmpty"`
	MongoDatabase   string        `env:"MONGO_DATABASE" envDefault:"gamehub"`
	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	AuthProvider            string        `env:"AUTH_PROVIDER" envDefault:"jwt"`
	FirebaseCredentialsPath string        `env:"FIREBASE_CREDENTIALS_PATH"`
	JWTSecret               string        `env:"JWT_SECRET" envDefault:"supersecretjwtkey"`
	JWTTTL                  time.Duration `env:"JWT_TTL" envDefault:"72h"`

	MaxPendingRequests int64 `env:"MAX_PENDING_REQUESTS" envDefault:"100"`
	MaxFriends         int64 `env:"MAX_FRIENDS" envDefault:"500"`
	MaxOfferPrice      int64 `env:"MAX_OFFER_PRICE" envDefault:"1000000"`
	StartingBalance    int64 `env:"STARTING_BALANCE" envDefault:"1000"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects combinations env tags cannot express.
func (c *Config) Validate() error {
	switch c.AuthProvider {
	case AuthProviderJWT:
	case AuthProviderFirebase:
		if c.FirebaseCredentialsPath == "" {
			return errors.New("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if !c.IsDevelopment() && c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set outside development")
	}
	if c.MaxPendingRequests < 1 || c.MaxFriends < 1 {
		return errors.New("MAX_PENDING_REQUESTS and MAX_FRIENDS must be positive")
	}
	if c.MaxOfferPrice < 0 || c.StartingBalance < 0 {
		return errors.New("MAX_OFFER_PRICE and STARTING_BALANCE must not be negative")
	}
	return nil
}
