package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  int
		Issuer    string
	}
	GLEIF struct {
		Endpoint string
		Timeout  time.Duration
	}
	Cache struct {
		RedisURL string
		TTL      time.Duration
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// TokenTTL returns the configured bearer token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTL) * time.Minute
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env is optional; already exported variables win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BONDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/bonds.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", 60)
	v.SetDefault("auth.issuer", "bond-registry")
	v.SetDefault("gleif.endpoint", "https://leilookup.gleif.org/api/v2/leirecords")
	v.SetDefault("gleif.timeout", 5*time.Second)
	v.SetDefault("cache.redisurl", "")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "bond-exports")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
}
