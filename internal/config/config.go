package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"lockchat/internal/model"
	"lockchat/internal/protocol/handshake"
)

type Config struct {
	ServerAddr string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StateTTL      time.Duration

	// Params are published for new users; peers must use them to reach us.
	Params       model.Params
	SecretLength int

	LogLevel string
	LogFile  string
}

// Default mirrors the values the original setup screen prefilled.
func Default() Config {
	return Config{
		ServerAddr:    "localhost:9090",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "mydb",
		RedisAddr:     "localhost:6379",
		StateTTL:      2 * time.Hour,
		Params:        model.Params{G: 5, N: 23},
		SecretLength:  16,
		LogLevel:      "info",
	}
}

func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ServerAddr, "server", c.ServerAddr, "relay server address (host:port)")
	fs.StringVar(&c.MongoURI, "mongo-uri", c.MongoURI, "MongoDB connection URI")
	fs.StringVar(&c.MongoDatabase, "mongo-db", c.MongoDatabase, "MongoDB database name")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database index")
	fs.DurationVar(&c.StateTTL, "state-ttl", c.StateTTL, "how long saved sessions stay in Redis")
	fs.IntVarP(&c.Params.G, "generator", "g", c.Params.G, "Diffie-Hellman generator g (primitive root of n)")
	fs.IntVarP(&c.Params.N, "modulus", "n", c.Params.N, "Diffie-Hellman prime modulus n")
	fs.IntVar(&c.SecretLength, "secret-length", c.SecretLength, "letters in each generated secret, and so in the session key")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file instead of stderr")
}

func (c Config) Validate() error {
	if c.ServerAddr == "" {
		return errors.New("server address must not be empty")
	}
	if c.SecretLength <= 0 || c.SecretLength > handshake.MaxContributionLength {
		return fmt.Errorf("secret length must be in 1..%d, got %d", handshake.MaxContributionLength, c.SecretLength)
	}
	return handshake.ValidateParams(c.Params)
}
