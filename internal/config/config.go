// Package config loads application configuration from a YAML file and
// environment variables.
package config

import (
	"flag"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"moderbot/internal/storage"
)

// Config is the full application configuration.
//
// Every field can be filled from environment variables, the config file is
// optional.
type Config struct {
	Bot      BotConfig              `yaml:"bot"`
	Postgres storage.PostgresConfig `yaml:"postgres"`
}

// BotConfig contains settings of the bot itself.
type BotConfig struct {
	// Token is the bot credential issued by BotFather.
	Token string `yaml:"token" env:"BOT_TOKEN"`

	// AdminIDs is the trusted admin set, consulted only at first contact.
	AdminIDs []int64 `yaml:"admin_ids" env:"BOT_ADMIN_IDS" env-separator:","`

	// DefaultLanguage is the ISO 639-1 fallback locale tag.
	// Default is "ru".
	DefaultLanguage string `yaml:"default_language" env:"BOT_DEFAULT_LANGUAGE"`

	// LPTimeout is the long polling timeout. Default is 1 minute.
	LPTimeout time.Duration `yaml:"lp_timeout" env:"BOT_LP_TIMEOUT"`

	// Workers is the size of the update processing pool. Default is 32.
	Workers int `yaml:"workers" env:"BOT_WORKERS"`

	// SessionCapacity is the session cache size. Default is 10000.
	SessionCapacity int `yaml:"session_capacity" env:"BOT_SESSION_CAPACITY"`

	// SessionTTL is the session cache entry lifetime. Default is 24 hours.
	SessionTTL time.Duration `yaml:"session_ttl" env:"BOT_SESSION_TTL"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug" env:"BOT_DEBUG"`
}

// Load reads the configuration from the file if path is not empty, then
// from the environment, applies defaults and validates the result.
func Load(path string) (Config, error) {
	var cfg Config

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, errm.Wrap(err, "read config")
	}

	if err := cfg.prepareAndValidate(); err != nil {
		return cfg, errm.Wrap(err, "prepare and validate")
	}

	return cfg, nil
}

// FetchPath returns the config file path from the -config flag or the
// CONFIG_PATH environment variable. Empty means environment-only config.
func FetchPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

func (cfg *Config) prepareAndValidate() error {
	cfg.Bot.DefaultLanguage = lang.Check(cfg.Bot.DefaultLanguage, "ru")
	cfg.Bot.LPTimeout = lang.Check(cfg.Bot.LPTimeout, time.Minute)
	cfg.Bot.Workers = lang.Check(cfg.Bot.Workers, 32)
	cfg.Bot.SessionCapacity = lang.Check(cfg.Bot.SessionCapacity, 10_000)
	cfg.Bot.SessionTTL = lang.Check(cfg.Bot.SessionTTL, 24*time.Hour)

	err := validation.ValidateStruct(&cfg.Bot,
		validation.Field(&cfg.Bot.Token, validation.Required),
		validation.Field(&cfg.Bot.DefaultLanguage, validation.Required, validation.Length(2, 2)),
		validation.Field(&cfg.Bot.LPTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&cfg.Bot.Workers, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return errm.Wrap(err, "bot")
	}

	err = validation.ValidateStruct(&cfg.Postgres,
		validation.Field(&cfg.Postgres.Host, validation.Required),
		validation.Field(&cfg.Postgres.Port, validation.Required),
		validation.Field(&cfg.Postgres.DBName, validation.Required),
		validation.Field(&cfg.Postgres.User, validation.Required),
		validation.Field(&cfg.Postgres.MaxConns, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return errm.Wrap(err, "postgres")
	}

	return nil
}
