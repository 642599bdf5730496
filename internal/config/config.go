// Package config loads daemon configuration from a yaml file,
// environment variables, and command-line flags, in that order of
// precedence (later wins).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

const envPrefix = "GENIUS_"

// Session holds the default planning parameters used when a request
// does not specify its own.
type Session struct {
	Count        int     `koanf:"count" validate:"gte=1"`
	MinimumScore float64 `koanf:"minimum_score"`
	MValue       float64 `koanf:"m_value" validate:"gte=0"`
}

// Config is the full daemon configuration.
type Config struct {
	HTTPAddr    string  `koanf:"http_addr" validate:"required"`
	DBPath      string  `koanf:"db_path" validate:"required"`
	ReposDir    string  `koanf:"repos_dir" validate:"required"`
	SyncOnStart bool    `koanf:"sync_on_start"`
	Session     Session `koanf:"session"`
}

// Flags returns the daemon's flag set. Flag defaults double as the
// configuration defaults.
func Flags() *flag.FlagSet {
	f := flag.NewFlagSet("geniusd", flag.ContinueOnError)
	f.String("config", "", "Path to a yaml config file")
	f.String("http_addr", ":8080", "HTTP listen address")
	f.String("db_path", "genius.db", "Path to the SQLite database file")
	f.String("repos_dir", "repos", "Directory for local clones of git deck sources")
	f.Bool("sync_on_start", false, "Reconcile all deck sources on startup")
	f.Int("session.count", 20, "Default number of cards per study session")
	f.Float64("session.minimum_score", -1, "Default minimum score; negative values include unseen cards")
	f.Float64("session.m_value", 0, "Default score the sampling weight is centered on")
	return f
}

// Load merges file, environment, and flag configuration and
// validates the result.
func Load(f *flag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// GENIUS_DB_PATH -> db_path, GENIUS_SESSION__COUNT -> session.count
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment config: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load flag config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
