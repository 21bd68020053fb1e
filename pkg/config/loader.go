package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when it exists and no other files are given.
const DefaultEnvFile = ".env"

type loader struct {
	files     []string
	required  bool
	prefix    string
	overrides map[string]string
}

// Option configures Load.
type Option func(*loader)

// WithEnvFiles reads the given dotenv files instead of DefaultEnvFile.
// Missing files are an error.
func WithEnvFiles(paths ...string) Option {
	return func(l *loader) {
		l.files = paths
		l.required = true
	}
}

// WithPrefix prepends prefix to every env tag, e.g. "TK_".
func WithPrefix(prefix string) Option {
	return func(l *loader) {
		l.prefix = prefix
	}
}

// WithEnvironment supplies values that win over both the process
// environment and dotenv files.
func WithEnvironment(vars map[string]string) Option {
	return func(l *loader) {
		maps.Copy(l.overrides, vars)
	}
}

// Load parses T from `env` struct tags. Values are resolved in order:
// overrides, process environment, dotenv files, `envDefault` tags.
//
//	type Config struct {
//		DatabaseURL string `env:"DATABASE_URL,required"`
//		LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any](opts ...Option) (T, error) {
	l := &loader{
		files:     []string{DefaultEnvFile},
		overrides: make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}

	var zero T
	vars, err := l.environment()
	if err != nil {
		return zero, err
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Environment: vars,
		Prefix:      l.prefix,
	})
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error. Use it for settings the
// process cannot start without.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

func (l *loader) environment() (map[string]string, error) {
	vars := make(map[string]string)

	for _, path := range l.files {
		values, err := godotenv.Read(path)
		if err != nil {
			if !l.required && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Join(ErrReadingEnvFile, fmt.Errorf("%s: %w", path, err))
		}
		for k, v := range values {
			if _, seen := vars[k]; !seen {
				vars[k] = v
			}
		}
	}

	maps.Copy(vars, env.ToMap(os.Environ()))
	maps.Copy(vars, l.overrides)
	return vars, nil
}
