package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/jaro/internal/config/loader"
	"github.com/dshills/jaro/internal/fuzzy"
	"github.com/dshills/jaro/internal/jaro"
)

// DefaultEnvPrefix is the prefix of environment variables read by Load.
const DefaultEnvPrefix = "JARO_"

// Config is the complete configuration.
type Config struct {
	Matcher Matcher `yaml:"matcher"`
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
}

// Matcher configures scoring and ranking.
type Matcher struct {
	// Metric is "winkler" or "jaro".
	Metric string `yaml:"metric"`

	ScalingFactor  float64 `yaml:"scaling_factor"`
	MaxPrefix      int     `yaml:"max_prefix"`
	BoostThreshold float64 `yaml:"boost_threshold"`

	// Threshold is the minimum score to report; -1 selects the adaptive threshold.
	Threshold float64 `yaml:"threshold"`

	// Limit caps the number of results; 0 means unlimited.
	Limit int `yaml:"limit"`

	CaseSensitive bool `yaml:"case_sensitive"`
	Normalize     bool `yaml:"normalize"`

	// Tokenize scores multi-word text word by word.
	Tokenize bool `yaml:"tokenize"`

	CacheSize int `yaml:"cache_size"`

	// Workers is the parallel matcher's worker count; 0 uses all CPUs.
	Workers int `yaml:"workers"`

	// Script is an optional Lua normaliser applied before scoring.
	Script string `yaml:"script"`
}

// Logging configures the zap logger.
type Logging struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
}

// Server configures the HTTP service.
type Server struct {
	Addr string `yaml:"addr"`

	// Catalog is the candidate file served by /v1/match.
	Catalog string `yaml:"catalog"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxInput is the longest accepted input, in runes.
	MaxInput int `yaml:"max_input"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := jaro.DefaultParams()
	return &Config{
		Matcher: Matcher{
			Metric:         fuzzy.MetricWinkler.String(),
			ScalingFactor:  p.ScalingFactor,
			MaxPrefix:      p.MaxPrefix,
			BoostThreshold: p.BoostThreshold,
			Threshold:      fuzzy.AdaptiveThreshold,
			Limit:          10,
			Normalize:      true,
			CacheSize:      1000,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxInput:        1024,
		},
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs        loader.FileSystem
	envPrefix string
}

// WithFS reads configuration files from fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnvPrefix changes the environment variable prefix. An empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// Load builds a Config from defaults, the file at path (if path is non-empty)
// and the environment, then validates it.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := o.fs.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		l, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		file, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, file)
	}

	if o.envPrefix != "" {
		env, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, env)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// toMap converts c into the generic form produced by the loaders.
func toMap(c *Config) (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	return m, nil
}

// fromMap decodes a merged map into a Config.
func fromMap(m map[string]any) (*Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	m := c.Matcher
	if _, err := fuzzy.ParseMetric(m.Metric); err != nil {
		add("matcher.metric", "must be winkler or jaro", m.Metric)
	}
	if err := m.Params().Validate(); err != nil {
		add("matcher", err.Error(), m.Params())
	}
	if m.Threshold != fuzzy.AdaptiveThreshold && (m.Threshold < 0 || m.Threshold > 1) {
		add("matcher.threshold", "must be in [0, 1] or -1 for adaptive", m.Threshold)
	}
	if m.Limit < 0 {
		add("matcher.limit", "must not be negative", m.Limit)
	}
	if m.CacheSize < 0 {
		add("matcher.cache_size", "must not be negative", m.CacheSize)
	}
	if m.Workers < 0 {
		add("matcher.workers", "must not be negative", m.Workers)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		add("logging.format", "must be json or console", c.Logging.Format)
	}

	s := c.Server
	if s.Addr == "" {
		add("server.addr", "must not be empty", s.Addr)
	}
	if s.MaxInput <= 0 {
		add("server.max_input", "must be positive", s.MaxInput)
	}
	if s.ReadTimeout <= 0 {
		add("server.read_timeout", "must be positive", s.ReadTimeout)
	}
	if s.WriteTimeout <= 0 {
		add("server.write_timeout", "must be positive", s.WriteTimeout)
	}
	if s.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout", "must be positive", s.ShutdownTimeout)
	}

	return errors.Join(errs...)
}

// Params returns the Winkler parameters.
func (m Matcher) Params() jaro.Params {
	return jaro.Params{
		ScalingFactor:  m.ScalingFactor,
		MaxPrefix:      m.MaxPrefix,
		BoostThreshold: m.BoostThreshold,
	}
}

// Options converts the matcher settings into fuzzy.Options.
// Transformer and Logger are left for the caller to set.
func (m Matcher) Options() (fuzzy.Options, error) {
	metric, err := fuzzy.ParseMetric(m.Metric)
	if err != nil {
		return fuzzy.Options{}, err
	}

	opts := fuzzy.Options{
		Metric:        metric,
		Params:        m.Params(),
		Threshold:     m.Threshold,
		CaseSensitive: m.CaseSensitive,
		Normalize:     m.Normalize,
		CacheSize:     m.CacheSize,
	}
	if m.Tokenize {
		opts.Scorer = fuzzy.TokenScorer{Base: fuzzy.NewScorer(metric, opts.Params)}
	}
	return opts, nil
}
