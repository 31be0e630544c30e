// Package config loads simlist settings.
//
// Settings are layered with viper: built-in defaults, then an optional YAML
// file, then SIMLIST_* environment variables, then command-line flags.
// Nested keys map to environment variables with "." replaced by "_", so
// visits.lowerbound is read from SIMLIST_VISITS_LOWERBOUND.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/danieljhkim/simlist/internal/detector"
	"github.com/danieljhkim/simlist/internal/overlap"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "SIMLIST"

// Keys shared by flags, files and environment variables.
const (
	KeyDatabase   = "database"
	KeyOutput     = "output"
	KeyPrefix     = "prefix"
	KeyPlots      = "plots"
	KeyTracts     = "tracts"
	KeyRafts      = "rafts"
	KeyVerbose    = "verbose"
	KeyLowerBound = "visits.lowerbound"
	KeyLowerDir   = "visits.lowerdir"
	KeyUpperDir   = "visits.upperdir"
)

// Defaults for the DC2 Run2.1.1i end-to-end data set.
const (
	DefaultDatabase = "tract2visit.db"
	DefaultPrefix   = "/global/projecta/projectdirs/lsst/production/DC2_ImSim/Run2.1.1i/sim/agn-test"
)

// DefaultTracts are the tracts of the end-to-end data set.
var DefaultTracts = []int{3636, 3637, 3638, 3639, 3830, 3831, 3832, 4028, 4029, 4030, 4229, 4230, 4231, 4232}

// ErrInvalidConfig indicates settings that failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Visits controls which range directory a visit is placed under.
type Visits struct {
	LowerBound int    `mapstructure:"lowerbound"`
	LowerDir   string `mapstructure:"lowerdir"`
	UpperDir   string `mapstructure:"upperdir"`
}

// Config holds all simlist settings.
type Config struct {
	Database string   `mapstructure:"database"`
	Output   string   `mapstructure:"output"`
	Prefix   string   `mapstructure:"prefix"`
	Plots    bool     `mapstructure:"plots"`
	Verbose  bool     `mapstructure:"verbose"`
	Tracts   []int    `mapstructure:"tracts"`
	Rafts    []string `mapstructure:"rafts"`
	Visits   Visits   `mapstructure:"visits"`
}

// NewViper returns a viper instance with defaults and environment bindings set.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabase, DefaultDatabase)
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyPrefix, DefaultPrefix)
	v.SetDefault(KeyPlots, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyTracts, DefaultTracts)
	v.SetDefault(KeyRafts, detector.DefaultRafts)
	v.SetDefault(KeyLowerBound, overlap.DefaultLowerVisitBound)
	v.SetDefault(KeyLowerDir, overlap.DefaultLowerRangeDir)
	v.SetDefault(KeyUpperDir, overlap.DefaultUpperRangeDir)
}

// Load reads the optional config file and unmarshals v into a validated Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings can drive a resolution.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}
	if c.Prefix == "" {
		return fmt.Errorf("%w: path prefix is empty", ErrInvalidConfig)
	}
	if len(c.Tracts) == 0 {
		return fmt.Errorf("%w: no tracts configured", ErrInvalidConfig)
	}
	if c.Visits.LowerBound <= 0 {
		return fmt.Errorf("%w: visit lower bound must be positive, got %d", ErrInvalidConfig, c.Visits.LowerBound)
	}
	if c.Visits.LowerDir == "" || c.Visits.UpperDir == "" {
		return fmt.Errorf("%w: visit range directories must be set", ErrInvalidConfig)
	}
	if len(c.Rafts) != len(detector.DefaultRafts) {
		return fmt.Errorf("%w: raft table needs %d entries, got %d", ErrInvalidConfig, len(detector.DefaultRafts), len(c.Rafts))
	}
	seen := make(map[string]bool, len(c.Rafts))
	for _, r := range c.Rafts {
		if seen[r] {
			return fmt.Errorf("%w: duplicate raft %q", ErrInvalidConfig, r)
		}
		seen[r] = true
	}
	return nil
}

// Resolver returns the resolver settings derived from c.
func (c *Config) Resolver() overlap.ResolverConfig {
	return overlap.ResolverConfig{
		Tracts:          c.Tracts,
		Prefix:          c.Prefix,
		LowerVisitBound: c.Visits.LowerBound,
		LowerRangeDir:   c.Visits.LowerDir,
		UpperRangeDir:   c.Visits.UpperDir,
		Rafts:           c.Rafts,
	}
}
