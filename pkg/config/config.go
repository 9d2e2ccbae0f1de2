// Package config loads the server configuration from defaults, an optional
// file, BIKEPARK_ environment variables and command line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// BIKEPARK_OSM_URL for osm.url.
const EnvPrefix = "BIKEPARK"

// Config is the server configuration, read from an optional file and
// BIKEPARK_* environment variables on top of the defaults.
type Config struct {
	UserAgent   string        `mapstructure:"user_agent" validate:"required"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	Debug       bool          `mapstructure:"debug"`

	Nominatim ServiceConfig `mapstructure:"nominatim"`
	OSM       ServiceConfig `mapstructure:"osm"`
	BikeIndex ServiceConfig `mapstructure:"bikeindex"`

	Theft TheftConfig `mapstructure:"theft"`
	BBox  BBoxConfig  `mapstructure:"bbox"`
}

// ServiceConfig is the base URL and request rate for one upstream service.
type ServiceConfig struct {
	URL   string  `mapstructure:"url" validate:"required,url"`
	RPS   float64 `mapstructure:"rps" validate:"gt=0"`
	Burst int     `mapstructure:"burst" validate:"min=1"`
}

// TheftConfig controls the stolen-bike lookup: search radius in miles, the
// recency window and how many result pages to read.
type TheftConfig struct {
	Distance   string `mapstructure:"distance" validate:"required,numeric"`
	WindowDays int    `mapstructure:"window_days" validate:"min=1"`
	PerPage    int    `mapstructure:"per_page" validate:"min=1,max=100"`
	MaxPages   int    `mapstructure:"max_pages" validate:"min=1,max=10"`
}

// BBoxConfig holds the half-width in degrees of the box derived around a
// geocoded location.
type BBoxConfig struct {
	Offset float64 `mapstructure:"offset" validate:"gt=0,lte=0.25"`
}

// Window returns the theft recency window.
func (t TheftConfig) Window() time.Duration {
	return time.Duration(t.WindowDays) * 24 * time.Hour
}

// Limit returns the rate limit for the service.
func (s ServiceConfig) Limit() osm.Limit {
	return osm.Limit{RPS: s.RPS, Burst: s.Burst}
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	limits := osm.DefaultLimits()

	v.SetDefault("user_agent", osm.DefaultUserAgent)
	v.SetDefault("http_timeout", osm.DefaultTimeout)
	v.SetDefault("debug", false)

	v.SetDefault("nominatim.url", osm.NominatimBaseURL)
	v.SetDefault("nominatim.rps", limits[osm.ServiceNominatim].RPS)
	v.SetDefault("nominatim.burst", limits[osm.ServiceNominatim].Burst)

	v.SetDefault("osm.url", osm.OSMAPIBaseURL)
	v.SetDefault("osm.rps", limits[osm.ServiceOSMAPI].RPS)
	v.SetDefault("osm.burst", limits[osm.ServiceOSMAPI].Burst)

	v.SetDefault("bikeindex.url", bikeindex.BaseURL)
	v.SetDefault("bikeindex.rps", limits[osm.ServiceBikeIndex].RPS)
	v.SetDefault("bikeindex.burst", limits[osm.ServiceBikeIndex].Burst)

	v.SetDefault("theft.distance", bikeindex.DefaultDistance)
	v.SetDefault("theft.window_days", int(bikeindex.DefaultWindow/(24*time.Hour)))
	v.SetDefault("theft.per_page", bikeindex.DefaultPerPage)
	v.SetDefault("theft.max_pages", 1)

	v.SetDefault("bbox.offset", geo.DefaultOffset)
}

// Load reads the configuration into v. An empty path skips the config
// file; a path that does not exist is an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and URLs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Limits returns the per-service rate limits.
func (c *Config) Limits() map[string]osm.Limit {
	return map[string]osm.Limit{
		osm.ServiceNominatim: c.Nominatim.Limit(),
		osm.ServiceOSMAPI:    c.OSM.Limit(),
		osm.ServiceBikeIndex: c.BikeIndex.Limit(),
	}
}
