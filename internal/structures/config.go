package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type RefreshConfig struct {
	Interval     time.Duration `yaml:"interval" validate:"required|min:1"`
	LookbackDays int           `yaml:"lookbackDays" validate:"required|min:1"`
	RatePerSec   float64       `yaml:"ratePerSec"`
	RateBurst    int           `yaml:"rateBurst"`
}

// PlatformRange declares the typical rating range of one platform,
// used to rescale ratings onto the shared 0-100 axis.
type PlatformRange struct {
	MinRating int    `yaml:"minRating" validate:"required"`
	MaxRating int    `yaml:"maxRating" validate:"required"`
	BaseURL   string `yaml:"baseUrl"`
}

type PlatformsConfig struct {
	Codeforces PlatformRange `yaml:"codeforces"`
	Leetcode   PlatformRange `yaml:"leetcode"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Refresh     RefreshConfig   `yaml:"refresh"`
	Platforms   PlatformsConfig `yaml:"platforms"`
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
