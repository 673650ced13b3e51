package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Driver        string        `yaml:"driver" validate:"required|in:memory,file,redis,postgres"`
	Dir           string        `yaml:"dir"`
	RedisURL      string        `yaml:"redisURL"`
	RedisPrefix   string        `yaml:"redisPrefix"`
	PostgresURL   string        `yaml:"postgresURL"`
	WatchInterval time.Duration `yaml:"watchInterval"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type StateConfig struct {
	RecentLimit  int   `yaml:"recentLimit"`
	HistoryLimit int   `yaml:"historyLimit"`
	Milestones   []int `yaml:"milestones"`
	MaxProfiles  int   `yaml:"maxProfiles"`
	// ProfileTTL closes profiles idle for longer; zero keeps them open.
	ProfileTTL    time.Duration `yaml:"profileTTL"`
	EvictInterval time.Duration `yaml:"evictInterval"`
}

type UpstreamConfig struct {
	BaseURL          string        `yaml:"baseURL"`
	Timeout          time.Duration `yaml:"timeout"`
	StaleTime        time.Duration `yaml:"staleTime"`
	RateLimit        float64       `yaml:"rateLimit"`
	Burst            int           `yaml:"burst"`
	LocationDebounce time.Duration `yaml:"locationDebounce"`
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
	AppName   string
	Debug     bool
	Path      string
	State     StateConfig    `yaml:"state"`
	WebServer Server         `yaml:"webServer"`
	Storage   StorageConfig  `yaml:"storage"`
	Logger    LoggerConfig   `yaml:"logger"`
	Upstream  UpstreamConfig `yaml:"upstream"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
