package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Pathfinding PathfindingConfig `mapstructure:"pathfinding"`
	FOV         FOVConfig         `mapstructure:"fov"`
	Map         MapConfig         `mapstructure:"map"`
}

type ServerConfig struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
	// AllowedOrigins lists the CORS origins that are permitted.
	// An empty slice allows all origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"` // 0 disables rate limiting
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
}

type PathfindingConfig struct {
	MaxSteps       int     `mapstructure:"max_steps"`
	RoadmapSamples int     `mapstructure:"roadmap_samples"`
	RoadmapRadius  float64 `mapstructure:"roadmap_radius"`
	RoadmapSeed    uint64  `mapstructure:"roadmap_seed"` // 0 seeds from entropy
}

type FOVConfig struct {
	DefaultRadius int `mapstructure:"default_radius"`
	MaxRadius     int `mapstructure:"max_radius"`
	Workers       int `mapstructure:"workers"`
}

type MapConfig struct {
	File     string `mapstructure:"file"` // .json map file or .geojson obstacle file
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	Diagonal bool   `mapstructure:"diagonal"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GRIDNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit_rps", 50)
	v.SetDefault("server.rate_limit_burst", 100)
	v.SetDefault("pathfinding.max_steps", 65536)
	v.SetDefault("pathfinding.roadmap_samples", 200)
	v.SetDefault("pathfinding.roadmap_radius", 12.0)
	v.SetDefault("pathfinding.roadmap_seed", 0)
	v.SetDefault("fov.default_radius", 8)
	v.SetDefault("fov.max_radius", 64)
	v.SetDefault("fov.workers", 4)
	v.SetDefault("map.file", "")
	v.SetDefault("map.width", 0)
	v.SetDefault("map.height", 0)
	v.SetDefault("map.diagonal", true)
	return v
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the defaults, with GRIDNAV_* environment overrides applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := newViper().Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
