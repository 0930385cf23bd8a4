package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Discord struct {
		Token     string `yaml:"token"`
		ChannelID string `yaml:"channel_id"`
		GuildID   string `yaml:"guild_id"`
	} `yaml:"discord"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Game struct {
		PostCron         string `yaml:"post_cron"`
		RevealCron       string `yaml:"reveal_cron"`
		Timezone         string `yaml:"timezone"`
		StrictDuplicates bool   `yaml:"strict_duplicates"`
	} `yaml:"game"`
}

// Load reads YAML config from path. A missing file is not an error: the bot
// can run on env vars alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_CHANNEL_ID"); v != "" {
		cfg.Discord.ChannelID = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Game.PostCron == "" {
		cfg.Game.PostCron = "0 9 * * *"
	}
	if cfg.Game.RevealCron == "" {
		cfg.Game.RevealCron = "0 21 * * *"
	}
	if cfg.Game.Timezone == "" {
		cfg.Game.Timezone = "UTC"
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Game.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
