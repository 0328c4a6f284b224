// Package config aggregates palbot configuration from the embedded
// defaults, an optional config file, environment and flags.
package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultConfig embed.FS

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Provider Provider       `yaml:"provider"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Dialog   DialogConfig   `yaml:"dialog"`
	Weather  WeatherConfig  `yaml:"weather"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Status   StatusConfig   `yaml:"status"`
	Observe  ObserveConfig  `yaml:"observe"`
}

type BotConfig struct {
	Token    string `yaml:"-"`
	Timezone string `yaml:"timezone"`
	Debug    bool   `yaml:"debug"`
	// GroupChat receives the scheduled messages.
	GroupChat int64 `yaml:"groupchat"`
	// TargetChat restricts persona replies to one group; zero means any.
	TargetChat int64 `yaml:"targetchat"`
	// TargetUser gets the sarcastic persona, SupportUser the supportive one.
	TargetUser  int64  `yaml:"targetuser"`
	SupportUser int64  `yaml:"supportuser"`
	TargetName  string `yaml:"targetname"`
}

// external llm provider
type Provider struct {
	Name     string `yaml:"name"`
	Model    string `yaml:"model"`
	ApiKey   string `yaml:"-"`
	Endpoint string `yaml:"endpoint"`
}

type DedupConfig struct {
	Cooldown  time.Duration `yaml:"cooldown"`
	History   int           `yaml:"history"`
	Threshold float64       `yaml:"threshold"`
	MinLength int           `yaml:"minlength"`
}

type DialogConfig struct {
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

type WeatherConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Latitude  float64       `yaml:"latitude"`
	Longitude float64       `yaml:"longitude"`
	CacheTTL  time.Duration `yaml:"cachettl"`
}

type ScheduleConfig struct {
	Hourly  HourlyJob `yaml:"hourly"`
	Morning DailyJob  `yaml:"morning"`
	Evening DailyJob  `yaml:"evening"`
}

type HourlyJob struct {
	Enabled bool `yaml:"enabled"`
	// Minute aligns the repeating run to HH:MM within every hour.
	Minute     int `yaml:"minute"`
	QuietFrom  int `yaml:"quietfrom"`
	QuietUntil int `yaml:"quietuntil"`
}

type DailyJob struct {
	Enabled  bool     `yaml:"enabled"`
	At       string   `yaml:"at"`
	Weekdays []string `yaml:"weekdays"`
}

type StatusConfig struct {
	// Address enables the status HTTP server when non-empty.
	Address string `yaml:"address"`
}

type ObserveConfig struct {
	Enable bool `yaml:"enable"`
	// Exporter is one of "stdout", "http", "prometheus".
	Exporter        string `yaml:"exporter"`
	TraceEndpoint   string `yaml:"traceendpoint"`
	MetricsEndpoint string `yaml:"metricsendpoint"`
	Secure          bool   `yaml:"secure"`
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot token is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	if c.Provider.Name == "" {
		return errors.New("provider name is required")
	}
	if c.Provider.Model == "" {
		return errors.New("provider model is required")
	}
	anyScheduled := c.Schedule.Hourly.Enabled || c.Schedule.Morning.Enabled || c.Schedule.Evening.Enabled
	if anyScheduled && c.Bot.GroupChat == 0 {
		return errors.New("group chat id is required while scheduled messages are enabled")
	}
	if c.Schedule.Hourly.Minute < 0 || c.Schedule.Hourly.Minute > 59 {
		return fmt.Errorf("hourly minute %d out of range", c.Schedule.Hourly.Minute)
	}
	for _, job := range []DailyJob{c.Schedule.Morning, c.Schedule.Evening} {
		if !job.Enabled {
			continue
		}
		if _, err := time.Parse("15:04", job.At); err != nil {
			return fmt.Errorf("invalid time-of-day %q: %w", job.At, err)
		}
		if _, err := ParseWeekdays(job.Weekdays); err != nil {
			return err
		}
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Bot.Timezone)
}

var weekdayByName = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays converts names like "mon" or "Friday" to weekdays.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if len(key) > 3 {
			key = key[:3]
		}
		wd, ok := weekdayByName[key]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		out = append(out, wd)
	}
	return out, nil
}

// String renders the config as yaml with secrets elided, for debug logs.
func (c Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config (marshal error: %v)", err)
	}
	return string(b)
}

// LoadAndValidate layers the embedded default config.yaml, a provided config
// file, env and flags before validation.
func LoadAndValidate(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PALBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flagName, configKey := range flagToConfigKeyMap {
		v.BindPFlag(configKey, flags.Lookup(flagName))
	}

	defaultBytes, _ := defaultConfig.ReadFile("config.yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultBytes)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	configFile, _ := flags.GetString(FlagConfigFile)
	if configFile != "" {
		f, err := os.Open(configFile)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		providedBytes, _ := io.ReadAll(f)
		if err := v.MergeConfig(bytes.NewReader(providedBytes)); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
