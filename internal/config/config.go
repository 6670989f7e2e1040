package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode            string        `mapstructure:"mode"`
	Port            int           `mapstructure:"port"`
	StaticPath      string        `mapstructure:"static_path"`
	ServeStatic     bool          `mapstructure:"serve_static"`
	ClientURL       string        `mapstructure:"client_url"`
	ReadLimit       int64         `mapstructure:"read_limit"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	Secret          string        `mapstructure:"secret"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	RateLimit  RateLimitConfig   `mapstructure:"rate_limit"`
	JoinLimit  JoinLimitConfig   `mapstructure:"join_limit"`
	ICEServers []ICEServerConfig `mapstructure:"ice_servers"`

	v    *viper.Viper
	file string
}

// RateLimitConfig is a per-connection token bucket for inbound frames.
type RateLimitConfig struct {
	Burst    int           `mapstructure:"burst"`
	Interval time.Duration `mapstructure:"interval"`
}

// JoinLimitConfig caps join-room events per client in a sliding window.
type JoinLimitConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("meet", pflag.ContinueOnError)
	envFlag := fs.String("env", "", "config environment, selects config/config.<env>.yaml")
	fileFlag := fs.String("config", "", "explicit config file")
	fs.Int("port", 0, "listen port")
	fs.String("log-level", "", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := *envFlag
	if env == "" {
		env = os.Getenv("CONFIG_ENV")
	}
	if env == "" {
		env = "dev"
	}
	fileName := *fileFlag
	if fileName == "" {
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix("MEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain PORT and CLIENT_URL are accepted as well.
	_ = v.BindEnv("port", "MEET_PORT", "PORT")
	_ = v.BindEnv("client_url", "MEET_CLIENT_URL", "CLIENT_URL")

	if f := fs.Lookup("port"); f != nil && f.Changed {
		_ = v.BindPFlag("port", f)
	}
	if f := fs.Lookup("log-level"); f != nil && f.Changed {
		_ = v.BindPFlag("log_level", f)
	}

	loaded := ""
	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		loaded = fileName
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.v = v
	cfg.file = loaded
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("serve_static", false)
	v.SetDefault("client_url", "")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("rate_limit.burst", 50)
	v.SetDefault("rate_limit.interval", "20ms")
	v.SetDefault("join_limit.limit", 10)
	v.SetDefault("join_limit.interval", "1m")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
		{"urls": []string{"stun:stun1.l.google.com:19302"}},
	})
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PingPeriod >= cfg.PongWait {
		return nil, fmt.Errorf("ping_period (%s) must be shorter than pong_wait (%s)", cfg.PingPeriod, cfg.PongWait)
	}
	if _, err := cfg.WebRTCICEServers(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Watch calls fn with the re-read config each time the loaded file changes.
// It does nothing when no file was loaded.
func (c *Config) Watch(fn func(*Config)) {
	if c.v == nil || c.file == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(c.v)
		if err != nil {
			log.Error().Err(err).Str("module", "config").Str("file", e.Name).Msg("ignoring invalid config change")
			return
		}
		log.Info().Str("module", "config").Str("file", e.Name).Str("op", e.Op.String()).Msg("config changed")
		fn(next)
	})
	c.v.WatchConfig()
}
