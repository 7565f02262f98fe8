package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultModel    = 1
	DefaultPort     = "/dev/ttyUSB0"
	DefaultInterval = 20 * time.Millisecond
	DefaultCeiling  = 200.0
	DefaultOffset   = 55
	DefaultLogLevel = "warning"
	DefaultRigDebug = "none"

	defaultEnvPrefix  = "RIGSNR"
	defaultConfigName = "rigsnr.conf"
	defaultConfigDir  = "/etc"
)

type Config struct {
	Model    int           `mapstructure:"model"`
	Port     string        `mapstructure:"port"`
	Speed    int           `mapstructure:"speed"`
	Interval time.Duration `mapstructure:"interval"`
	Ceiling  float64       `mapstructure:"ceiling"`
	Offset   int           `mapstructure:"offset"`
	LogLevel string        `mapstructure:"log_level"`
	RigDebug string        `mapstructure:"rig_debug"`
}

// RegisterFlags adds the meter flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Configuration file (TOML)")
	fs.IntP("model", "m", DefaultModel, "Rig model ID (see 'rigsnr models')")
	fs.StringP("port", "r", DefaultPort, "Serial device, or host:port for NET rigctl")
	fs.IntP("speed", "s", 0, "Serial speed in baud (0 uses the model default)")
	fs.DurationP("interval", "i", DefaultInterval, "Delay between samples and between read retries")
	fs.Float64("ceiling", DefaultCeiling, "Initial value of the running low")
	fs.Int("offset", DefaultOffset, "Offset added to raw strength readings")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("rig-debug", DefaultRigDebug, "Rig backend log level (none, error, warning, info, debug)")
}

// Load merges defaults, the config file, environment variables and the
// flags in fs, in increasing order of precedence.
func Load(fs *pflag.FlagSet, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if o.configPath == "" {
			if path, err := fs.GetString("config"); err == nil {
				o.configPath = path
			}
		}

		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" || f.Name == "help" || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if bindErr != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
		}
	}

	if o.configPath == "" {
		o.configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if err := readConfigFile(v, o.configPath); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", DefaultModel)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("speed", 0)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("ceiling", DefaultCeiling)
	v.SetDefault("offset", DefaultOffset)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("rig_debug", DefaultRigDebug)
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		logger.Debug().Str("path", path).Msg("Config file loaded")

		return nil
	}

	v.SetConfigName(defaultConfigName)
	v.AddConfigPath(defaultConfigDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate rejects values the meter cannot run with.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.Speed < 0 {
		return errFactory.WithData(errors.ErrInvalidSpeed, c.Speed)
	}

	if c.Ceiling < 1 {
		return errFactory.WithData(errors.ErrInvalidCeiling, c.Ceiling)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if _, err := logger.ParseLevel(c.RigDebug); err != nil {
		return err
	}

	return nil
}

// IsUsageError reports whether err came from invalid configuration rather
// than from the device.
func IsUsageError(err error) bool {
	code, ok := errors.CodeOf(err)
	if !ok {
		return false
	}

	switch code {
	case errors.ErrInvalidArgument, errors.ErrInvalidConfig, errors.ErrBindFlags, errors.ErrReadConfig,
		errors.ErrInvalidInterval, errors.ErrInvalidSpeed, errors.ErrInvalidCeiling,
		errors.ErrInvalidLogLevel:
		return true
	default:
		return false
	}
}
