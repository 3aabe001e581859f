package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/vuclock/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultPollInterval = 10   // ms
	defaultStepInterval = 100  // ms
	defaultSweepLength  = 750  // ms
	defaultPWMFrequency = 8000 // Hz
	defaultSelfTestStep = 3    // ms
)

// Config holds the daemon configuration. Calibration tables are optional
// per-device overrides; empty slices select the built-in defaults.
type Config struct {
	PollInterval int `mapstructure:"poll_interval"` // ms between display cycles
	StepInterval int `mapstructure:"step_interval"` // ms between downward needle steps
	SweepLength  int `mapstructure:"sweep_length"`  // ms for a full-scale downward sweep

	I2CBus       string `mapstructure:"i2c_bus"` // empty selects the first available bus
	HourPin      string `mapstructure:"hour_pin"`
	MinutePin    string `mapstructure:"minute_pin"`
	SecondPin    string `mapstructure:"second_pin"`
	PWMFrequency int    `mapstructure:"pwm_frequency"` // Hz

	SelfTest     bool `mapstructure:"self_test"`
	SelfTestStep int  `mapstructure:"self_test_step"` // ms per self-test step

	HourTable   []int `mapstructure:"hour_table"`
	MinuteTable []int `mapstructure:"minute_table"`

	LogLevel    string `mapstructure:"log_level"`
	Debug       bool   `mapstructure:"debug"`
	Verbose     bool   `mapstructure:"verbose"`
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("vuclock", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Int("poll-interval", defaultPollInterval, "Milliseconds between display cycles")
	flags.Int("step-interval", defaultStepInterval, "Milliseconds between downward needle steps")
	flags.Int("sweep-length", defaultSweepLength, "Milliseconds for a full-scale downward sweep")
	flags.String("i2c-bus", "", "I2C bus the clock is on (empty selects the first)")
	flags.String("hour-pin", "GPIO9", "PWM pin driving the hour gauge")
	flags.String("minute-pin", "GPIO10", "PWM pin driving the minute gauge")
	flags.String("second-pin", "GPIO11", "PWM pin driving the second gauge")
	flags.Bool("self-test", true, "Sweep each gauge at startup")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.Bool("telemetry", false, "Record per-second snapshots to the telemetry database")
	flags.String("database", "", "Path to the telemetry database")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("poll_interval", defaultPollInterval)
	v.SetDefault("step_interval", defaultStepInterval)
	v.SetDefault("sweep_length", defaultSweepLength)
	v.SetDefault("pwm_frequency", defaultPWMFrequency)
	v.SetDefault("hour_pin", "GPIO9")
	v.SetDefault("minute_pin", "GPIO10")
	v.SetDefault("second_pin", "GPIO11")
	v.SetDefault("self_test", true)
	v.SetDefault("self_test_step", defaultSelfTestStep)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix("VUCLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath := os.Getenv("VUCLOCK_CONFIG"); configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("vuclock")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Flags set on the command line override file and env values
	flags.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks interval sanity and the calibration override tables.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.PollInterval <= 0 || c.StepInterval <= 0 || c.SweepLength <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "intervals must be positive")
	}
	if c.PollInterval >= 1000 {
		return errFactory.WithData(errors.ErrInvalidInterval, "poll interval must stay well under one second")
	}
	if c.StepInterval > c.SweepLength {
		return errFactory.WithData(errors.ErrInvalidInterval, "step interval cannot exceed sweep length")
	}
	if c.SelfTestStep < 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "self-test step cannot be negative")
	}
	if c.PWMFrequency <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "pwm frequency must be positive")
	}
	if c.HourPin == "" || c.MinutePin == "" || c.SecondPin == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "all three gauge pins must be named")
	}
	if len(c.HourTable) != 0 && len(c.HourTable) != 12 {
		return errFactory.WithData(errors.ErrInvalidConfig, "hour table override must have 12 entries")
	}
	if len(c.MinuteTable) != 0 && len(c.MinuteTable) != 60 {
		return errFactory.WithData(errors.ErrInvalidConfig, "minute table override must have 60 entries")
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "telemetry requires a database path")
	}
	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// EffectiveLogLevel resolves the level after the debug and verbose shortcuts.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	if c.Verbose {
		return "info"
	}
	if c.LogLevel == "warning" {
		return "warn"
	}

	return c.LogLevel
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}
