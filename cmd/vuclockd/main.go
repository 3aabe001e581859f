package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/vuclock/internal/config"
	"codeberg.org/mutker/vuclock/internal/errors"
	"codeberg.org/mutker/vuclock/internal/gauge"
	"codeberg.org/mutker/vuclock/internal/logger"
	"codeberg.org/mutker/vuclock/internal/meter"
	"codeberg.org/mutker/vuclock/internal/pid"
	"codeberg.org/mutker/vuclock/internal/rtc"
	"codeberg.org/mutker/vuclock/internal/telemetry"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var cfg *config.Config

// gauges holds the three meter outputs, hour/minute/second.
type gauges struct {
	hour   *gauge.PWMPin
	minute *gauge.PWMPin
	second *gauge.PWMPin
}

func (g gauges) all() []gauge.Gauge {
	return []gauge.Gauge{g.hour, g.minute, g.second}
}

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.EffectiveLogLevel(), logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	errFactory := errors.New()

	if err := pid.Write(); err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrInitApp, err)).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	if _, err := host.Init(); err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrHostInit, err)).Msg("failed to initialize host drivers")
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrOpenBus, err)).Msg("failed to open I2C bus")
	}
	defer bus.Close()

	meters, err := openGauges()
	if err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrInitApp, err)).Msg("failed to open gauge pins")
	}

	// No clock, no clock display. Park all three needles mid-scale as a
	// visible diagnostic and stop; a silently wrong time would be worse
	// than a visibly frozen one.
	source, err := rtc.New(bus)
	if err != nil {
		holdDiagnostic(meters)
		logger.FatalWithCode(errFactory.Wrap(errors.ErrClockAbsent, err)).Msg("clock device not detected, holding diagnostic pattern")
	}

	if err := seedClockIfHalted(source); err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrSeedClock, err)).Msg("failed to seed clock time")
	}

	if cfg.SelfTest {
		if err := runSelfTest(meters); err != nil {
			logger.ErrorWithCode(errFactory.Wrap(errors.ErrSelfTest, err)).Msg("self-test aborted")
		}
	}

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrInitApp, err)).Msg("failed to initialize telemetry")
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	display, err := buildDisplay(source, meters, collector)
	if err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrInitApp, err)).Msg("failed to build display")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	logger.Info().
		Int("poll_interval_ms", cfg.PollInterval).
		Int("step_interval_ms", cfg.StepInterval).
		Int("sweep_length_ms", cfg.SweepLength).
		Msg("Starting display loop")

	if err := display.Run(ctx, time.Duration(cfg.PollInterval)*time.Millisecond); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(errors.ErrMainLoop, err)).Msg("display loop failed")
	}

	cleanup(meters)
}

func openGauges() (gauges, error) {
	errFactory := errors.New()
	freq := physic.Frequency(cfg.PWMFrequency) * physic.Hertz

	var g gauges
	for _, pin := range []struct {
		name string
		dst  **gauge.PWMPin
	}{
		{cfg.HourPin, &g.hour},
		{cfg.MinutePin, &g.minute},
		{cfg.SecondPin, &g.second},
	} {
		p := gpioreg.ByName(pin.name)
		if p == nil {
			return g, errFactory.WithData(gauge.ErrPinNotFound, pin.name)
		}
		*pin.dst = gauge.NewPWMPin(p, freq)
	}

	logger.Debug().
		Str("hour_pin", cfg.HourPin).
		Str("minute_pin", cfg.MinutePin).
		Str("second_pin", cfg.SecondPin).
		Msg("Gauge pins opened")

	return g, nil
}

// seedClockIfHalted writes the default time once when the clock comes up
// without a valid stored time, e.g. after a battery swap.
func seedClockIfHalted(source rtc.Source) error {
	running, err := source.IsRunning()
	if err != nil {
		return err
	}
	if running {
		return nil
	}

	logger.Info().Msg("Clock has no valid time, seeding default")

	return source.SetTime(rtc.DefaultTime)
}

func runSelfTest(meters gauges) error {
	logger.Info().Msg("Running gauge self-test")
	stepDelay := time.Duration(cfg.SelfTestStep) * time.Millisecond

	for _, g := range meters.all() {
		if err := meter.SelfTest(g, stepDelay); err != nil {
			return err
		}
	}

	return nil
}

func buildDisplay(source rtc.Source, meters gauges, collector telemetry.Collector) (*meter.Display, error) {
	cal := meter.DefaultCalibration()
	if len(cfg.HourTable) != 0 || len(cfg.MinuteTable) != 0 {
		var err error
		cal, err = meter.CalibrationFromTables(cfg.HourTable, cfg.MinuteTable)
		if err != nil {
			return nil, err
		}
		logger.Debug().Msg("Using calibration tables from config")
	}

	stepInterval := time.Duration(cfg.StepInterval) * time.Millisecond
	sweepLength := time.Duration(cfg.SweepLength) * time.Millisecond

	return meter.NewDisplay(
		source,
		cal,
		meter.NewNeedle(meters.hour, stepInterval, sweepLength),
		meter.NewNeedle(meters.minute, stepInterval, sweepLength),
		meter.NewNeedle(meters.second, stepInterval, sweepLength),
		collector,
	), nil
}

func holdDiagnostic(meters gauges) {
	for _, g := range meters.all() {
		if err := g.Set(gauge.DiagnosticLevel); err != nil {
			logger.Error().Err(err).Msg("failed to set diagnostic level")
		}
	}
}

func cleanup(meters gauges) {
	for _, g := range meters.all() {
		if err := g.Set(0); err != nil {
			logger.ErrorWithCode(errors.New().Wrap(errors.ErrBlankGauges, err)).Msg("failed to blank gauge")
		}
	}
	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
