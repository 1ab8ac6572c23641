// Package main runs the configured peripherals on a Raspberry Pi and periodically logs their state.
package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"go.viam.com/utils"

	"go.viam.com/peripherals/components/board"
	piimpl "go.viam.com/peripherals/components/board/pi/impl"
	"go.viam.com/peripherals/components/sensor/bme280"
	"go.viam.com/peripherals/config"
	"go.viam.com/peripherals/logging"
	"go.viam.com/peripherals/peripherals"
)

const defaultIntervalMs = 1000

var logger = logging.NewLogger("peripherals")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"0,required,usage=peripheral config file"`
	Debug      bool   `flag:"debug"`
	IntervalMs int    `flag:"interval_ms,usage=milliseconds between status reports"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg, err := config.Read(argsParsed.ConfigFile)
	if err != nil {
		return err
	}
	if argsParsed.Debug || cfg.Debug {
		logger.SetLevel(zapcore.DebugLevel)
	}
	logging.ReplaceGlobal(logger)
	if cfg.Empty() {
		return errors.Errorf("no peripherals configured in %q", argsParsed.ConfigFile)
	}

	interval := time.Duration(argsParsed.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = defaultIntervalMs * time.Millisecond
	}

	prims, err := piimpl.NewPrimitives()
	if err != nil {
		return err
	}
	return run(ctx, prims, cfg, interval, logger)
}

// run owns the runtime for the life of the process: everything is built on start and torn down,
// peripherals before the runtime, once ctx is done.
func run(
	ctx context.Context,
	prims board.Primitives,
	cfg *config.Config,
	interval time.Duration,
	logger logging.Logger,
) (err error) {
	rt, err := board.NewRuntime(prims, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, rt.Close())
	}()

	set, err := peripherals.New(ctx, rt, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, set.Close(context.Background()))
	}()

	logger.Infow("running", "peripherals", set.Names(), "interval", interval)
	for utils.SelectContextOrWait(ctx, interval) {
		report(ctx, set, logger)
	}
	logger.Info("shutting down")
	return nil
}

func report(ctx context.Context, set *peripherals.Set, logger logging.Logger) {
	status, err := set.Status(ctx)
	if err != nil {
		logger.Warnw("status incomplete", "error", err)
	}
	for _, name := range set.Names() {
		v, ok := status[name]
		if !ok {
			continue
		}
		if readings, isMap := v.(map[string]interface{}); isMap {
			if r, ok := bme280.ReadoutFromReadings(readings); ok {
				logger.Infow(name, "weather", weatherString(r))
				continue
			}
		}
		logger.Infow(name, "status", v)
	}
}

func weatherString(r bme280.Readout) string {
	env := r.Weather()
	return env.Temperature.String() + " " + env.Pressure.String() + " " + env.Humidity.String()
}
