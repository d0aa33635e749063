package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"brake-hud.klederson.com/internal/app"
	"brake-hud.klederson.com/internal/config"
	"brake-hud.klederson.com/internal/loop"
	"brake-hud.klederson.com/internal/monitoring"
	"brake-hud.klederson.com/internal/timeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	flagDemo       bool
	flagConfig     string
	flagCustomData string
	flagSensor     string
	flagTick       string
	flagHeadless   bool
	flagLogFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "brake-hud",
		Short: "BRAKE-HUD - Stopping time and distance estimator for cockpit displays",
		Long: `BRAKE-HUD samples a speed sensor on a fixed tick, estimates how long and how far
the vehicle needs to come to a standstill, and writes the projection to every
configured display.

The controller and displays are chosen by a two-line configuration blob:
the first line is a controller name filter, the second a ";" separated list
of "name:verbosity" or "name:index:verbosity" display entries.

Use --demo for a simulated drive without sensor hardware.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().BoolVar(&flagDemo, "demo", false, "Run with a simulated sensor (no hardware required)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "YAML settings file")
	rootCmd.Flags().StringVar(&flagCustomData, "custom-data", "", "File holding the two-line controller and display configuration")
	rootCmd.Flags().StringVar(&flagSensor, "sensor", "", "Speed sensor: serial, ble or mock")
	rootCmd.Flags().StringVar(&flagTick, "tick", "", "Tick period, e.g. 166ms (default 1/6 s)")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Run without the terminal UI and print display output to stdout")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Rotating diagnostics log used while the terminal UI runs")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flagHeadless {
		closer := monitoring.LogToFile(cfg.LogFile, config.LogMaxSizeMB, config.LogMaxBackups)
		defer closer.Close()
	}

	rt, err := setup(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		if cfg.Sensor.Kind != config.SensorMock {
			fmt.Fprintln(os.Stderr, "Sensor access may require elevated permissions.")
			fmt.Fprintln(os.Stderr, "Try one of:")
			fmt.Fprintln(os.Stderr, "  sudo ./brake-hud")
			fmt.Fprintln(os.Stderr, "  ./brake-hud --demo    (simulated sensor, no hardware needed)")
		}
		return err
	}
	defer rt.Close()

	for _, f := range rt.failures {
		monitoring.Logf("route skipped: %v", f)
	}

	if flagHeadless {
		rt.registry.MirrorTo(os.Stdout)
		return loop.Run(ctx, rt.loop, timeutil.RealClock{}, nil)
	}

	model, err := app.New(rt.loop, rt.registry, rt.failures, rt.sensor.Name())
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithFPS(config.TargetFPS),
	)

	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// loadConfig reads the settings file and applies the command-line overrides.
func loadConfig() (*config.File, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagCustomData != "" {
		data, err := os.ReadFile(flagCustomData)
		if err != nil {
			return nil, fmt.Errorf("reading custom data: %w", err)
		}
		cfg.CustomData = string(data)
	}
	if flagSensor != "" {
		cfg.Sensor.Kind = flagSensor
	}
	if flagDemo {
		cfg.Sensor.Kind = config.SensorMock
	}
	if flagTick != "" {
		cfg.TickPeriod = flagTick
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
