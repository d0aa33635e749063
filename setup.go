package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brake-hud.klederson.com/internal/config"
	"brake-hud.klederson.com/internal/display"
	"brake-hud.klederson.com/internal/loop"
	"brake-hud.klederson.com/internal/monitoring"
	"brake-hud.klederson.com/internal/route"
	"brake-hud.klederson.com/internal/sensor"
	"tinygo.org/x/bluetooth"
)

// session is everything built once at startup.
type session struct {
	sensor   sensor.Sensor
	registry *display.Registry
	loop     *loop.Loop
	failures []route.Failure
	closers  []func() error
}

func (rt *session) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	return errors.Join(errs...)
}

// setup parses the custom data, picks and opens the controller, builds the
// display registry and routes, and creates the control loop.
func setup(ctx context.Context, cfg *config.File) (*session, error) {
	custom, err := config.ParseCustomData(cfg.CustomData)
	if err != nil {
		return nil, err
	}

	tick, err := cfg.Tick()
	if err != nil {
		return nil, err
	}

	rt := &session{}
	rt.sensor, err = openSensor(ctx, cfg, custom.ControllerFilter, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}
	monitoring.Logf("using %s controller %q", cfg.Sensor.Kind, rt.sensor.Name())

	rt.registry = buildRegistry(cfg.Displays)

	set := route.Parse(custom.Displays, rt.registry)
	rt.failures = set.Failures
	monitoring.Logf("%d display routes active, %d skipped", len(set.Routes), len(set.Failures))

	rt.loop, err = loop.New(rt.sensor, set.Routes, tick)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func openSensor(ctx context.Context, cfg *config.File, filter string, rt *session) (sensor.Sensor, error) {
	switch cfg.Sensor.Kind {
	case config.SensorSerial:
		ports, err := sensor.SerialControllers()
		if err != nil {
			return nil, err
		}
		name, err := config.SelectController(filter, ports)
		if err != nil {
			return nil, err
		}
		s, err := sensor.OpenSerial(name, sensor.PortOptions{
			BaudRate: cfg.Sensor.Serial.BaudRate,
			DataBits: cfg.Sensor.Serial.DataBits,
			StopBits: cfg.Sensor.Serial.StopBits,
			Parity:   cfg.Sensor.Serial.Parity,
		})
		if err != nil {
			return nil, err
		}
		monitorCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			err := s.Monitor(monitorCtx)
			if err != nil {
				monitoring.Logf("radar %s stopped: %v", name, err)
			}
			done <- err
		}()
		rt.closers = append(rt.closers, func() error {
			cancel()
			return <-done
		})
		return s, nil

	case config.SensorBLE:
		timeout := time.Duration(cfg.Sensor.BLE.ScanTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = config.BLEScanTimeout
		}
		adapter := bluetooth.DefaultAdapter
		names, err := sensor.BLEControllers(adapter, timeout)
		if err != nil {
			return nil, err
		}
		name, err := config.SelectController(filter, names)
		if err != nil {
			return nil, err
		}
		s, err := sensor.ConnectBLE(adapter, name, cfg.Sensor.BLE.WheelCircumference, timeout)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, s.Close)
		return s, nil

	case config.SensorMock:
		name, err := config.SelectController(filter, sensor.MockControllers)
		if err != nil {
			return nil, err
		}
		return sensor.NewMockSensor(name), nil
	}

	return nil, fmt.Errorf("unknown sensor kind %q", cfg.Sensor.Kind)
}

// buildRegistry registers one target per configured display. A display with
// more than one surface becomes a group addressed by index.
func buildRegistry(displays []config.DisplayConfig) *display.Registry {
	reg := display.NewRegistry()
	for _, d := range displays {
		if d.Surfaces > 1 {
			reg.AddGroup(d.Name, d.Surfaces)
			continue
		}
		reg.AddPanel(d.Name)
	}
	return reg
}
