package sensor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"brake-hud.klederson.com/internal/config"
	"brake-hud.klederson.com/internal/monitoring"
	"go.bug.st/serial"
)

// ErrUnsupportedUnit is returned for radar lines labelled with a unit other
// than metres per second.
var ErrUnsupportedUnit = errors.New("unsupported speed unit")

// PortOptions describes the serial connection parameters of the radar.
type PortOptions struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// Normalize validates the options and applies defaults for any unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = config.DefaultBaudRate
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	switch strings.TrimSpace(strings.ToUpper(opts.Parity)) {
	case "", "N", "NONE":
		opts.Parity = "N"
	case "E", "EVEN":
		opts.Parity = "E"
	case "O", "ODD":
		opts.Parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	return opts, nil
}

// SerialMode converts the options into the go.bug.st/serial mode.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}
	return mode, nil
}

// SerialControllers lists the serial ports available on this machine.
func SerialControllers() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	return ports, nil
}

// SerialSensor reads speed lines from a doppler radar on a serial port.
type SerialSensor struct {
	name   string
	port   io.ReadCloser
	latest *latest
}

// OpenSerial opens the radar at path.
func OpenSerial(path string, opts PortOptions) (*SerialSensor, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return NewSerialSensor(path, port, config.SensorStaleAfter), nil
}

// NewSerialSensor wraps an already open port. Readings older than
// staleAfter are rejected; zero disables the check.
func NewSerialSensor(name string, port io.ReadCloser, staleAfter time.Duration) *SerialSensor {
	return &SerialSensor{
		name:   name,
		port:   port,
		latest: newLatest(staleAfter),
	}
}

func (s *SerialSensor) Name() string { return s.name }

// CurrentSpeed returns the latest speed read from the port.
func (s *SerialSensor) CurrentSpeed() (float64, error) {
	return s.latest.get()
}

// Monitor reads lines from the port until ctx is cancelled or the port
// fails. It closes the port on return.
func (s *SerialSensor) Monitor(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = s.port.Close()
	}()

	scan := bufio.NewScanner(s.port)
	for scan.Scan() {
		line := scan.Text()
		speed, ok, err := ParseSpeedLine(line)
		if err != nil {
			monitoring.Logf("radar %s: skipping line %q: %v", s.name, line, err)
			continue
		}
		if ok {
			s.latest.set(speed)
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	return scan.Err()
}

// ParseSpeedLine extracts a speed from one radar output line. Accepted
// forms are a bare number ("12.3"), a unit-prefixed pair ("mps",12.3) and a
// JSON object with a "speed" field holding a number or numeric string. A pair
// labelled with any unit but mps or m/s fails with ErrUnsupportedUnit.
// Other JSON objects are ignored (ok is false). Direction is dropped: the
// absolute value is returned.
func ParseSpeedLine(line string) (speed float64, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, false, nil
	}

	if strings.HasPrefix(line, "{") {
		var payload struct {
			Speed interface{} `json:"speed"`
		}
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			return 0, false, fmt.Errorf("decoding radar json: %w", err)
		}
		switch v := payload.Speed.(type) {
		case nil:
			return 0, false, nil
		case float64:
			return math.Abs(v), true, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, false, fmt.Errorf("speed %q: %w", v, err)
			}
			return math.Abs(f), true, nil
		default:
			return 0, false, fmt.Errorf("unexpected speed type %T", v)
		}
	}

	if i := strings.LastIndexByte(line, ','); i >= 0 {
		unit := strings.Trim(strings.TrimSpace(line[:i]), `"`)
		switch strings.ToLower(unit) {
		case "mps", "m/s":
		default:
			return 0, false, fmt.Errorf("%w: %q", ErrUnsupportedUnit, unit)
		}
		line = line[i+1:]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0, false, fmt.Errorf("speed %q: %w", line, err)
	}
	return math.Abs(f), true, nil
}
