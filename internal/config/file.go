package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Sensor kinds.
const (
	SensorSerial = "serial"
	SensorBLE    = "ble"
	SensorMock   = "mock"
)

// File is the YAML settings file.
type File struct {
	Sensor     SensorConfig    `yaml:"sensor"`
	TickPeriod string          `yaml:"tickPeriod"` // Duration string like "166.666666ms"
	CustomData string          `yaml:"customData"` // Two-line controller + display configuration
	Displays   []DisplayConfig `yaml:"displays"`
	LogFile    string          `yaml:"logFile"`
}

// SensorConfig selects and configures the speed source.
type SensorConfig struct {
	Kind   string       `yaml:"kind"`
	Serial SerialConfig `yaml:"serial"`
	BLE    BLEConfig    `yaml:"ble"`
}

// SerialConfig holds the radar serial line settings.
type SerialConfig struct {
	BaudRate int    `yaml:"baudRate"`
	DataBits int    `yaml:"dataBits"`
	StopBits int    `yaml:"stopBits"`
	Parity   string `yaml:"parity"`
}

// BLEConfig holds the cycling speed sensor settings.
type BLEConfig struct {
	WheelCircumference float64 `yaml:"wheelCircumference"` // Metres
	ScanTimeoutSec     int     `yaml:"scanTimeoutSec"`
}

// DisplayConfig declares a display target. Surfaces > 1 makes it a
// multi-surface target addressed as "name:index:verbosity".
type DisplayConfig struct {
	Name     string `yaml:"name"`
	Surfaces int    `yaml:"surfaces"`
}

// Load returns the defaults overlaid with path (when non-empty) and the
// BRAKE_HUD_* environment variables.
func Load(path string) (*File, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in settings: a mock sensor and one display of
// each kind.
func Default() *File {
	return &File{
		Sensor: SensorConfig{
			Kind: SensorMock,
			Serial: SerialConfig{
				BaudRate: DefaultBaudRate,
				DataBits: 8,
				StopBits: 1,
				Parity:   "N",
			},
			BLE: BLEConfig{
				WheelCircumference: WheelCircumference,
				ScanTimeoutSec:     int(BLEScanTimeout / time.Second),
			},
		},
		TickPeriod: DefaultTickPeriod.String(),
		CustomData: "Cockpit\nLCD1:l;Cockpit:0:s",
		Displays: []DisplayConfig{
			{Name: "LCD1", Surfaces: 1},
			{Name: "Cockpit", Surfaces: 2},
		},
		LogFile: DefaultLogFile,
	}
}

func loadFromFile(cfg *File, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *File) {
	if kind := os.Getenv("BRAKE_HUD_SENSOR"); kind != "" {
		cfg.Sensor.Kind = kind
	}
	if tick := os.Getenv("BRAKE_HUD_TICK"); tick != "" {
		cfg.TickPeriod = tick
	}
	if baud := os.Getenv("BRAKE_HUD_BAUD"); baud != "" {
		if v, err := strconv.Atoi(baud); err == nil {
			cfg.Sensor.Serial.BaudRate = v
		}
	}
	if logFile := os.Getenv("BRAKE_HUD_LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}
}

// Validate checks the settings that cannot be defaulted.
func (f *File) Validate() error {
	switch f.Sensor.Kind {
	case SensorSerial, SensorBLE, SensorMock:
	default:
		return fmt.Errorf("invalid sensor kind %q: expected %s, %s or %s", f.Sensor.Kind, SensorSerial, SensorBLE, SensorMock)
	}

	if _, err := f.Tick(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(f.Displays))
	for _, d := range f.Displays {
		if d.Name == "" {
			return fmt.Errorf("display with empty name")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate display %q", d.Name)
		}
		seen[d.Name] = true
		if d.Surfaces < 0 {
			return fmt.Errorf("display %q: negative surface count %d", d.Name, d.Surfaces)
		}
	}

	if f.Sensor.BLE.WheelCircumference <= 0 {
		return fmt.Errorf("wheel circumference must be positive, got %v", f.Sensor.BLE.WheelCircumference)
	}
	return nil
}

// Tick parses TickPeriod.
func (f *File) Tick() (time.Duration, error) {
	d, err := time.ParseDuration(f.TickPeriod)
	if err != nil {
		return 0, fmt.Errorf("invalid tick period %q: %w", f.TickPeriod, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick period must be positive, got %v", d)
	}
	return d, nil
}
