package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"brake-hud.klederson.com/internal/config"
	"brake-hud.klederson.com/internal/monitoring"
	"tinygo.org/x/bluetooth"
)

// Cycling Speed and Cadence service and its measurement characteristic.
var (
	cscServiceUUID     = bluetooth.New16BitUUID(0x1816)
	cscMeasurementUUID = bluetooth.New16BitUUID(0x2A5B)
)

var errNoCSC = errors.New("device has no cycling speed measurement characteristic")

// BLEControllers scans for timeout and returns the advertised names of the
// devices seen, in discovery order.
func BLEControllers(adapter *bluetooth.Adapter, timeout time.Duration) ([]string, error) {
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	var names []string
	seen := make(map[string]bool)
	stop := time.AfterFunc(timeout, func() { _ = adapter.StopScan() })
	defer stop.Stop()

	err := adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		name := result.LocalName()
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	})
	if err != nil {
		return nil, fmt.Errorf("BLE scan: %w", err)
	}
	return names, nil
}

// BLESensor derives speed from the wheel revolutions reported by a
// Bluetooth cycling speed sensor.
type BLESensor struct {
	name    string
	device  bluetooth.Device
	decoder *CSCDecoder
	latest  *latest
}

// ConnectBLE scans for the device advertising name, connects to it and
// subscribes to its speed measurements.
func ConnectBLE(adapter *bluetooth.Adapter, name string, circumference float64, timeout time.Duration) (*BLESensor, error) {
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	var (
		addr  bluetooth.Address
		found bool
	)
	stop := time.AfterFunc(timeout, func() { _ = adapter.StopScan() })
	defer stop.Stop()

	err := adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
		if result.LocalName() != name {
			return
		}
		addr = result.Address
		found = true
		_ = a.StopScan()
	})
	if err != nil {
		return nil, fmt.Errorf("BLE scan: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("BLE device %q not seen within %v", name, timeout)
	}

	device, err := adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("connecting to %q: %w", name, err)
	}

	s := &BLESensor{
		name:    name,
		device:  device,
		decoder: NewCSCDecoder(circumference),
		latest:  newLatest(config.SensorStaleAfter),
	}
	if err := s.subscribe(); err != nil {
		_ = device.Disconnect()
		return nil, err
	}
	return s, nil
}

func (s *BLESensor) subscribe() error {
	services, err := s.device.DiscoverServices([]bluetooth.UUID{cscServiceUUID})
	if err != nil {
		return fmt.Errorf("discovering services on %q: %w", s.name, err)
	}
	if len(services) == 0 {
		return errNoCSC
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{cscMeasurementUUID})
	if err != nil {
		return fmt.Errorf("discovering characteristics on %q: %w", s.name, err)
	}
	if len(chars) == 0 {
		return errNoCSC
	}
	return chars[0].EnableNotifications(s.handle)
}

func (s *BLESensor) handle(buf []byte) {
	speed, ok, err := s.decoder.Decode(buf)
	if err != nil {
		monitoring.Logf("ble %s: %v", s.name, err)
		return
	}
	if ok {
		s.latest.set(speed)
	}
}

func (s *BLESensor) Name() string { return s.name }

// CurrentSpeed returns the speed computed from the latest measurement.
func (s *BLESensor) CurrentSpeed() (float64, error) {
	return s.latest.get()
}

// Close disconnects from the device.
func (s *BLESensor) Close() error {
	return s.device.Disconnect()
}

// CSCDecoder turns successive CSC Measurement notifications into speeds.
// Wheel revolutions are cumulative (uint32) and the last wheel event time
// counts in 1/1024 s (uint16); both roll over.
type CSCDecoder struct {
	mu            sync.Mutex
	circumference float64
	primed        bool
	revs          uint32
	eventTime     uint16
}

// NewCSCDecoder creates a decoder for a wheel of the given circumference in
// metres.
func NewCSCDecoder(circumference float64) *CSCDecoder {
	return &CSCDecoder{circumference: circumference}
}

const cscWheelPresent = 0x01

// Decode returns the speed since the previous measurement. ok is false for
// the first measurement, for packets without wheel data and for packets that
// repeat the previous wheel event. A slow wheel can go several notifications
// without completing a revolution, so a repeat keeps the last speed; a wheel
// that has really stopped shows up as a stale reading.
func (d *CSCDecoder) Decode(buf []byte) (speed float64, ok bool, err error) {
	if len(buf) < 1 {
		return 0, false, fmt.Errorf("empty CSC measurement")
	}
	flags := buf[0]
	if flags&cscWheelPresent == 0 {
		return 0, false, nil
	}
	if len(buf) < 7 {
		return 0, false, fmt.Errorf("short CSC measurement: %d bytes", len(buf))
	}

	revs := binary.LittleEndian.Uint32(buf[1:5])
	eventTime := binary.LittleEndian.Uint16(buf[5:7])

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.primed {
		d.revs, d.eventTime, d.primed = revs, eventTime, true
		return 0, false, nil
	}

	dTicks := eventTime - d.eventTime
	if dTicks == 0 {
		return 0, false, nil
	}
	dRevs := revs - d.revs
	d.revs, d.eventTime = revs, eventTime

	seconds := float64(dTicks) / 1024
	return float64(dRevs) * d.circumference / seconds, true, nil
}
