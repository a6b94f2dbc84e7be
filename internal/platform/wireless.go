package platform

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultWirelessPath is the Linux wireless statistics file.
const DefaultWirelessPath = "/proc/net/wireless"

// wirelessLevelField is the index of the signal level column once the
// interface name is removed: status, link, level, noise, ...
const wirelessLevelField = 2

// Signal reads the Wi-Fi signal level of one interface.
type Signal struct {
	// Interface is the device name. Empty uses the first listed device.
	Interface string

	// Path overrides DefaultWirelessPath.
	Path string
}

// NewSignal creates a Signal for iface.
func NewSignal(iface string) *Signal {
	return &Signal{Interface: iface, Path: DefaultWirelessPath}
}

// RSSI returns the signal level in dBm, or 0 when it cannot be read.
func (s *Signal) RSSI() int {
	level, err := s.Level()
	if err != nil {
		return 0
	}
	return level
}

// Level returns the signal level in dBm.
func (s *Signal) Level() (int, error) {
	path := s.Path
	if path == "" {
		path = DefaultWirelessPath
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoWireless, err)
	}
	defer f.Close()

	return parseWireless(f, s.Interface)
}

// parseWireless finds iface in a /proc/net/wireless listing and returns its
// level column. Drivers report the level either in dBm or, on older
// drivers, as an unsigned byte with 256 added.
func parseWireless(r io.Reader, iface string) (int, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.Contains(name, "|") {
			continue
		}
		if iface != "" && name != iface {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) <= wirelessLevelField {
			return 0, fmt.Errorf("%w: short line for %s", ErrNoWireless, name)
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[wirelessLevelField], "."), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: level %q: %w", ErrNoWireless, fields[wirelessLevelField], err)
		}
		if level > 0 {
			level -= 256
		}
		return int(math.Round(level)), nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoWireless, err)
	}
	if iface == "" {
		return 0, ErrNoWireless
	}
	return 0, fmt.Errorf("%w: %s not listed", ErrNoWireless, iface)
}
