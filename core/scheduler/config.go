package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// fleetFile is the on-disk shape of a fleet. Windows are HH:MM clock
// strings so roster clerks can edit the file by hand.
type fleetFile struct {
	Drivers []struct {
		ID      string `json:"id" yaml:"id"`
		Windows []struct {
			From string `json:"from" yaml:"from"`
			To   string `json:"to" yaml:"to"`
		} `json:"windows" yaml:"windows"`
	} `json:"drivers" yaml:"drivers"`
}

// LoadFleet loads a fleet description from a JSON or YAML file, chosen by
// extension.
func LoadFleet(path string) (Fleet, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fleet{}, err
	}
	defer f.Close()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	fleet, err := DecodeFleet(f, format)
	if err != nil {
		return Fleet{}, fmt.Errorf("fleet %s: %w", path, err)
	}
	return fleet, nil
}

// DecodeFleet reads from r to decode a fleet description. A driver without
// windows is treated as available all day.
func DecodeFleet(r io.Reader, format string) (Fleet, error) {
	var ff fleetFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&ff); err != nil {
			return Fleet{}, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&ff); err != nil {
			return Fleet{}, err
		}
	default:
		return Fleet{}, fmt.Errorf("unsupported fleet format: %s", format)
	}

	fleet := Fleet{Drivers: make([]Driver, 0, len(ff.Drivers))}
	seen := make(map[string]struct{}, len(ff.Drivers))
	for _, d := range ff.Drivers {
		if d.ID == "" {
			return Fleet{}, errors.New("driver without id")
		}
		if _, ok := seen[d.ID]; ok {
			return Fleet{}, fmt.Errorf("duplicate driver %s", d.ID)
		}
		seen[d.ID] = struct{}{}
		drv := Driver{ID: d.ID}
		for _, w := range d.Windows {
			from, err := ParseClock(w.From)
			if err != nil {
				return Fleet{}, fmt.Errorf("driver %s: %w", d.ID, err)
			}
			to, err := ParseClock(w.To)
			if err != nil {
				return Fleet{}, fmt.Errorf("driver %s: %w", d.ID, err)
			}
			if to <= from {
				return Fleet{}, fmt.Errorf("driver %s: window %s-%s is empty", d.ID, w.From, w.To)
			}
			drv.Windows = append(drv.Windows, Window{Start: from, End: to})
		}
		if len(drv.Windows) == 0 {
			drv.Windows = []Window{{Start: 0, End: 48 * 60}}
		}
		fleet.Drivers = append(fleet.Drivers, drv)
	}
	return fleet, nil
}

// ParseClock converts an HH:MM clock string to minutes from midnight. Hours
// up to 47 are accepted for blocks running past midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 47 {
		return 0, fmt.Errorf("bad clock %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad clock %q", s)
	}
	return h*60 + m, nil
}
