package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rus1K7/Airport/internal/flights"
	"gopkg.in/yaml.v3"
)

type scheduleFile struct {
	Timeline flights.Timeline `yaml:"timeline"`
	Flights  []scheduleEntry  `yaml:"flights"`
}

type scheduleEntry struct {
	ID        string        `yaml:"id"`
	From      string        `yaml:"from"`
	To        string        `yaml:"to"`
	Departure time.Time     `yaml:"departure"`
	Duration  time.Duration `yaml:"duration"`
	Capacity  int           `yaml:"capacity"`
	VIPSeats  *int          `yaml:"vip_seats"`
}

// ParseSchedule decodes a YAML schedule. Timeline keys that are absent
// keep their defaults; flights without capacity or VIP seats use the
// given defaults.
func ParseSchedule(data []byte, capacity, vipSeats int) (flights.Timeline, []flights.Spec, error) {
	doc := scheduleFile{Timeline: flights.DefaultTimeline()}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return flights.Timeline{}, nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	if err := doc.Timeline.Validate(); err != nil {
		return flights.Timeline{}, nil, err
	}
	if len(doc.Flights) == 0 {
		return flights.Timeline{}, nil, fmt.Errorf("schedule lists no flights")
	}

	seen := make(map[string]bool, len(doc.Flights))
	specs := make([]flights.Spec, 0, len(doc.Flights))
	for i, e := range doc.Flights {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return flights.Timeline{}, nil, fmt.Errorf("schedule entry %d has no id", i+1)
		}
		if seen[id] {
			return flights.Timeline{}, nil, fmt.Errorf("schedule lists flight %s twice", id)
		}
		seen[id] = true

		spec := flights.Spec{
			ID:            id,
			From:          e.From,
			To:            e.To,
			ScheduledTime: e.Departure,
			Duration:      e.Duration,
			Capacity:      e.Capacity,
			VIPSeats:      vipSeats,
		}
		if spec.Capacity == 0 {
			spec.Capacity = capacity
		}
		if e.VIPSeats != nil {
			spec.VIPSeats = *e.VIPSeats
		}
		if spec.VIPSeats > spec.Capacity {
			return flights.Timeline{}, nil, fmt.Errorf("flight %s: vip seats %d exceed capacity %d", id, spec.VIPSeats, spec.Capacity)
		}
		specs = append(specs, spec)
	}
	return doc.Timeline, specs, nil
}

func (c *Config) loadSchedule(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schedule %s: %w", path, err)
	}
	timeline, specs, err := ParseSchedule(data, c.DefaultCapacity, c.DefaultVIPSeats)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", path, err)
	}
	c.Timeline = timeline
	c.Flights = specs
	return nil
}
