package machine

import (
	"fmt"
	"strconv"
	"strings"
)

// Config describes the machine written into the knitout header.
type Config struct {
	Machine  string `mapstructure:"name" yaml:"name" json:"name"`
	Gauge    int    `mapstructure:"gauge" yaml:"gauge" json:"gauge"`
	Width    int    `mapstructure:"width" yaml:"width" json:"width"`
	Carriers int    `mapstructure:"carriers" yaml:"carriers" json:"carriers"`
	Position string `mapstructure:"position" yaml:"position" json:"position"`
}

// DefaultConfig is a 250 needle SWG091N2 at gauge 5 with ten carriers.
func DefaultConfig() Config {
	return Config{
		Machine:  "SWG091N2",
		Gauge:    5,
		Width:    250,
		Carriers: MaxCarrier,
		Position: "Center",
	}
}

// Validate checks that the configuration describes a usable machine.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("machine width must be positive, got %d", c.Width)
	}
	if c.Carriers < 1 || c.Carriers > MaxCarrier {
		return fmt.Errorf("machine carriers must be within 1..%d, got %d", MaxCarrier, c.Carriers)
	}
	if c.Gauge <= 0 {
		return fmt.Errorf("machine gauge must be positive, got %d", c.Gauge)
	}
	return nil
}

// Header returns the knitout header lines.
func (c Config) Header() []string {
	ids := make([]string, c.Carriers)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	return []string{
		";!knitout-2",
		";;Machine: " + c.Machine,
		";;Gauge: " + strconv.Itoa(c.Gauge),
		";;Width: " + strconv.Itoa(c.Width),
		";;Carriers: " + strings.Join(ids, " "),
		";;Position: " + c.Position,
	}
}
