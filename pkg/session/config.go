package session

import (
	"fmt"
	"time"
)

// Config holds the tunables for a tracking session
type Config struct {
	TickInterval time.Duration // How often Run pulls from the source
	Depth        int           // Smoothing window size (frames)
	UnifyEmpty   bool          // Send a zero face frame when no face is found
}

// DefaultConfig returns the standard 10 Hz, unsmoothed session
func DefaultConfig() Config {
	return Config{
		TickInterval: 100 * time.Millisecond,
		Depth:        1,
		UnifyEmpty:   false,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("session: tick interval must be positive, got %v", c.TickInterval)
	}
	if c.Depth < 1 {
		return fmt.Errorf("session: smoothing depth must be >= 1, got %d", c.Depth)
	}
	return nil
}
