package wekinator

import (
	"fmt"
	"net"
	"strconv"
)

// Default Wekinator input endpoint
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 6448
)

// Config holds the OSC target
type Config struct {
	Host string
	Port int
}

// DefaultConfig returns the standard Wekinator input endpoint
func DefaultConfig() Config {
	return Config{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}

// Validate checks the host and port
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("wekinator: host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("wekinator: port %d out of range", c.Port)
	}
	return nil
}

// Target returns host:port
func (c Config) Target() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
