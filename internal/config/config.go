// Package config provides environment helpers for wekbridge commands.
package config

import (
	"os"
	"strconv"
)

// Defaults used when the environment does not override them.
const (
	DefaultHTTPPort      = 3000
	DefaultWekinatorHost = "127.0.0.1"
	DefaultWekinatorPort = 6448
	DefaultLogLevel      = "info"
	DefaultRelayURL      = "ws://localhost:3000/ws/capture"
)

// HTTPPort returns the web server port from PORT or the default.
func HTTPPort() int {
	return intEnv("PORT", DefaultHTTPPort)
}

// WekinatorHost returns the OSC target host from WEKINATOR_HOST.
func WekinatorHost() string {
	return stringEnv("WEKINATOR_HOST", DefaultWekinatorHost)
}

// WekinatorPort returns the OSC target port from WEKINATOR_PORT.
func WekinatorPort() int {
	return intEnv("WEKINATOR_PORT", DefaultWekinatorPort)
}

// LogLevel returns LOG_LEVEL or "info".
func LogLevel() string {
	return stringEnv("LOG_LEVEL", DefaultLogLevel)
}

// RelayURL returns the capture websocket URL from RELAY_URL.
func RelayURL() string {
	return stringEnv("RELAY_URL", DefaultRelayURL)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intEnv falls back to def when the variable is unset or not an integer.
func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
