// Package config holds the construction run's ambient configuration: the
// status server's bind address and auth secret, and the worker pool's
// size and dimensionality, all overridable from the environment.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds every environment-overridable setting a construction or
// evaluation run needs outside of its CLI flags.
type Config struct {
	Server  ServerConfig
	Workers WorkerConfig
}

// ServerConfig holds the status/metrics HTTP server's configuration.
type ServerConfig struct {
	Host            string        // Status server host (default: "127.0.0.1")
	Port            int           // Status server port (default: 9090)
	RequestTimeout  time.Duration // Per-request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	JWTSecret       string        // HMAC secret guarding /status; empty disables auth
}

// WorkerConfig holds the construction worker pool's configuration.
type WorkerConfig struct {
	NumCores   int // Worker count; 0 means runtime.GOMAXPROCS(0)
	Dimensions int // Fixed coordinate dimension D (default: 100)
}

// Default returns the baseline configuration before any environment
// overrides are applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            9090,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Workers: WorkerConfig{
			NumCores:   0,
			Dimensions: 100,
		},
	}
}

// LoadFromEnv applies environment-variable overrides on top of Default.
func LoadFromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("VECTOR_STATUS_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("VECTOR_STATUS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if timeout := os.Getenv("VECTOR_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if timeout := os.Getenv("VECTOR_SHUTDOWN_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.ShutdownTimeout = t
		}
	}
	if secret := os.Getenv("VECTOR_JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}

	if numCores := os.Getenv("NUM_CORES"); numCores != "" {
		if n, err := strconv.Atoi(numCores); err == nil {
			cfg.Workers.NumCores = n
		}
	}
	if dims := os.Getenv("VECTOR_DIMENSIONS"); dims != "" {
		if d, err := strconv.Atoi(dims); err == nil {
			cfg.Workers.Dimensions = d
		}
	}

	return cfg
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid status server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Workers.NumCores < 0 {
		return fmt.Errorf("invalid worker count: %d (must be >= 0)", c.Workers.NumCores)
	}
	if c.Workers.Dimensions < 1 {
		return fmt.Errorf("invalid dimensions: %d (must be > 0)", c.Workers.Dimensions)
	}
	return nil
}

// Address returns the status server's bind address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ResolvedWorkerCount returns NumCores if set, otherwise
// runtime.GOMAXPROCS(0), the conventional "0 means let the runtime
// decide" sizing rule.
func (w *WorkerConfig) ResolvedWorkerCount() int {
	if w.NumCores > 0 {
		return w.NumCores
	}
	return runtime.GOMAXPROCS(0)
}
