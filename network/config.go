package network

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Default endpoint of the command peer
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 65432
)

// Config holds network configuration
type Config struct {
	// Endpoint to connect to
	Host string
	Port int

	// ConnectTimeout bounds the dial, zero leaves it to the OS
	ConnectTimeout time.Duration

	// ReadBufferSize is the reply scratch buffer; one byte is reserved so at most ReadBufferSize-1 are read
	ReadBufferSize int
}

// DefaultConfig returns the documented defaults
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		ConnectTimeout: 0,
		ReadBufferSize: 1024,
	}
}

// LoadConfig overlays environment variables on DefaultConfig.
// Malformed values are ignored.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if host := os.Getenv("CATCTL_HOST"); host != "" {
		cfg.Host = host
	}

	if port := os.Getenv("CATCTL_PORT"); port != "" {
		if val, err := strconv.Atoi(port); err == nil {
			cfg.Port = val
		}
	}

	if timeout := os.Getenv("CATCTL_CONNECT_TIMEOUT"); timeout != "" {
		if val, err := time.ParseDuration(timeout); err == nil && val >= 0 {
			cfg.ConnectTimeout = val
		}
	}

	return cfg
}

// Address returns host:port
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the config before any socket is created
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("port %d out of range", c.Port)
	}
	if c.ConnectTimeout < 0 {
		return errors.Errorf("negative connect timeout %s", c.ConnectTimeout)
	}
	if c.ReadBufferSize < 2 {
		return errors.Errorf("read buffer size %d too small", c.ReadBufferSize)
	}
	return nil
}
