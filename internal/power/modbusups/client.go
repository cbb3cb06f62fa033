// internal/power/modbusups/client.go
package modbusups

import (
	"errors"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// TransportConfig selects Modbus TCP or RTU.
type TransportConfig struct {
	Endpoint string // host:port (tcp) or serial device (rtu)
	Mode     string // tcp | rtu
	BaudRate int
	UnitID   uint8
	Timeout  time.Duration
}

// RegisterClient implements Client on top of goburrow/modbus.
// Requests are serialized; the handler reconnects on its own after transport death.
type RegisterClient struct {
	mu     sync.Mutex
	closer func() error
	client modbus.Client
}

// Dial builds a handler for the configured transport and connects once.
func Dial(cfg TransportConfig) (*RegisterClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbusups: endpoint required")
	}

	switch cfg.Mode {
	case "", "tcp":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, err
		}
		return &RegisterClient{closer: h.Close, client: modbus.NewClient(h)}, nil

	case "rtu":
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.BaudRate = cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, err
		}
		return &RegisterClient{closer: h.Close, client: modbus.NewClient(h)}, nil

	default:
		return nil, errors.New("modbusups: unknown mode " + cfg.Mode)
	}
}

// Close closes the underlying transport.
func (c *RegisterClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closer()
}

func (c *RegisterClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(b), nil
}

func (c *RegisterClient) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(b), nil
}

// unpackRegisters converts big-endian register bytes into words.
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
