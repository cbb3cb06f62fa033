// internal/power/pisugar/client.go
package pisugar

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/tamzrod/infohud/internal/power"
)

// Monitor implements power.Monitor against a pisugar-server TCP socket.
// The server speaks a line protocol: "get battery" -> "battery: 87.4".
// One connection per sample. No retries.
type Monitor struct {
	endpoint string
	now      func() time.Time
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
}

// New creates a monitor. It does not connect.
func New(cfg Config) (*Monitor, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("pisugar: endpoint required")
	}
	return &Monitor{endpoint: cfg.Endpoint, now: time.Now}, nil
}

// Sample reads battery level and external power state.
// Any failure wraps power.ErrSensorUnavailable.
func (m *Monitor) Sample(ctx context.Context) (power.BatteryState, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", m.endpoint)
	if err != nil {
		return power.BatteryState{}, fmt.Errorf("%w: dial %s: %v", power.ErrSensorUnavailable, m.endpoint, err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	rd := bufio.NewReader(conn)

	pct, err := query(conn, rd, "battery")
	if err != nil {
		return power.BatteryState{}, err
	}
	v, err := strconv.ParseFloat(pct, 64)
	if err != nil {
		return power.BatteryState{}, fmt.Errorf("%w: battery %q: %v", power.ErrSensorUnavailable, pct, err)
	}

	plugged, err := query(conn, rd, "battery_power_plugged")
	if err != nil {
		return power.BatteryState{}, err
	}
	charging, err := query(conn, rd, "battery_charging")
	if err != nil {
		return power.BatteryState{}, err
	}

	return power.BatteryState{
		Percent:   power.ClampPercent(v),
		Charging:  plugged == "true" || charging == "true",
		SampledAt: m.now(),
	}, nil
}

// query sends "get <key>" and returns the value of the "<key>: value" reply.
func query(conn net.Conn, rd *bufio.Reader, key string) (string, error) {
	if _, err := fmt.Fprintf(conn, "get %s\n", key); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", power.ErrSensorUnavailable, key, err)
	}
	line, err := rd.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", power.ErrSensorUnavailable, key, err)
	}

	name, value, ok := strings.Cut(strings.TrimSpace(line), ":")
	if !ok || strings.TrimSpace(name) != key {
		return "", fmt.Errorf("%w: unexpected reply %q", power.ErrSensorUnavailable, line)
	}
	return strings.TrimSpace(value), nil
}
