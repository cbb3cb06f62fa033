// internal/power/pisugar/client_test.go
package pisugar

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/infohud/internal/power"
)

// fakeServer answers pisugar-server queries from a fixed table.
func fakeServer(t *testing.T, replies map[string]string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				sc := bufio.NewScanner(c)
				for sc.Scan() {
					key := strings.TrimPrefix(sc.Text(), "get ")
					v, ok := replies[key]
					if !ok {
						c.Write([]byte("Invalid request.\n"))
						continue
					}
					c.Write([]byte(key + ": " + v + "\n"))
				}
			}(conn)
		}
	}()

	return ln.Addr().String()
}

func TestSample_Plugged(t *testing.T) {
	addr := fakeServer(t, map[string]string{
		"battery":               "87.4",
		"battery_power_plugged": "true",
		"battery_charging":      "false",
	})

	m, err := New(Config{Endpoint: addr})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := m.Sample(ctx)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if b.Percent != 87 || !b.Charging {
		t.Fatalf("unexpected reading %+v", b)
	}
}

func TestSample_BadReply(t *testing.T) {
	addr := fakeServer(t, map[string]string{
		"battery": "n/a",
	})

	m, _ := New(Config{Endpoint: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := m.Sample(ctx); !errors.Is(err, power.ErrSensorUnavailable) {
		t.Fatalf("expected ErrSensorUnavailable, got %v", err)
	}
}

func TestSample_NoServer(t *testing.T) {
	ln, _ := net.Listen("tcp", "127.0.0.1:0")
	addr := ln.Addr().String()
	ln.Close()

	m, _ := New(Config{Endpoint: addr})
	if _, err := m.Sample(context.Background()); !errors.Is(err, power.ErrSensorUnavailable) {
		t.Fatalf("expected ErrSensorUnavailable, got %v", err)
	}
}
