// internal/power/i2cgauge/bus.go
package i2cgauge

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// periph buses already expose Tx(addr, w, r); this only narrows the type.
var _ drivers.I2C = (i2c.Bus)(nil)

// OpenHostBus initializes periph host drivers and opens an I2C bus by name.
// An empty name opens the first available bus.
// The returned closer releases the bus.
func OpenHostBus(name string) (drivers.I2C, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("i2cgauge: host init: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("i2cgauge: open bus %q: %w", name, err)
	}
	return bus, bus.Close, nil
}
