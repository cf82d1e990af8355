// Package rpiopin exposes Raspberry Pi GPIO pins through go-rpio as
// twowire.Pin.
//
// go-rpio maps the BCM2835 GPIO registers directly, which makes level changes
// much cheaper than the character device. Call Open once before using pins and
// Close when done.
package rpiopin

import (
	"fmt"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
)

// edgePoll is how often WaitForEdge checks the event detect register.
const edgePoll = time.Millisecond

// Open maps the GPIO registers.
func Open() error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("rpiopin: %w", err)
	}
	return nil
}

// Close unmaps the GPIO registers.
func Close() error {
	return rpio.Close()
}

// Pin is a BCM GPIO pin.
type Pin struct {
	n    rpio.Pin
	edge gpio.Edge
}

// New returns BCM pin n. Open must have succeeded first.
func New(n int) (*Pin, error) {
	if n < 0 || n > 53 {
		return nil, fmt.Errorf("rpiopin: no BCM pin %d", n)
	}
	return &Pin{n: rpio.Pin(n)}, nil
}

// In configures the pin as an input with the given pull and edge detection.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.n.Input()
	switch pull {
	case gpio.PullUp:
		p.n.PullUp()
	case gpio.PullDown:
		p.n.PullDown()
	case gpio.Float:
		p.n.PullOff()
	case gpio.PullNoChange:
	default:
		return fmt.Errorf("rpiopin: unsupported pull %v", pull)
	}
	p.n.Detect(toEdge(edge))
	p.edge = edge
	return nil
}

// Out drives the pin to l.
func (p *Pin) Out(l gpio.Level) error {
	if p.edge != gpio.NoEdge {
		p.n.Detect(rpio.NoEdge)
		p.edge = gpio.NoEdge
	}
	p.n.Output()
	p.n.Write(toState(l))
	return nil
}

// Read returns the current level.
func (p *Pin) Read() gpio.Level {
	return p.n.Read() == rpio.High
}

// WaitForEdge polls the event detect register until an edge is seen or timeout
// expires. A negative timeout waits forever.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	if p.edge == gpio.NoEdge {
		return false
	}
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if p.n.EdgeDetected() {
			return true
		}
		if timeout >= 0 && !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(edgePoll)
	}
}

// Halt disables edge detection.
func (p *Pin) Halt() error {
	p.n.Detect(rpio.NoEdge)
	p.edge = gpio.NoEdge
	return nil
}

func (p *Pin) String() string {
	return fmt.Sprintf("GPIO%d", int(p.n))
}

func toState(l gpio.Level) rpio.State {
	if l == gpio.High {
		return rpio.High
	}
	return rpio.Low
}

func toEdge(e gpio.Edge) rpio.Edge {
	switch e {
	case gpio.RisingEdge:
		return rpio.RiseEdge
	case gpio.FallingEdge:
		return rpio.FallEdge
	case gpio.BothEdges:
		return rpio.AnyEdge
	}
	return rpio.NoEdge
}
