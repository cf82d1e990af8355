package twowire

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Pin is the GPIO capability a Line drives.
//
// gpio.PinIO satisfies it, so any pin from a periph.io host driver can be used
// directly.
type Pin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Out(l gpio.Level) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
	Halt() error
	String() string
}

// Direction is the configured direction of a Line.
type Direction int

const (
	// Output drives the line to the last written level.
	Output Direction = 0
	// Input releases the line; the pull-up holds it high unless a device drives it low.
	Input Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Output:
		return "Output"
	case Input:
		return "Input"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// watchInterval bounds how long a watcher blocks in WaitForEdge before it
// checks for cancellation.
const watchInterval = 100 * time.Millisecond

// Line owns one GPIO pin.
//
// A Line is not safe for concurrent use, except that Close may be called while a
// Watch is active.
type Line struct {
	mu     sync.Mutex
	p      Pin
	dir    Direction
	level  gpio.Level
	closed bool

	// Active watcher, if any.
	stop func()
	done chan struct{}
}

// OpenLine claims the pin registered under name in periph's gpioreg.
func OpenLine(name string) (*Line, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: no pin named %q", ErrConfiguration, name)
	}
	return NewLine(p)
}

// NewLine wraps p. The line starts released (Input) until a direction is set.
func NewLine(p Pin) (*Line, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil pin", ErrConfiguration)
	}
	return &Line{p: p, dir: Input, level: gpio.High}, nil
}

// SetDirection configures the line direction. Output drives the last written
// level, Input releases the pin with a pull-up.
func (l *Line) SetDirection(d Direction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("%w: %s: set direction on closed line", ErrIllegalState, l.p)
	}
	return l.setDirection(d)
}

func (l *Line) setDirection(d Direction) error {
	var err error
	switch d {
	case Output:
		err = l.p.Out(l.level)
	case Input:
		err = l.p.In(gpio.PullUp, gpio.NoEdge)
	default:
		return fmt.Errorf("%w: %s: unknown direction %s", ErrInvalidArgument, l.p, d)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: set direction %s: %w", ErrIO, l.p, d, err)
	}
	l.dir = d
	return nil
}

// Direction returns the configured direction.
func (l *Line) Direction() Direction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dir
}

// Write drives the line to level. The line must be an Output.
func (l *Line) Write(level gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("%w: %s: write on closed line", ErrIllegalState, l.p)
	}
	if l.dir != Output {
		return fmt.Errorf("%w: %s: write on %s line", ErrIllegalState, l.p, l.dir)
	}
	if err := l.p.Out(level); err != nil {
		return fmt.Errorf("%w: %s: out %s: %w", ErrIO, l.p, level, err)
	}
	l.level = level
	return nil
}

// Read samples the line. The line must be an Input.
func (l *Line) Read() (gpio.Level, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return gpio.Low, fmt.Errorf("%w: %s: read on closed line", ErrIllegalState, l.p)
	}
	if l.dir != Input {
		return gpio.Low, fmt.Errorf("%w: %s: read on %s line", ErrIllegalState, l.p, l.dir)
	}
	return l.p.Read(), nil
}

// Watch switches the line to Input and reports edges on the returned channel.
//
// The channel holds a single event; edges arriving while it is full are
// dropped. Edge detection is turned off and the channel closed when ctx is done
// or the line is closed. Only one watch can be active at a time.
func (l *Line) Watch(ctx context.Context, edge gpio.Edge) (<-chan gpio.Level, error) {
	if edge == gpio.NoEdge {
		return nil, fmt.Errorf("%w: %s: watch needs an edge", ErrInvalidArgument, l.p)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, fmt.Errorf("%w: %s: watch on closed line", ErrIllegalState, l.p)
	}
	if l.done != nil {
		return nil, fmt.Errorf("%w: %s: already watched", ErrIllegalState, l.p)
	}
	if err := l.p.In(gpio.PullUp, edge); err != nil {
		return nil, fmt.Errorf("%w: %s: enable %v detection: %w", ErrIO, l.p, edge, err)
	}
	l.dir = Input

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan gpio.Level, 1)
	done := make(chan struct{})
	l.stop = cancel
	l.done = done
	go l.watch(ctx, ch, done)
	LogDebug(ComponentLine, "watch started", "pin", l.p.String(), "edge", edge)
	return ch, nil
}

func (l *Line) watch(ctx context.Context, ch chan<- gpio.Level, done chan<- struct{}) {
	defer close(done)
	defer close(ch)
	for ctx.Err() == nil {
		if !l.p.WaitForEdge(watchInterval) {
			continue
		}
		select {
		case ch <- l.p.Read():
		default:
		}
	}
	if err := l.p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		LogWarn(ComponentLine, "disable edge detection failed", "pin", l.p.String(), "error", err)
	}
	l.mu.Lock()
	l.stop()
	l.stop, l.done = nil, nil
	l.mu.Unlock()
	LogDebug(ComponentLine, "watch stopped", "pin", l.p.String())
}

// Close releases the pin. Calls after the first are no-ops.
func (l *Line) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	stop, done := l.stop, l.done
	l.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	if err := l.p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return fmt.Errorf("%w: %s: release: %w", ErrIO, l.p, err)
	}
	if err := l.p.Halt(); err != nil {
		return fmt.Errorf("%w: %s: halt: %w", ErrIO, l.p, err)
	}
	return nil
}

func (l *Line) String() string {
	return l.p.String()
}
