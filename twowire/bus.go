package twowire

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DefaultFreq is the bus clock used when Opts sets neither Hold nor Freq.
const DefaultFreq = 100 * physic.KiloHertz

// BitOrder is the order in which the bits of a byte are shifted out.
type BitOrder int

const (
	// MSBFirst shifts bit 7 first.
	MSBFirst BitOrder = 0
	// LSBFirst shifts bit 0 first.
	LSBFirst BitOrder = 1
)

func (o BitOrder) String() string {
	switch o {
	case MSBFirst:
		return "MSBFirst"
	case LSBFirst:
		return "LSBFirst"
	}
	return fmt.Sprintf("BitOrder(%d)", int(o))
}

// Opts is the configuration of a Bus.
type Opts struct {
	// Hold is the minimum time the lines are held after every transition.
	// It takes precedence over Freq.
	Hold time.Duration
	// Freq is the nominal clock rate; the hold time is half its period.
	Freq physic.Frequency
	// Order is the bit order on the wire (default MSBFirst).
	Order BitOrder
}

// Acks holds the acknowledgement sampled after each byte of a transaction.
// A false entry means DIO stayed high; many devices never drive it.
type Acks []bool

// All reports whether every byte was acknowledged.
func (a Acks) All() bool {
	for _, ack := range a {
		if !ack {
			return false
		}
	}
	return true
}

// Bus drives a clock and a data line to emulate an I²C-like two-wire bus.
//
// A Bus owns both lines. It keeps no state between transactions and callers
// must not run two transactions on the same Bus concurrently. If any call
// returns ErrIO the transaction is aborted with the lines in an undefined
// state; call Stop before the next Start.
type Bus struct {
	clk   *Line
	dio   *Line
	hold  time.Duration
	order BitOrder
	sleep func(time.Duration)

	closed bool
}

// Open claims the pins registered under clk and dio and returns an idle Bus.
func Open(clk, dio string, opts *Opts) (*Bus, error) {
	c, err := OpenLine(clk)
	if err != nil {
		return nil, err
	}
	d, err := OpenLine(dio)
	if err != nil {
		c.Close()
		return nil, err
	}
	return New(c, d, opts)
}

// New takes ownership of clk and dio, drives both high and returns an idle Bus.
//
// opts can be nil to use DefaultFreq and MSBFirst. On error both lines are
// closed.
func New(clk, dio *Line, opts *Opts) (*Bus, error) {
	b, err := newBus(clk, dio, opts)
	if err != nil {
		closeLines(clk, dio)
		return nil, err
	}
	for _, l := range []*Line{clk, dio} {
		if err := l.SetDirection(Output); err != nil {
			closeLines(clk, dio)
			return nil, err
		}
	}
	LogDebug(ComponentBus, "opened", "clk", clk.String(), "dio", dio.String(), "hold", b.hold, "order", b.order.String())
	return b, nil
}

func newBus(clk, dio *Line, opts *Opts) (*Bus, error) {
	if clk == nil || dio == nil {
		return nil, fmt.Errorf("%w: both clk and dio lines are required", ErrConfiguration)
	}
	if clk == dio {
		return nil, fmt.Errorf("%w: clk and dio must be different lines", ErrConfiguration)
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.Hold < 0 || opts.Freq < 0 {
		return nil, fmt.Errorf("%w: negative hold time or frequency", ErrConfiguration)
	}
	if opts.Order != MSBFirst && opts.Order != LSBFirst {
		return nil, fmt.Errorf("%w: unknown bit order %s", ErrConfiguration, opts.Order)
	}
	hold := opts.Hold
	if hold == 0 {
		f := opts.Freq
		if f == 0 {
			f = DefaultFreq
		}
		hold = f.Period() / 2
	}
	return &Bus{
		clk:   clk,
		dio:   dio,
		hold:  hold,
		order: opts.Order,
		sleep: time.Sleep,
	}, nil
}

func closeLines(lines ...*Line) {
	for _, l := range lines {
		if l != nil {
			l.Close()
		}
	}
}

// Hold returns the minimum hold time after each transition.
func (b *Bus) Hold() time.Duration {
	return b.hold
}

// Start issues a start condition: DIO falls while CLK is high.
func (b *Bus) Start() error {
	if b.closed {
		return fmt.Errorf("%w: start on closed bus", ErrIllegalState)
	}
	if err := b.set(b.dio, gpio.High); err != nil {
		return err
	}
	if err := b.set(b.clk, gpio.High); err != nil {
		return err
	}
	return b.set(b.dio, gpio.Low)
}

// WriteByte shifts v out and samples the acknowledgement.
//
// Each bit is placed on DIO while CLK is low and latched by a CLK pulse. A
// ninth pulse samples DIO with the line released: low means the device
// acknowledged. A missing ack is not an error; the call always ends after nine
// pulses.
func (b *Bus) WriteByte(v byte) (bool, error) {
	if b.closed {
		return false, fmt.Errorf("%w: write on closed bus", ErrIllegalState)
	}
	for i := 0; i < 8; i++ {
		if err := b.set(b.clk, gpio.Low); err != nil {
			return false, err
		}
		if err := b.set(b.dio, b.bit(v, i)); err != nil {
			return false, err
		}
		if err := b.set(b.clk, gpio.High); err != nil {
			return false, err
		}
	}

	if err := b.set(b.clk, gpio.Low); err != nil {
		return false, err
	}
	if err := b.dio.SetDirection(Input); err != nil {
		return false, err
	}
	b.sleep(b.hold)
	if err := b.set(b.clk, gpio.High); err != nil {
		return false, err
	}
	l, err := b.dio.Read()
	if err != nil {
		return false, err
	}
	if err := b.set(b.clk, gpio.Low); err != nil {
		return false, err
	}
	if err := b.dio.SetDirection(Output); err != nil {
		return false, err
	}
	b.sleep(b.hold)
	return l == gpio.Low, nil
}

// Stop issues a stop condition: DIO rises while CLK is high. It also serves as
// the recovery sequence after an aborted transaction, so a line left released
// by an abort in the ack slot is driven again first.
func (b *Bus) Stop() error {
	if b.closed {
		return fmt.Errorf("%w: stop on closed bus", ErrIllegalState)
	}
	for _, l := range []*Line{b.clk, b.dio} {
		if l.Direction() == Output {
			continue
		}
		if err := l.SetDirection(Output); err != nil {
			return err
		}
		b.sleep(b.hold)
	}
	if err := b.set(b.clk, gpio.Low); err != nil {
		return err
	}
	if err := b.set(b.dio, gpio.Low); err != nil {
		return err
	}
	if err := b.set(b.clk, gpio.High); err != nil {
		return err
	}
	return b.set(b.dio, gpio.High)
}

// Tx runs one framed transaction: start, every byte of w, stop.
//
// The returned Acks has one entry per byte written. On error the transaction
// is aborted without a stop condition and Acks covers the bytes completed.
func (b *Bus) Tx(w []byte) (Acks, error) {
	if b.closed {
		return nil, fmt.Errorf("%w: transaction on closed bus", ErrIllegalState)
	}
	acks := make(Acks, 0, len(w))
	if err := b.Start(); err != nil {
		return acks, err
	}
	for _, v := range w {
		ack, err := b.WriteByte(v)
		if err != nil {
			LogDebug(ComponentBus, "transaction aborted", "written", len(acks), "error", err)
			return acks, err
		}
		acks = append(acks, ack)
	}
	if err := b.Stop(); err != nil {
		return acks, err
	}
	LogDebug(ComponentBus, "transaction", "bytes", HexBytes(w), "acks", acks.All())
	return acks, nil
}

// Close releases both lines. Calls after the first are no-ops.
func (b *Bus) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	LogDebug(ComponentBus, "closed", "clk", b.clk.String(), "dio", b.dio.String())
	return errors.Join(b.clk.Close(), b.dio.Close())
}

func (b *Bus) String() string {
	return fmt.Sprintf("twowire.Bus{clk: %s, dio: %s}", b.clk, b.dio)
}

// set drives l to v and holds.
func (b *Bus) set(l *Line, v gpio.Level) error {
	if err := l.Write(v); err != nil {
		return err
	}
	b.sleep(b.hold)
	return nil
}

// bit returns the i-th bit of v in wire order.
func (b *Bus) bit(v byte, i int) gpio.Level {
	if b.order == LSBFirst {
		return v&(1<<uint(i)) != 0
	}
	return v&(0x80>>uint(i)) != 0
}
