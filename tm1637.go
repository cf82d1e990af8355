package tm1637

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/flavioheleno/tm1637/segment"
	"github.com/flavioheleno/tm1637/twowire"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

const (
	// Digits is the number of cells in the display memory.
	Digits = 4
	// MaxBrightness is the brightest pulse width setting.
	MaxBrightness = 7
)

// Command bytes from the TM1637 datasheet.
const (
	cmdData        = 0x40 // data write, auto-increment address
	cmdDataFixed   = 0x44 // data write, fixed address
	cmdAddress     = 0xC0 // address of cell 0
	cmdDisplayOff  = 0x80
	cmdDisplayOn   = 0x88 // ORed with the brightness
	brightnessMask = 0x07
	addressMask    = 0x0F
)

// ErrNoAck indicates the display did not acknowledge a byte. It is only
// returned when Opts.RequireAck is set.
var ErrNoAck = errors.New("tm1637: no acknowledgement")

// Registers is the bus capability the driver needs. *twowire.Protocol
// implements it.
type Registers interface {
	WriteCommand(cmd byte) (twowire.Acks, error)
	WriteRegisterBuffer(reg byte, data []byte) (twowire.Acks, error)
}

// Opts is the configuration for the TM1637 display.
type Opts struct {
	// Initial brightness, 0 to MaxBrightness. A nil Opts uses MaxBrightness.
	Brightness int

	// Bus timing; see twowire.Opts. Zero values use twowire.DefaultFreq.
	Hold time.Duration
	Freq physic.Frequency

	// Treat a missing acknowledgement as ErrNoAck instead of ignoring it.
	// Many modules never drive DIO during the ack slot.
	RequireAck bool
}

// Dev is the device handle for the TM1637 display.
//
// Dev is safe for concurrent use; calls are serialized.
type Dev struct {
	mu sync.Mutex

	// Communication
	r Registers
	c io.Closer

	// Display memory as last written to the device
	buf [Digits]byte

	brightness int
	strict     bool

	// State
	halted bool
	closed bool
}

var _ conn.Resource = &Dev{}

// Open claims the pins registered under clk and dio in periph's gpioreg and
// initializes the display.
func Open(clk, dio string, opts *Opts) (*Dev, error) {
	opts, err := validate(opts)
	if err != nil {
		return nil, err
	}
	b, err := twowire.Open(clk, dio, busOpts(opts))
	if err != nil {
		return nil, err
	}
	p := twowire.NewProtocol(b, Digits)
	return New(p, p, opts)
}

// NewPins initializes the display on two already resolved pins.
func NewPins(clk, dio twowire.Pin, opts *Opts) (*Dev, error) {
	opts, err := validate(opts)
	if err != nil {
		return nil, err
	}
	cl, err := twowire.NewLine(clk)
	if err != nil {
		return nil, err
	}
	dl, err := twowire.NewLine(dio)
	if err != nil {
		cl.Close()
		return nil, err
	}
	b, err := twowire.New(cl, dl, busOpts(opts))
	if err != nil {
		return nil, err
	}
	p := twowire.NewProtocol(b, Digits)
	return New(p, p, opts)
}

// New initializes a display reached through r: the display memory is cleared
// and the display turned on at the configured brightness.
//
// c, if not nil, is closed by Close and when initialization fails.
func New(r Registers, c io.Closer, opts *Opts) (*Dev, error) {
	opts, err := validate(opts)
	if err != nil {
		if c != nil {
			c.Close()
		}
		return nil, err
	}
	d := &Dev{
		r:          r,
		c:          c,
		brightness: opts.Brightness,
		strict:     opts.RequireAck,
	}
	if err := d.init(); err != nil {
		if c != nil {
			c.Close()
		}
		return nil, err
	}
	return d, nil
}

func validate(opts *Opts) (*Opts, error) {
	if opts == nil {
		return &Opts{Brightness: MaxBrightness}, nil
	}
	if opts.Brightness < 0 || opts.Brightness > MaxBrightness {
		return nil, fmt.Errorf("%w: tm1637: brightness %d outside [0, %d]", twowire.ErrInvalidArgument, opts.Brightness, MaxBrightness)
	}
	return opts, nil
}

func busOpts(opts *Opts) *twowire.Opts {
	return &twowire.Opts{
		Hold:  opts.Hold,
		Freq:  opts.Freq,
		Order: twowire.LSBFirst,
	}
}

// init clears the display memory and turns the display on.
func (d *Dev) init() error {
	var blank [Digits]byte
	if err := d.writeBuffer(blank); err != nil {
		return err
	}
	if err := d.setBrightness(d.brightness); err != nil {
		return err
	}
	twowire.LogDebug(twowire.ComponentDevice, "initialized", "dev", d.String(), "brightness", d.brightness)
	return nil
}

// WriteCommand sends a raw command byte.
func (d *Dev) WriteCommand(cmd byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	return d.acked(d.r.WriteCommand(cmd))
}

// WriteRegisterBuffer sends data to the register reg in one transaction. At
// most Digits bytes are accepted.
func (d *Dev) WriteRegisterBuffer(reg byte, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	if len(data) > Digits {
		return fmt.Errorf("%w: tm1637: %d bytes exceed %d cells", twowire.ErrInvalidArgument, len(data), Digits)
	}
	return d.acked(d.r.WriteRegisterBuffer(reg, data))
}

// SetBrightness turns the display on at level, 0 (dimmest) to MaxBrightness.
// It also resumes a halted display.
func (d *Dev) SetBrightness(level int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(true); err != nil {
		return err
	}
	if level < 0 || level > MaxBrightness {
		return fmt.Errorf("%w: tm1637: brightness %d outside [0, %d]", twowire.ErrInvalidArgument, level, MaxBrightness)
	}
	if err := d.setBrightness(level); err != nil {
		return err
	}
	d.brightness = level
	d.halted = false
	return nil
}

// setBrightness sends the display control command followed by the same command
// carrying level. The chip takes one command byte per start/stop frame, so the
// two bytes are separate transactions; the display runs at level 0 between them.
func (d *Dev) setBrightness(level int) error {
	cmd, err := twowire.Pack(cmdDisplayOn, byte(level), brightnessMask)
	if err != nil {
		return err
	}
	if err := d.acked(d.r.WriteCommand(cmdDisplayOn)); err != nil {
		return err
	}
	return d.acked(d.r.WriteCommand(cmd))
}

// Brightness returns the current brightness level.
func (d *Dev) Brightness() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

// Display shows s left aligned, keeping the colon state. s may hold up to
// Digits symbols from the segment font.
func (d *Dev) Display(s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	return d.display(s)
}

func (d *Dev) display(s string) error {
	cells, err := segment.Encode(s, Digits)
	if err != nil {
		return fmt.Errorf("%w: tm1637: %w", twowire.ErrInvalidArgument, err)
	}
	var buf [Digits]byte
	copy(buf[:], cells)
	if d.buf[1]&segment.Colon != 0 {
		buf[1] |= segment.Colon
	}
	return d.writeBuffer(buf)
}

// DisplayInt shows n right aligned. n must be in [-999, 9999].
func (d *Dev) DisplayInt(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	if n < -999 || n > 9999 {
		return fmt.Errorf("%w: tm1637: %d does not fit in %d digits", twowire.ErrInvalidArgument, n, Digits)
	}
	s := strconv.Itoa(n)
	for len(s) < Digits {
		s = " " + s
	}
	return d.display(s)
}

// SetColon turns the colon between the second and third digit on or off.
func (d *Dev) SetColon(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	buf := d.buf
	if on {
		buf[1] |= segment.Colon
	} else {
		buf[1] &^= segment.Colon
	}
	return d.writeBuffer(buf)
}

// WriteSegments writes raw segment patterns starting at the first cell. Cells
// past len(p) are blanked.
func (d *Dev) WriteSegments(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	if len(p) > Digits {
		return fmt.Errorf("%w: tm1637: %d bytes exceed %d cells", twowire.ErrInvalidArgument, len(p), Digits)
	}
	var buf [Digits]byte
	copy(buf[:], p)
	return d.writeBuffer(buf)
}

// SetDigit writes one cell using fixed address mode.
func (d *Dev) SetDigit(pos int, seg byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	if pos < 0 || pos >= Digits {
		return fmt.Errorf("%w: tm1637: cell %d outside [0, %d]", twowire.ErrInvalidArgument, pos, Digits-1)
	}
	addr, err := twowire.Pack(cmdAddress, byte(pos), addressMask)
	if err != nil {
		return err
	}
	if err := d.acked(d.r.WriteCommand(cmdDataFixed)); err != nil {
		return err
	}
	if err := d.acked(d.r.WriteRegisterBuffer(addr, []byte{seg})); err != nil {
		return err
	}
	d.buf[pos] = seg
	return nil
}

// Clear blanks every cell and the colon.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(false); err != nil {
		return err
	}
	return d.writeBuffer([Digits]byte{})
}

// Buffer returns the display memory as last written.
func (d *Dev) Buffer() [Digits]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf
}

// writeBuffer sends buf to the display memory and records it on success.
func (d *Dev) writeBuffer(buf [Digits]byte) error {
	if err := d.acked(d.r.WriteCommand(cmdData)); err != nil {
		return err
	}
	if err := d.acked(d.r.WriteRegisterBuffer(cmdAddress, buf[:])); err != nil {
		return err
	}
	d.buf = buf
	twowire.LogDebug(twowire.ComponentDevice, "display updated", "cells", twowire.HexBytes(buf[:]))
	return nil
}

// Halt turns the display off. The display memory is kept; SetBrightness turns
// it back on.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("%w: tm1637: closed", twowire.ErrIllegalState)
	}
	if err := d.acked(d.r.WriteCommand(cmdDisplayOff)); err != nil {
		return err
	}
	d.halted = true
	return nil
}

// Close releases the bus and both pins. Calls after the first are no-ops. The
// display keeps showing its last content.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.c == nil {
		return nil
	}
	return d.c.Close()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	if s, ok := d.r.(fmt.Stringer); ok {
		return fmt.Sprintf("tm1637.Dev{%s}", s)
	}
	return "tm1637.Dev"
}

// usable rejects calls on a closed device, and on a halted one unless
// allowHalted is set.
func (d *Dev) usable(allowHalted bool) error {
	if d.closed {
		return fmt.Errorf("%w: tm1637: closed", twowire.ErrIllegalState)
	}
	if d.halted && !allowHalted {
		return fmt.Errorf("%w: tm1637: halted", twowire.ErrIllegalState)
	}
	return nil
}

func (d *Dev) acked(acks twowire.Acks, err error) error {
	if err != nil {
		return err
	}
	if !acks.All() {
		if d.strict {
			return ErrNoAck
		}
		twowire.LogDebug(twowire.ComponentDevice, "missing acknowledgement", "acks", fmt.Sprint(acks))
	}
	return nil
}
