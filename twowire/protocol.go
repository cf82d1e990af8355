package twowire

import (
	"fmt"
)

// Transport runs framed transactions. *Bus implements it.
type Transport interface {
	Tx(w []byte) (Acks, error)
	Stop() error
	Close() error
}

// Protocol frames register operations as bus transactions.
//
// Every call is validated before the first line is touched: an invalid call
// never produces a partial write.
type Protocol struct {
	t      Transport
	max    int
	closed bool
}

// NewProtocol returns a Protocol writing at most max payload bytes per register
// write.
func NewProtocol(t Transport, max int) *Protocol {
	return &Protocol{t: t, max: max}
}

// Max returns the largest payload accepted by WriteRegisterBuffer.
func (p *Protocol) Max() int {
	return p.max
}

// WriteCommand sends cmd as a single-byte transaction.
func (p *Protocol) WriteCommand(cmd byte) (Acks, error) {
	if p.closed {
		return nil, fmt.Errorf("%w: command 0x%02X on closed protocol", ErrIllegalState, cmd)
	}
	LogDebug(ComponentProtocol, "command", "cmd", fmt.Sprintf("0x%02X", cmd))
	return p.t.Tx([]byte{cmd})
}

// WriteRegisterBuffer sends reg followed by data in one transaction.
func (p *Protocol) WriteRegisterBuffer(reg byte, data []byte) (Acks, error) {
	if p.closed {
		return nil, fmt.Errorf("%w: register 0x%02X write on closed protocol", ErrIllegalState, reg)
	}
	if len(data) > p.max {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrInvalidArgument, len(data), p.max)
	}
	w := make([]byte, 0, 1+len(data))
	w = append(w, reg)
	w = append(w, data...)
	LogDebug(ComponentProtocol, "register write", "reg", fmt.Sprintf("0x%02X", reg), "len", len(data))
	return p.t.Tx(w)
}

// Recover issues a stop condition to return the bus to idle after an aborted
// transaction.
func (p *Protocol) Recover() error {
	if p.closed {
		return fmt.Errorf("%w: recover on closed protocol", ErrIllegalState)
	}
	LogInfo(ComponentProtocol, "recovering bus")
	return p.t.Stop()
}

// Close closes the transport. Calls after the first are no-ops.
func (p *Protocol) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.t.Close()
}

func (p *Protocol) String() string {
	if s, ok := p.t.(fmt.Stringer); ok {
		return s.String()
	}
	return "twowire.Protocol"
}

// Pack combines a command class with a value limited to mask.
func Pack(class, value, mask byte) (byte, error) {
	if value&^mask != 0 {
		return 0, fmt.Errorf("%w: value %d outside [0, %d]", ErrInvalidArgument, value, mask)
	}
	if class&mask != 0 {
		return 0, fmt.Errorf("%w: class 0x%02X overlaps mask 0x%02X", ErrInvalidArgument, class, mask)
	}
	return class | value, nil
}
