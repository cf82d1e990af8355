package twowire

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
)

type opKind int

const (
	opOut opKind = iota
	opIn
	opRead
	opHalt
)

func (k opKind) String() string {
	switch k {
	case opOut:
		return "OUT"
	case opIn:
		return "IN"
	case opRead:
		return "READ"
	case opHalt:
		return "HALT"
	}
	return "unknown op"
}

type pinOp struct {
	pin   string
	kind  opKind
	level gpio.Level
	edge  gpio.Edge
}

func (o pinOp) String() string {
	return fmt.Sprintf("%s %s %s", o.pin, o.kind, o.level)
}

// wire is the shared, ordered log of every operation on a set of fake pins.
type wire struct {
	mu  sync.Mutex
	ops []pinOp
}

func (w *wire) add(o pinOp) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ops = append(w.ops, o)
}

func (w *wire) snapshot() []pinOp {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]pinOp(nil), w.ops...)
}

func (w *wire) count(kind opKind) int {
	n := 0
	for _, o := range w.snapshot() {
		if o.kind == kind {
			n++
		}
	}
	return n
}

// fakePin records into a wire. When released (In) it reads low only if ack is
// set, emulating a device pulling DIO low against the pull-up.
type fakePin struct {
	name string
	w    *wire

	mu      sync.Mutex
	level   gpio.Level
	input   bool
	ack     bool
	outErr  error
	failOut int // Out calls that succeed before outErr is returned; <0 never fails
	outs    int
	halts   int
	edges   chan gpio.Level
}

func newFakePin(name string, w *wire) *fakePin {
	return &fakePin{name: name, w: w, level: gpio.High, failOut: -1}
}

func (p *fakePin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	p.input = true
	p.mu.Unlock()
	p.w.add(pinOp{pin: p.name, kind: opIn, edge: edge})
	return nil
}

func (p *fakePin) Out(l gpio.Level) error {
	p.mu.Lock()
	if p.failOut >= 0 && p.outs >= p.failOut {
		p.mu.Unlock()
		return p.outErr
	}
	p.outs++
	p.input = false
	p.level = l
	p.mu.Unlock()
	p.w.add(pinOp{pin: p.name, kind: opOut, level: l})
	return nil
}

func (p *fakePin) Read() gpio.Level {
	p.mu.Lock()
	l := p.level
	if p.input {
		l = gpio.Level(!p.ack)
	}
	p.mu.Unlock()
	p.w.add(pinOp{pin: p.name, kind: opRead, level: l})
	return l
}

func (p *fakePin) WaitForEdge(timeout time.Duration) bool {
	if p.edges == nil {
		time.Sleep(timeout)
		return false
	}
	select {
	case l := <-p.edges:
		p.mu.Lock()
		p.level = l
		p.mu.Unlock()
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *fakePin) Halt() error {
	p.mu.Lock()
	p.halts++
	p.mu.Unlock()
	p.w.add(pinOp{pin: p.name, kind: opHalt})
	return nil
}

func (p *fakePin) String() string {
	return p.name
}

// trace is the decoded view of a clk/dio recording.
type trace struct {
	events []string
	pulses int
	// violations lists DIO changes with CLK high that were not part of a
	// start or stop condition.
	violations []string
}

// decode replays ops as levels on the two lines. A DIO fall with CLK high is a
// START, a rise a STOP. A CLK high phase that ends with a falling CLK latches one
// bit (MSB first); the ninth rising edge of a byte is the ack slot, reported by
// the DIO read that follows it.
func decode(ops []pinOp, clk, dio string) trace {
	var tr trace
	clkL, dioL := gpio.High, gpio.High
	var v byte
	bits := 0
	pending := false
	for _, o := range ops {
		switch {
		case o.pin == clk && o.kind == opOut:
			switch {
			case clkL == gpio.Low && o.level == gpio.High && bits == 8:
				tr.pulses++
				tr.events = append(tr.events, fmt.Sprintf("0x%02X", v))
				v, bits = 0, 0
			case clkL == gpio.Low && o.level == gpio.High:
				pending = true
			case clkL == gpio.High && o.level == gpio.Low && pending:
				tr.pulses++
				v <<= 1
				if dioL == gpio.High {
					v |= 1
				}
				bits++
				pending = false
			}
			clkL = o.level
		case o.pin == dio && o.kind == opOut:
			if clkL == gpio.High && o.level != dioL {
				pending = false
				switch {
				case bits > 0:
					tr.violations = append(tr.violations, fmt.Sprintf("dio %s after bit %d", o.level, bits))
				case o.level == gpio.Low:
					tr.events = append(tr.events, "START")
				default:
					tr.events = append(tr.events, "STOP")
				}
			}
			dioL = o.level
		case o.pin == dio && o.kind == opRead:
			if o.level == gpio.Low {
				tr.events = append(tr.events, "ACK")
			} else {
				tr.events = append(tr.events, "NACK")
			}
			dioL = o.level
		}
	}
	return tr
}

// newTestBus returns a Bus on two fake pins sharing one wire, with hold waits
// disabled.
func newTestBus(t *testing.T, opts *Opts) (*Bus, *fakePin, *fakePin, *wire) {
	t.Helper()
	w := &wire{}
	clk := newFakePin("CLK", w)
	dio := newFakePin("DIO", w)
	cl, err := NewLine(clk)
	if err != nil {
		t.Fatal(err)
	}
	dl, err := NewLine(dio)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(cl, dl, opts)
	if err != nil {
		t.Fatal(err)
	}
	b.sleep = func(time.Duration) {}
	w.ops = nil
	return b, clk, dio, w
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
