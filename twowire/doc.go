// Package twowire bit-bangs an I²C-like two-wire bus over two GPIO pins.
//
// Several display controllers (the TM1637 family among them) speak a
// proprietary protocol that looks like I²C but cannot be driven by a hardware
// I²C controller. This package synthesizes the bus in software: start and stop
// conditions, byte transmission with an acknowledgement slot, and minimum hold
// times after every line transition.
//
// # Layers
//
//	Protocol  register and command framing, payload validation
//	Bus       start / 8 bits + ack / stop on a CLK and a DIO Line
//	Line      one GPIO pin: direction, level, close
//
// # Basic Usage
//
//	host.Init()
//
//	bus, err := twowire.Open("GPIO23", "GPIO24", &twowire.Opts{
//		Freq:  100 * physic.KiloHertz,
//		Order: twowire.LSBFirst,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	p := twowire.NewProtocol(bus, 4)
//	defer p.Close()
//
//	acks, err := p.WriteRegisterBuffer(0xC0, []byte{0x06, 0x5B})
//
// # Acknowledgements
//
// The ack sampled after each byte is returned as data. Some devices never drive
// DIO during the ack slot, so callers decide whether a missing ack matters.
//
// # Errors
//
// Failures wrap one of ErrConfiguration, ErrInvalidArgument, ErrIO or
// ErrIllegalState. After ErrIO the lines are in an undefined state and the
// caller must issue Stop (or Protocol.Recover) before the next transaction.
//
// # Timing
//
// Hold times are waited with time.Sleep, which may overshoot on a busy host but
// never returns early. Each byte takes a fixed nine clock pulses; nothing polls
// the device, so a missing or miswired device cannot block the caller.
package twowire
