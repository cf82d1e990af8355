// Package tm1637 controls a TM1637 four digit seven-segment LED display.
//
// The TM1637 drives up to six common-anode digits; the ubiquitous modules wire
// four of them with a colon between the second and third digit. The chip is
// addressed over a two-wire bus that resembles I²C but has no device address
// and sends bits least significant first, so a hardware I²C controller cannot
// drive it. The bus is bit-banged by package twowire.
//
// # Display Characteristics
//
// - 4 cells of 8 segments (7 segments plus the colon or decimal point)
// - 8 brightness levels (0-7) selected by the display control command
// - Auto-increment and fixed-address data writes
// - Display on/off without losing the display memory
//
// # Hardware Connection
//
// Connect the module to any two free GPIO pins:
//
//	Module Pin → System Pin
//	GND        → GND
//	VCC        → 3.3V (or 5V with level shifting)
//	CLK        → GPIO (any available pin)
//	DIO        → GPIO (any available pin)
//
// Both lines need pull-ups; most modules carry 10kΩ resistors on board.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/flavioheleno/tm1637"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		dev, err := tm1637.Open("GPIO23", "GPIO24", &tm1637.Opts{
//			Brightness: 4,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Close()
//
//		dev.Display("12")
//		dev.SetColon(true)
//	}
//
// # Using go-rpio
//
// On a Raspberry Pi the pins may also be driven through go-rpio, which writes
// the GPIO registers directly:
//
//	rpiopin.Open()
//	defer rpiopin.Close()
//
//	clk, _ := rpiopin.New(23)
//	dio, _ := rpiopin.New(24)
//	dev, _ := tm1637.NewPins(clk, dio, nil)
//
// # Writing the Display
//
// Display and DisplayInt render text through the segment font. Display is
// left aligned, DisplayInt right aligned:
//
//	dev.Display("HELP")
//	dev.DisplayInt(-42)   // " -42"
//
// Raw segment patterns go through WriteSegments for the whole display or
// SetDigit for a single cell:
//
//	dev.WriteSegments([]byte{0x76, 0x79, 0x38, 0x73})
//	dev.SetDigit(3, segment.Hex(0xF))
//
// Every write sends the full display memory (four cells) except SetDigit,
// which uses fixed address mode. Buffer returns the memory as last written.
//
// # Brightness and Halt
//
//	dev.SetBrightness(0) // dimmest
//	dev.Halt()           // display off, memory kept
//	dev.SetBrightness(7) // back on, brightest
//
// A halted display rejects writes with twowire.ErrIllegalState until
// SetBrightness turns it back on.
//
// # Acknowledgements
//
// The chip pulls DIO low during the ninth clock of every byte. Many modules
// leave the line floating instead, so missing acknowledgements are only logged
// by default. Set Opts.RequireAck to get ErrNoAck.
//
// # Errors
//
// Errors wrap the sentinels of package twowire and are matched with errors.Is:
// ErrInvalidArgument for values out of range, ErrIllegalState for a closed or
// halted device, ErrIO for pin failures and ErrConfiguration for unknown pins.
//
// # Performance
//
// At the default 100kHz bus clock a transition is held 5µs. Writing the four
// cells takes two transactions, about 60 transitions each way, well under a
// millisecond.
//
// # Datasheet
//
// https://www.mcielectronics.cl/website_MCI/static/documents/Datasheet_TM1637.pdf
package tm1637
