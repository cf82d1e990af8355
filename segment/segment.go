// Package segment provides the seven-segment font used by the TM1637 driver.
package segment

import (
	"errors"
	"fmt"
)

// Colon lights the colon (or decimal point) of a cell.
const Colon byte = 0x80

var (
	// ErrUnknownSymbol indicates a rune with no glyph in the font.
	ErrUnknownSymbol = errors.New("segment: unknown symbol")

	// ErrTooLong indicates more symbols than cells.
	ErrTooLong = errors.New("segment: too many symbols")
)

// font maps a rune to its segment pattern. It is never written after init.
var font = map[rune]byte{
	'0': 0x3F,
	'1': 0x06,
	'2': 0x5B,
	'3': 0x4F,
	'4': 0x66,
	'5': 0x6D,
	'6': 0x7D,
	'7': 0x07,
	'8': 0x7F,
	'9': 0x6F,

	'A': 0x77, 'a': 0x77,
	'B': 0x7C, 'b': 0x7C,
	'C': 0x39, 'c': 0x58,
	'D': 0x5E, 'd': 0x5E,
	'E': 0x79, 'e': 0x79,
	'F': 0x71, 'f': 0x71,

	'H': 0x76,
	'L': 0x38,
	'P': 0x73,
	'U': 0x3E,
	'n': 0x54,
	'o': 0x5C,
	'r': 0x50,
	't': 0x78,
	'y': 0x6E,

	' ': 0x00,
	'-': 0x40,
	'_': 0x08,
}

// Lookup returns the segment pattern for r.
func Lookup(r rune) (byte, bool) {
	b, ok := font[r]
	return b, ok
}

// Hex returns the pattern of the hexadecimal digit v&0x0F.
func Hex(v byte) byte {
	return font[rune("0123456789AbCdEF"[v&0x0F])]
}

// Encode renders s into exactly n cells, left aligned and blank padded.
func Encode(s string, n int) ([]byte, error) {
	buf := make([]byte, n)
	i := 0
	for _, r := range s {
		if i == n {
			return nil, fmt.Errorf("%w: %q does not fit in %d cells", ErrTooLong, s, n)
		}
		b, ok := font[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, r)
		}
		buf[i] = b
		i++
	}
	return buf, nil
}
