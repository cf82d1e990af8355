// Package segment provides the seven-segment font used by the TM1637 driver.
//
// Each cell of a segment display is one byte. Bits 0 to 6 light segments a to g
// and bit 7 lights the colon (or decimal point, depending on the module):
//
//	 --a--
//	|     |
//	f     b
//	|     |
//	 --g--
//	|     |
//	e     c
//	|     |
//	 --d--    (bit 7: colon / dp)
//
// Example: the digit '2' lights a, b, g, e and d:
//
//	a b c d e f g dp
//	1 1 0 1 1 0 1 0   = 0x5B
//
// The font covers the decimal and hexadecimal digits, a blank, '-', '_' and the
// few letters that render legibly on seven segments. The table is built once
// and cannot be modified; use Lookup to read it.
//
// Example usage:
//
//	buf, err := segment.Encode("12", 4)
//	// buf == []byte{0x06, 0x5B, 0x00, 0x00}
//
//	buf[1] |= segment.Colon
package segment
