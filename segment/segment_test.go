package segment

import (
	"bytes"
	"errors"
	"testing"
)

func TestLookupDigits(t *testing.T) {
	want := []byte{0x3F, 0x06, 0x5B, 0x4F, 0x66, 0x6D, 0x7D, 0x07, 0x7F, 0x6F}
	for i, w := range want {
		r := rune('0' + i)
		got, ok := Lookup(r)
		if !ok {
			t.Fatalf("Lookup(%q) not found", r)
		}
		if got != w {
			t.Errorf("Lookup(%q) = 0x%02X, want 0x%02X", r, got, w)
		}
		if got&Colon != 0 {
			t.Errorf("Lookup(%q) lights the colon", r)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, r := range []rune{'X', 'W', '!', 'é'} {
		if _, ok := Lookup(r); ok {
			t.Errorf("Lookup(%q) found a glyph", r)
		}
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		v    byte
		want byte
	}{
		{0x0, 0x3F},
		{0x9, 0x6F},
		{0xA, 0x77},
		{0xb, 0x7C},
		{0xF, 0x71},
		{0x1F, 0x71}, // only the low nibble is used
	}

	for _, tt := range tests {
		if got := Hex(tt.v); got != tt.want {
			t.Errorf("Hex(0x%X) = 0x%02X, want 0x%02X", tt.v, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		n       int
		want    []byte
		wantErr error
	}{
		{"empty", "", 4, []byte{0, 0, 0, 0}, nil},
		{"two digits", "12", 4, []byte{0x06, 0x5B, 0x00, 0x00}, nil},
		{"full", "8888", 4, []byte{0x7F, 0x7F, 0x7F, 0x7F}, nil},
		{"blank and dash", " -1", 4, []byte{0x00, 0x40, 0x06, 0x00}, nil},
		{"word", "HELP", 4, []byte{0x76, 0x79, 0x38, 0x73}, nil},
		{"too long", "12345", 4, nil, ErrTooLong},
		{"unknown", "1X", 4, nil, ErrUnknownSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.s, tt.n)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Encode(%q) error = %v, want %v", tt.s, err, tt.wantErr)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode(%q) = % x, want % x", tt.s, got, tt.want)
			}
		})
	}
}

func TestEncodeReturnsFreshBuffer(t *testing.T) {
	a, err := Encode("1", 4)
	if err != nil {
		t.Fatal(err)
	}
	a[0] |= Colon

	b, err := Encode("1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x06 {
		t.Errorf("font changed through an encoded buffer: 0x%02X", b[0])
	}
}
