package hex

import (
	"strings"
	"testing"
)

func TestFormatWord(t *testing.T) {
	var b strings.Builder
	FormatWord(&b, []uint32{0xdeadbeef, 0x00000001})
	got := b.String()
	want := "DEADBEEF 00000001 "
	if got != want {
		t.Errorf("FormatWord = %q, want %q", got, want)
	}
}

func TestFormatOctal36(t *testing.T) {
	var b strings.Builder
	FormatOctal36(&b, 0o123456_765432)
	if got := b.String(); got != "123456765432" {
		t.Errorf("FormatOctal36 = %q, want %q", got, "123456765432")
	}
}

func TestFormatBytes(t *testing.T) {
	var b strings.Builder
	FormatBytes(&b, true, []byte{0x0a, 0xff})
	if got := b.String(); got != "0A FF " {
		t.Errorf("FormatBytes = %q, want %q", got, "0A FF ")
	}
}

func TestFormatByte(t *testing.T) {
	var b strings.Builder
	FormatByte(&b, 0x5c)
	if got := b.String(); got != "5C" {
		t.Errorf("FormatByte = %q, want %q", got, "5C")
	}
}

func TestFormatDigit(t *testing.T) {
	var b strings.Builder
	FormatDigit(&b, 0xab)
	if got := b.String(); got != "B" {
		t.Errorf("FormatDigit = %q, want %q", got, "B")
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := []struct {
		in   byte
		want string
	}{
		{0, "0"},
		{9, "9"},
		{42, "42"},
		{199, "199"},
	}
	for _, c := range cases {
		var b strings.Builder
		FormatDecimal(&b, c.in)
		if got := b.String(); got != c.want {
			t.Errorf("FormatDecimal(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
