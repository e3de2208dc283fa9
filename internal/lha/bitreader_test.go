// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package lha

import "testing"

func sourceFromBytes(data []byte) ByteSource {
	pos := 0
	return func(dest []byte) (int, error) {
		if pos >= len(data) {
			return 0, nil
		}
		n := copy(dest, data[pos:])
		pos += n
		return n, nil
	}
}

func TestBitReaderReadBits(t *testing.T) {
	// 0xB4 0x2F = 10110100 00101111
	br := newBitReader(sourceFromBytes([]byte{0xB4, 0x2F}))

	cases := []struct {
		n    uint
		want int
	}{
		{1, 0b1},
		{2, 0b01},
		{1, 0b1},
		{4, 0b0100},
		{4, 0b0010},
		{4, 0b1111},
	}

	for i, c := range cases {
		got, ok := br.readBits(c.n)
		if !ok {
			t.Fatalf("case %d: readBits(%d) failed", i, c.n)
		}
		if got != c.want {
			t.Fatalf("case %d: readBits(%d) = %d, want %d", i, c.n, got, c.want)
		}
	}
}

func TestBitReaderExhausted(t *testing.T) {
	br := newBitReader(sourceFromBytes([]byte{0xFF}))

	if _, ok := br.readBits(8); !ok {
		t.Fatal("expected first 8-bit read to succeed")
	}
	if _, ok := br.readBit(); ok {
		t.Fatal("expected read past end of stream to fail")
	}
	// Once exhausted, it should stay exhausted.
	if _, ok := br.readBit(); ok {
		t.Fatal("expected repeated read past end of stream to keep failing")
	}
}

func TestBitReaderPeekDoesNotConsume(t *testing.T) {
	br := newBitReader(sourceFromBytes([]byte{0xA0}))

	peeked, ok := br.peekBits(3)
	if !ok || peeked != 0b101 {
		t.Fatalf("peekBits(3) = %d, %v", peeked, ok)
	}
	got, ok := br.readBits(3)
	if !ok || got != peeked {
		t.Fatalf("readBits(3) after peek = %d, %v; want %d", got, ok, peeked)
	}
}

func TestBitReaderNeverDropsBytes(t *testing.T) {
	// A source that fills as much of dest as it can (rather than one
	// byte per call) must still yield every byte, in order, without
	// desyncing the accumulator.
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	calls := 0
	src := ByteSource(func(dest []byte) (int, error) {
		calls++
		n := copy(dest, data)
		data = data[n:]
		return n, nil
	})
	br := newBitReader(src)

	for _, want := range []int{0x01, 0x02, 0x03, 0x04, 0x05, 0x06} {
		got, ok := br.readBits(8)
		if !ok || got != want {
			t.Fatalf("readBits(8) = %d, %v; want %d", got, ok, want)
		}
	}
}
