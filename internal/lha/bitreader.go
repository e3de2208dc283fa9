// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package lha

import "errors"

// ErrUnexpectedEOF names the condition of a byte source that cannot supply
// enough bytes to complete a bit-level read. No function in this package
// returns it: bitReader reports that condition through its ok result, and
// Reader reports a stream that stops short as ErrCorrupt.
var ErrUnexpectedEOF = errors.New("lha: unexpected end of compressed stream")

// ByteSource delivers up to len(dest) raw compressed bytes into dest,
// returning the number produced. A return of 0 bytes with a nil error
// means clean end of stream; a non-nil error is treated the same way.
//
// Pull-based: called synchronously, and only from within bitReader.fill.
type ByteSource func(dest []byte) (n int, err error)

// bitReader buffers bytes from a ByteSource and exposes MSB-first
// bit-granular reads of 1..16 bits. It never looks ahead further than it
// has to, and once the source is exhausted mid-read it latches into a
// failed state rather than silently padding with zero bits.
type bitReader struct {
	src ByteSource

	accum     uint32 // bits are packed into the high end
	nbits     uint   // number of valid bits currently in accum
	exhausted bool

	scratch [1]byte
}

func newBitReader(src ByteSource) *bitReader {
	return &bitReader{src: src}
}

// fill tops up the accumulator until it holds at least n valid bits, or
// the byte source runs dry. Bytes are pulled one at a time: accum only
// has room for four bytes of lookahead, so pulling more than one at a
// time risks shifting a byte in by more than 31 bits and silently
// dropping it.
func (r *bitReader) fill(n uint) bool {
	for r.nbits < n {
		if r.exhausted {
			return false
		}
		nread, err := r.src(r.scratch[:])
		if nread == 0 {
			r.exhausted = true
			if err == nil {
				continue // re-check via the loop condition and bail out
			}
			return false
		}
		r.accum |= uint32(r.scratch[0]) << (24 - r.nbits)
		r.nbits += 8
	}
	return true
}

// readBits consumes the next n bits (1 <= n <= 16) MSB-first and returns
// their unsigned value. ok is false if the stream ran out mid-read.
func (r *bitReader) readBits(n uint) (value int, ok bool) {
	if !r.fill(n) {
		return 0, false
	}
	value = int(r.accum >> (32 - n))
	r.accum <<= n
	r.nbits -= n
	return value, true
}

// readBit is a convenience for readBits(1).
func (r *bitReader) readBit() (value int, ok bool) {
	return r.readBits(1)
}

// peekBits observes the next n bits without consuming them.
func (r *bitReader) peekBits(n uint) (value int, ok bool) {
	if !r.fill(n) {
		return 0, false
	}
	return int(r.accum >> (32 - n)), true
}
