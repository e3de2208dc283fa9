// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package lha

// copyThreshold is the shortest copy command length; code values from
// numLiterals upward represent copy_threshold..copy_threshold+253.
const copyThreshold = 3

// numLiterals is the number of literal-byte codes (0-255).
const numLiterals = 256

// numCodes is the size of the main code alphabet: 256 literal byte
// values plus 254 copy-length values.
const numCodes = 510

// maxTempCodes bounds both the temp table (used to Huffman-decode the
// code table's lengths) and, by reuse of the same storage, the offset
// table.
const maxTempCodes = 20

// Decoder implements the new-style LHA Huffman+LZSS decompression
// algorithm shared by -lh4- through -lh7-. It holds all state for a
// single compressed stream; nothing is shared between instances.
type Decoder struct {
	br     *bitReader
	method Method

	ringbuf    []byte
	ringbufPos int

	blockRemaining int

	codeTree   *tree // 510-symbol alphabet: literals + copy lengths
	offsetTree *tree // reused for both the temp table and the offset table

	failed bool
}

// NewDecoder creates a Decoder for the given method, pulling compressed
// bytes from src on demand.
func NewDecoder(m Method, src ByteSource) *Decoder {
	d := &Decoder{
		br:         newBitReader(src),
		method:     m,
		ringbuf:    make([]byte, m.RingBufferSize()),
		codeTree:   newTree(numCodes),
		offsetTree: newTree(maxTempCodes),
	}
	for i := range d.ringbuf {
		d.ringbuf[i] = ' '
	}
	return d
}

// Read decodes a single command (a literal byte or a history copy) into
// buf, which must be at least d.method.OutputBufferSize() bytes long
// (a single copy command writes at most 256 bytes).
// It returns the number of bytes written. A return of 0 means either the
// stream has failed (the compressed data was malformed or truncated) or
// the caller has already observed every command in the stream on a prior
// call that returned with block_remaining already at zero; Decoder does
// not distinguish the two, matching the underlying algorithm's own
// read-returns-zero failure signal. Once a block header or a code symbol
// fails to decode, Read keeps returning 0 on every subsequent call; a 0
// from a copy whose offset could not be read (see copyFromHistory) does
// not latch, and the next call carries on with the following command.
func (d *Decoder) Read(buf []byte) (n int) {
	if d.failed {
		return 0
	}

	for d.blockRemaining == 0 {
		if !d.startNewBlock() {
			d.failed = true
			return 0
		}
	}

	d.blockRemaining--

	code, ok := d.codeTree.readFromTree(d.br)
	if !ok {
		d.failed = true
		return 0
	}

	if code < numLiterals {
		d.outputByte(buf, &n, uint8(code))
	} else {
		d.copyFromHistory(buf, &n, code-numLiterals+copyThreshold)
	}

	return n
}

// outputByte appends b to buf at *n and to the history ring buffer.
func (d *Decoder) outputByte(buf []byte, n *int, b uint8) {
	buf[*n] = b
	*n++

	d.ringbuf[d.ringbufPos] = b
	d.ringbufPos = (d.ringbufPos + 1) % len(d.ringbuf)
}

// copyFromHistory appends count bytes read from the history ring buffer,
// starting offset+1 bytes behind the current write position. If the
// offset itself cannot be read (a truncated stream), this writes nothing
// at all and returns silently: the caller has already decremented
// block_remaining for this command, so the command is simply lost rather
// than retried. This mirrors the reference decoder's own behavior
// exactly, including on a stream that is otherwise still well-formed.
func (d *Decoder) copyFromHistory(buf []byte, n *int, count int) {
	offset, ok := d.readOffsetCode()
	if !ok {
		return
	}

	size := len(d.ringbuf)
	start := (d.ringbufPos + size - offset - 1) % size

	for i := 0; i < count; i++ {
		d.outputByte(buf, n, d.ringbuf[(start+i)%size])
	}
}

// readOffsetCode reads a history offset: a tree-coded bit count b followed
// by b-1 raw bits, so that a count of 0 means offset 0, a count of
// 1 means offset 1, and a count of b>1 means a b-bit value with its
// leading bit implicitly set (i.e. in the range [1<<(b-1), 1<<b)).
func (d *Decoder) readOffsetCode() (offset int, ok bool) {
	bits, ok := d.offsetTree.readFromTree(d.br)
	if !ok {
		return 0, false
	}

	switch bits {
	case 0:
		return 0, true
	case 1:
		return 1, true
	default:
		rest, ok := d.br.readBits(uint(bits - 1))
		if !ok {
			return 0, false
		}
		return rest + (1 << uint(bits-1)), true
	}
}

// startNewBlock reads a block's length, temp table, code table, and
// offset table, leaving d.blockRemaining and both trees ready for the
// commands that follow.
func (d *Decoder) startNewBlock() bool {
	length, ok := d.br.readBits(16)
	if !ok {
		return false
	}
	d.blockRemaining = length

	if !d.readTempTable() {
		return false
	}
	if !d.readCodeTable() {
		return false
	}
	if !d.readOffsetTable() {
		return false
	}
	return true
}

// readLengthValue reads a 3-bit code length, extended by a unary run of
// 1-bits (each adding one) terminated by a 0-bit when the initial 3 bits
// read as 7 (the maximum representable in 3 bits).
func (d *Decoder) readLengthValue() (int, bool) {
	length, ok := d.br.readBits(3)
	if !ok {
		return 0, false
	}
	if length == 7 {
		for {
			bit, ok := d.br.readBit()
			if !ok {
				return 0, false
			}
			if bit == 0 {
				break
			}
			length++
		}
	}
	return length, true
}

// readTempTable reads the code lengths that define the temp table, used
// immediately afterward to Huffman-decode the main code table's own
// lengths. n=0 means a single zero-length code covering every symbol.
//
// After the third length (index 2) a 2-bit field gives a count of
// further lengths to treat as zero and skip over before resuming; this
// quirk is preserved exactly as the format defines it.
func (d *Decoder) readTempTable() bool {
	n, ok := d.br.readBits(5)
	if !ok {
		return false
	}

	if n == 0 {
		code, ok := d.br.readBits(5)
		if !ok {
			return false
		}
		d.offsetTree.setSingle(code)
		return true
	}

	if n > maxTempCodes {
		n = maxTempCodes
	}

	var lengths [maxTempCodes]uint8
	for i := 0; i < n; i++ {
		length, ok := d.readLengthValue()
		if !ok {
			return false
		}
		lengths[i] = uint8(length)

		if i == 2 {
			skip, ok := d.br.readBits(2)
			if !ok {
				return false
			}
			for j := 0; j < skip; j++ {
				i++
				lengths[i] = 0
			}
		}
	}

	d.offsetTree.buildTree(lengths[:], n)
	return true
}

// readSkipCount reads the number of code-table entries a skip command
// covers, given the 0-2 skip range read from the temp-coded tree.
func (d *Decoder) readSkipCount(skipRange int) (int, bool) {
	switch skipRange {
	case 0:
		return 1, true
	case 1:
		v, ok := d.br.readBits(4)
		if !ok {
			return 0, false
		}
		return v + 3, true
	default:
		v, ok := d.br.readBits(9)
		if !ok {
			return 0, false
		}
		return v + 20, true
	}
}

// readCodeTable reads the code lengths for the main 510-symbol alphabet,
// itself Huffman-decoded using the temp table just read. Values 0-2 from
// that tree are skip commands (covering 1, 3-18, or 20+ unused symbols
// respectively) rather than length values; anything else encodes a
// length of code-2.
func (d *Decoder) readCodeTable() bool {
	n, ok := d.br.readBits(9)
	if !ok {
		return false
	}

	if n == 0 {
		code, ok := d.br.readBits(9)
		if !ok {
			return false
		}
		d.codeTree.setSingle(code)
		return true
	}

	if n > numCodes {
		n = numCodes
	}

	var lengths [numCodes]uint8
	i := 0
	for i < n {
		code, ok := d.offsetTree.readFromTree(d.br)
		if !ok {
			return false
		}

		if code <= 2 {
			skip, ok := d.readSkipCount(code)
			if !ok {
				return false
			}
			for j := 0; j < skip && i < n; j++ {
				lengths[i] = 0
				i++
			}
		} else {
			lengths[i] = uint8(code - 2)
			i++
		}
	}

	d.codeTree.buildTree(lengths[:], n)
	return true
}

// readOffsetTable reads the code lengths for the offset tree, reusing
// the same tree storage the temp table used earlier in this block.
func (d *Decoder) readOffsetTable() bool {
	n, ok := d.br.readBits(uint(d.method.offsetBits))
	if !ok {
		return false
	}

	if n == 0 {
		code, ok := d.br.readBits(uint(d.method.offsetBits))
		if !ok {
			return false
		}
		d.offsetTree.setSingle(code)
		return true
	}

	if n > d.method.historyBits {
		n = d.method.historyBits
	}

	lengths := make([]uint8, n)
	for i := 0; i < n; i++ {
		length, ok := d.readLengthValue()
		if !ok {
			return false
		}
		lengths[i] = uint8(length)
	}

	d.offsetTree.buildTree(lengths, n)
	return true
}
