// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package lha

// Method describes the two parameters that distinguish the new-style LHA
// algorithms (-lh4- through -lh7-) from one another: the width of the
// history ring buffer and the number of bits used to encode the offset
// table's code count. Everything else about the decoding algorithm is
// identical across all four.
type Method struct {
	historyBits int
	offsetBits  int
	windowHint  int
}

func newMethod(historyBits, offsetBits int) Method {
	return Method{
		historyBits: historyBits,
		offsetBits:  offsetBits,
		windowHint:  (1 << historyBits) / 2,
	}
}

// RingBufferSize returns the size of the history window, 1<<HistoryBits.
func (m Method) RingBufferSize() int {
	return 1 << m.historyBits
}

// OutputBufferSize returns the buffer size Decoder.Read requires: the
// ring buffer size, well above the 256 bytes that the longest single copy
// command can produce.
func (m Method) OutputBufferSize() int {
	return m.RingBufferSize()
}

// WindowHint suggests how much history a caller needs to retain if it is
// re-deriving offsets itself rather than relying on Decoder's own ring
// buffer; it is advisory only and Decoder does not use it.
func (m Method) WindowHint() int {
	return m.windowHint
}

var (
	LH4 = newMethod(12, 4)
	LH5 = newMethod(13, 4)
	LH6 = newMethod(15, 5)
	LH7 = newMethod(16, 5)
)

// LH4Alias decodes identically to LH4. Archives sometimes want a
// conservative quarter-size window hint instead of LH4's usual half-size
// one (older tools advertised the same codec under two window-hint
// entries); this value exists for callers that need to honor that
// second hint without duplicating the decode logic.
var LH4Alias = Method{historyBits: 12, offsetBits: 4, windowHint: (1 << 12) / 4}

// methodByID maps the 5-byte archive method identifier to a Method.
// "-lh0-" (stored, no compression) is handled separately by callers since
// it has no Method of its own.
var methodByID = map[string]Method{
	"-lh4-": LH4,
	"-lh5-": LH5,
	"-lh6-": LH6,
	"-lh7-": LH7,
}

// MethodByID looks up a Method by its 5-byte archive identifier
// (e.g. "-lh5-"). ok is false for "-lh0-" (stored) or any identifier this
// package does not implement.
func MethodByID(id string) (m Method, ok bool) {
	m, ok = methodByID[id]
	return m, ok
}
