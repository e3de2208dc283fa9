// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package lha

import "testing"

func decodeAll(t *testing.T, m Method, data []byte, maxCommands int) []byte {
	t.Helper()
	d := NewDecoder(m, sourceFromBytes(data))
	buf := make([]byte, m.OutputBufferSize())
	var out []byte
	for i := 0; i < maxCommands; i++ {
		n := d.Read(buf)
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}
	return out
}

// TestDecoderSingleLiteral decodes a one-block stream whose temp and
// code tables both degenerate to single-code trees, yielding exactly
// one literal byte: 'A'.
func TestDecoderSingleLiteral(t *testing.T) {
	data := []byte{0, 1, 0, 0, 4, 16, 0}
	got := decodeAll(t, LH5, data, 4)
	want := []byte{'A'}
	if string(got) != string(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestDecoderRepeatedSingleCodeLiteral decodes a block whose
// block_remaining is 8 against a single-code tree, so the same literal
// is produced 8 times without any further bits being consumed for the
// symbol itself.
func TestDecoderRepeatedSingleCodeLiteral(t *testing.T) {
	data := []byte{0, 8, 0, 0, 4, 16, 0}
	got := decodeAll(t, LH5, data, 16)
	want := []byte{'A', 'A', 'A', 'A', 'A', 'A', 'A', 'A'}
	if string(got) != string(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestDecoderLiteralThenCopy decodes a two-command block built around a
// real (non-single-code) canonical tree: a temp table whose third length
// triggers a skip-run covering symbols 1-255, leaving only symbol 0 (the
// literal 0x00) and symbol 256 (a copy of length 3) with length 1 each.
// The copy's offset code is itself single-coded to 0, referencing the
// byte just written; since copy_from_history writes through the same
// ring buffer position it reads from, the result is four 0x00 bytes.
func TestDecoderLiteralThenCopy(t *testing.T) {
	data := []byte{0, 2, 32, 4, 48, 25, 215, 0, 64}
	got := decodeAll(t, LH5, data, 4)
	want := []byte{0, 0, 0, 0}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes %v, want %d bytes %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}

// TestDecoderTruncatedStreamFails checks that a stream cut off mid block
// header causes Read to report failure (0 bytes) rather than panicking
// or looping forever, and that failure latches.
func TestDecoderTruncatedStreamFails(t *testing.T) {
	data := []byte{0, 1} // only the block length, nothing else
	d := NewDecoder(LH5, sourceFromBytes(data))
	buf := make([]byte, LH5.OutputBufferSize())

	if n := d.Read(buf); n != 0 {
		t.Fatalf("Read() on truncated stream = %d, want 0", n)
	}
	if n := d.Read(buf); n != 0 {
		t.Fatalf("second Read() on failed decoder = %d, want 0", n)
	}
}

// TestDecoderInstancesAreIndependent confirms two Decoders constructed
// for different streams don't share any state: decoding one does not
// perturb the other.
func TestDecoderInstancesAreIndependent(t *testing.T) {
	dataA := []byte{0, 1, 0, 0, 4, 16, 0}          // -> "A"
	dataB := []byte{0, 1, 0, 0, 4, 16, 0}          // identical stream, separate instance
	da := NewDecoder(LH5, sourceFromBytes(dataA))
	db := NewDecoder(LH5, sourceFromBytes(dataB))

	bufA := make([]byte, LH5.OutputBufferSize())
	bufB := make([]byte, LH5.OutputBufferSize())

	na := da.Read(bufA)
	nb := db.Read(bufB)

	if string(bufA[:na]) != "A" || string(bufB[:nb]) != "A" {
		t.Fatalf("got %q and %q, want both %q", bufA[:na], bufB[:nb], "A")
	}

	// Exhausting da must not affect db's ability to keep decoding.
	da.Read(bufA)
	if n := db.Read(bufB); n != 0 {
		t.Fatalf("db.Read() after da exhausted = %d, want 0 (db's own block is also spent)", n)
	}
}
