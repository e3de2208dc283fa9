// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package lha

import "errors"

var (
	// ErrHeader is returned when an archive member header is malformed
	// or fails its own checksum.
	ErrHeader = errors.New("lha: malformed header")

	// ErrChecksum is returned when a decoded member's running CRC16
	// does not match the value declared in its header.
	ErrChecksum = errors.New("lha: data checksum mismatch")

	// ErrMethod is returned for a method identifier this package does
	// not implement.
	ErrMethod = errors.New("lha: unsupported compression method")

	// ErrCorrupt is returned when the decoded length does not match the
	// length the header declared: decoding stopped short (a truncated or
	// malformed stream; the decoder does not tell the two apart) or ran
	// past it.
	ErrCorrupt = errors.New("lha: truncated or corrupt compressed data")
)
