package gff

import "errors"

var (
	// ErrMalformedHeader reports a bad file tag or version, a section that
	// extends past the end of the file, or section offsets that are not in
	// canonical order. Decoding aborts.
	ErrMalformedHeader = errors.New("gff: malformed header")

	// ErrDanglingReference reports an index or offset that does not resolve
	// to a valid record in its target table. The referencing record cannot
	// be decoded; no out-of-bounds read is ever attempted.
	ErrDanglingReference = errors.New("gff: dangling reference")

	// ErrLabelTooLong reports a field label longer than the fixed 16-byte
	// label slot. Encoding aborts.
	ErrLabelTooLong = errors.New("gff: label exceeds 16 bytes")
)
