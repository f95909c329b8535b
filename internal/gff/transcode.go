package gff

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Container strings are stored in Windows-1252. Decoding never fails; the
// encoder replaces runes the code page cannot express rather than erroring,
// so a save always succeeds.
var (
	stringDecoder = charmap.Windows1252.NewDecoder()
	stringEncoder = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
)

func decodeString(raw []byte) string {
	out, err := stringDecoder.Bytes(raw)
	if err != nil {
		// Windows-1252 maps every byte; decoding cannot fail in practice.
		return string(raw)
	}
	return string(out)
}

func encodeString(s string) []byte {
	out, err := stringEncoder.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
