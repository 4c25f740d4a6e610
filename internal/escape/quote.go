// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote encodes src as the body of a JSON string, without the enclosing
// quotation marks. Invalid UTF-8 sequences are encoded as \ufffd.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len()+2)
	for src.Len() != 0 {
		b := src.At(0)
		if b < utf8.RuneSelf {
			switch {
			case b < ' ':
				if e := controlEsc[b]; e != 0 {
					buf = append(buf, '\\', e)
				} else {
					buf = append(buf, '\\', 'u', '0', '0', hexDigit[b>>4], hexDigit[b&15])
				}
			case b == '\\' || b == '"':
				buf = append(buf, '\\', b)
			default:
				buf = append(buf, b)
			}
			src = src.SliceFrom(1)
			continue
		}

		r, n := mem.DecodeRune(src)
		switch {
		case r == utf8.RuneError && n <= 1:
			buf = append(buf, `\ufffd`...)
			n = 1
		case r == '\u2028':
			buf = append(buf, `\u2028`...)
		case r == '\u2029':
			buf = append(buf, `\u2029`...)
		default:
			buf = mem.Append(buf, src.SliceTo(n))
		}
		src = src.SliceFrom(n)
	}
	return buf
}
