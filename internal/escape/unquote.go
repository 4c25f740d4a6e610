// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// End reports the offset just past the closing double quotation mark of the
// JSON string that begins at the front of src, or -1 if src does not begin
// with a quotation mark or the string is not terminated. A backslash escapes
// the byte that follows it, so a run of backslashes is handled exactly.
//
// End does not check the contents of the string; use Unquote for that.
func End(src mem.RO) int {
	if src.Len() == 0 || src.At(0) != '"' {
		return -1
	}
	for i := 1; i < src.Len(); i++ {
		switch src.At(i) {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return -1
}

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A UTF-16
// surrogate pair written as two \u escapes decodes to a single rune, and an
// unpaired surrogate decodes to the Unicode replacement rune. Unquote reports
// an error for an unknown or incomplete escape sequence, an unescaped quote,
// or an unescaped control character.
func Unquote(src mem.RO) ([]byte, error) {
	if err := checkPlain(src); err != nil {
		return nil, err
	}
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		dec = mem.Append(dec, src)
		return dec, nil
	}

	putByte := func(bs ...byte) { dec = append(dec, bs...) }
	putRune := func(r rune) { dec = utf8.AppendRune(dec, r) }
	for src.Len() != 0 {
		dec = mem.Append(dec, src.SliceTo(i))

		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		b := src.At(0)
		src = src.SliceFrom(1)
		switch b {
		case '"', '\\', '/':
			putByte(b)
		case 'b':
			putByte('\b')
		case 'f':
			putByte('\f')
		case 'n':
			putByte('\n')
		case 'r':
			putByte('\r')
		case 't':
			putByte('\t')
		case 'u':
			r, n, err := decodeUnicode(src)
			if err != nil {
				return nil, err
			}
			putRune(r)
			src = src.SliceFrom(n)
		default:
			return nil, fmt.Errorf("invalid %q after escape", b)
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}

// decodeUnicode decodes the hex digits of a \u escape at the front of src,
// which has its "\u" prefix already removed. If the code point is the high
// half of a surrogate pair and the low half follows as another \u escape,
// both are consumed. It returns the rune and the number of bytes consumed.
func decodeUnicode(src mem.RO) (rune, int, error) {
	if src.Len() < 4 {
		return 0, 0, errors.New("incomplete Unicode escape")
	}
	v, err := parseHex(src.SliceTo(4))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid Unicode escape: %w", err)
	}
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, 4, nil
	}
	if src.Len() >= 10 && src.At(4) == '\\' && src.At(5) == 'u' {
		if lo, err := parseHex(src.Slice(6, 10)); err == nil {
			if dec := utf16.DecodeRune(r, rune(lo)); dec != utf8.RuneError {
				return dec, 10, nil
			}
		}
	}
	return utf8.RuneError, 4, nil
}

// checkPlain reports an error if src contains an unescaped quotation mark or
// a control character, neither of which may appear literally in a JSON
// string.
func checkPlain(src mem.RO) error {
	for i := 0; i < src.Len(); i++ {
		switch b := src.At(i); {
		case b == '\\':
			i++
		case b == '"':
			return fmt.Errorf("unescaped quote at offset %d", i)
		case b < ' ':
			return fmt.Errorf("unescaped control %q", b)
		}
	}
	return nil
}

func parseHex(data mem.RO) (int64, error) {
	var v int64
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int64(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int64(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int64(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
