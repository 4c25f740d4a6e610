// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import "go4.org/mem"

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Pos, End    int // byte offsets, 0-based (End is noninclusive)
	First, Last LineCol
}

// Locate returns the line and column of the given byte offset in text.
// Offsets outside text are clamped to its bounds.
func Locate(text string, offset int) LineCol {
	src := mem.S(text)
	offset = max(0, min(offset, src.Len()))
	line, start := countLines(src, 0, offset)
	return LineCol{Line: line + 1, Column: offset - start}
}

// countLines counts the newlines in src between offsets from and to, and
// returns the count along with the offset just past the last of them, or
// from if there are none.
func countLines(src mem.RO, from, to int) (n, start int) {
	start = from
	for {
		i := mem.IndexByte(src.Slice(start, to), '\n')
		if i < 0 {
			return n, start
		}
		n++
		start += i + 1
	}
}

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Pos:   s.pos,
		End:   s.end,
		First: s.lineCol(s.pos),
		Last:  s.lineCol(s.end),
	}
}

// lineCol returns the line and column of offset. Counting resumes from the
// previous call unless offset precedes it.
func (s *Scanner) lineCol(offset int) LineCol {
	if offset < s.lineOff {
		s.lineOff, s.line, s.lineStart = 0, 0, 0
	}
	n, start := countLines(s.src, s.lineOff, offset)
	if n > 0 {
		s.line += n
		s.lineStart = start
	}
	s.lineOff = offset
	return LineCol{Line: s.line + 1, Column: offset - s.lineStart}
}

// LineCol returns the line and column in text of the offset where e was
// found. The text should be the complete input of the failed parse.
func (e *SyntaxError) LineCol(text string) LineCol { return Locate(text, e.Offset) }
