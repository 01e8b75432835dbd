// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting of strings for JSON output.
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

// AppendQuoted appends the JSON string encoding of src to buf, including the
// enclosing double quotation marks, and returns the extended slice.
//
// Invalid UTF-8 sequences are replaced by the Unicode replacement rune.
// BSON keys and strings may contain any UTF-8 text other than NUL, but a
// decoder does not guarantee the text is valid, so this can occur.
func AppendQuoted(buf []byte, src mem.RO) []byte {
	buf = append(buf, '"')
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		src = src.SliceFrom(max(n, 1))

		switch {
		case r < ' ':
			if b := controlEsc[r]; b != 0 {
				buf = append(buf, '\\', b)
			} else {
				buf = append(buf, '\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
			}
		case r == '\\' || r == '"':
			buf = append(buf, '\\', byte(r))
		case r < utf8.RuneSelf:
			buf = append(buf, byte(r))
		case r == utf8.RuneError:
			buf = append(buf, `\ufffd`...)
		case r == '\u2028': // line separator
			buf = append(buf, `\u2028`...)
		case r == '\u2029': // paragraph separator
			buf = append(buf, `\u2029`...)
		default:
			buf = utf8.AppendRune(buf, r)
		}
	}
	return append(buf, '"')
}

// Quote returns the JSON string encoding of s, including the enclosing
// double quotation marks.
func Quote(s string) string {
	return string(AppendQuoted(make([]byte, 0, len(s)+2), mem.S(s)))
}
