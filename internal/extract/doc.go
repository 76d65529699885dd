package extract

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf16"
)

const minDocRun = 4

// extractLegacyDoc recovers readable text from a Word 97-2003 file by scanning
// for printable runs stored either as 8-bit text or UTF-16LE.
func extractLegacyDoc(data []byte) (string, error) {
	if !bytes.HasPrefix(data, oleMagic) {
		return "", ErrNoText
	}
	wide := scanUTF16Runs(data)
	narrow := scanByteRuns(data)
	if len(wide) >= len(narrow) {
		return wide, nil
	}
	return narrow, nil
}

func scanByteRuns(data []byte) string {
	var out, run strings.Builder
	flush := func() {
		if run.Len() >= minDocRun {
			out.WriteString(strings.TrimSpace(run.String()))
			out.WriteString("\n")
		}
		run.Reset()
	}
	for _, b := range data {
		if b == '\r' || b == '\n' {
			flush()
			continue
		}
		if b >= 0x20 && b < 0x7F {
			run.WriteByte(b)
			continue
		}
		flush()
	}
	flush()
	return out.String()
}

func scanUTF16Runs(data []byte) string {
	var out strings.Builder
	var run []uint16
	flush := func() {
		if len(run) >= minDocRun {
			out.WriteString(strings.TrimSpace(string(utf16.Decode(run))))
			out.WriteString("\n")
		}
		run = run[:0]
	}
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		r := rune(u)
		if r == '\r' || r == '\n' {
			flush()
			continue
		}
		if wideTextRune(u) && unicode.IsPrint(r) {
			run = append(run, u)
			continue
		}
		flush()
	}
	flush()
	return out.String()
}

// Word stores body text as Latin or general punctuation; wider ranges mostly
// match pairs of unrelated bytes.
func wideTextRune(u uint16) bool {
	return u < 0x0250 || (u >= 0x2000 && u <= 0x206F)
}
