package nixconfig

import (
	"iter"
	"strings"
	"unicode"
)

// logicalLine is a line after comment stripping and continuation joining.
type logicalLine struct {
	text string
	// number is the 1-based physical line the logical line starts on.
	number int
}

// logicalLines splits content into trimmed, non-empty logical lines.
//
// A '#' outside of double quotes starts a comment that runs to the end of the
// physical line. A physical line ending in an unescaped backslash (after the
// comment is removed) is joined with the next one, without a separator. A
// continuation on the very last line keeps its backslash.
func logicalLines(content string) iter.Seq[logicalLine] {
	return func(yield func(logicalLine) bool) {
		var (
			buf     strings.Builder
			number  int
			start   int
			pending bool
		)

		for raw := range strings.Lines(content) {
			number++
			if !pending {
				start = number
			}

			raw = strings.TrimSuffix(raw, "\n")
			raw = strings.TrimSuffix(raw, "\r")
			part := strings.TrimRightFunc(stripComment(raw), unicode.IsSpace)

			if hasContinuation(part) {
				buf.WriteString(part[:len(part)-1])
				pending = true

				continue
			}

			buf.WriteString(part)
			pending = false

			text := strings.TrimSpace(buf.String())
			buf.Reset()
			if text == "" {
				continue
			}
			if !yield(logicalLine{text: text, number: start}) {
				return
			}
		}

		if !pending {
			return
		}

		buf.WriteByte('\\')
		if text := strings.TrimSpace(buf.String()); text != "" {
			yield(logicalLine{text: text, number: start})
		}
	}
}

// stripComment removes everything from the first unquoted '#' on.
// A quote that is never closed is literal.
func stripComment(line string) string {
	if !strings.Contains(line, "#") {
		return line
	}

	inQuotes := false
	quotedHash := -1
	for i, r := range line {
		switch r {
		case '"':
			inQuotes = !inQuotes
			quotedHash = -1
		case '#':
			if !inQuotes {
				return line[:i]
			}
			if quotedHash < 0 {
				quotedHash = i
			}
		}
	}

	if inQuotes && quotedHash >= 0 {
		return line[:quotedHash]
	}

	return line
}

// hasContinuation reports whether s ends in an odd number of backslashes.
func hasContinuation(s string) bool {
	n := len(s) - len(strings.TrimRight(s, `\`))

	return n%2 == 1
}
