package cli

import (
	"strings"
	"unicode/utf8"
)

// Table renders rows as space-aligned columns under a header and a dashed rule.
// Widths are measured in runes so product titles with accents line up.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, padding: 2, maxWidths: map[int]int{}}
}

// SetColumnMaxWidth wraps cells in column col at word boundaries once they are
// wider than width.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	fitted := make([]string, len(t.headers))
	copy(fitted, row)
	t.rows = append(t.rows, fitted)
}

// Render returns the formatted table. A table without headers renders as "".
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	cells := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		cells[r] = make([][]string, len(row))
		for c, cell := range row {
			cells[r][c] = wrapText(cell, t.maxWidths[c])
		}
	}

	widths := make([]int, len(t.headers))
	for c, h := range t.headers {
		widths[c] = runeLen(h)
	}
	for _, row := range cells {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], runeLen(line))
			}
		}
	}

	var b strings.Builder
	gap := strings.Repeat(" ", t.padding)
	writeLine := func(parts []string) {
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteByte('\n')
	}

	parts := make([]string, len(t.headers))
	for c, h := range t.headers {
		parts[c] = padRight(h, widths[c])
	}
	writeLine(parts)
	for c, w := range widths {
		parts[c] = strings.Repeat("-", w)
	}
	writeLine(parts)

	for _, row := range cells {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for i := 0; i < height; i++ {
			for c := range t.headers {
				var s string
				if i < len(row[c]) {
					s = row[c][i]
				}
				parts[c] = padRight(s, widths[c])
			}
			writeLine(parts)
		}
	}
	return b.String()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// padRight pads s with spaces to width runes. Longer strings are unchanged.
func padRight(s string, width int) string {
	if n := runeLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrapText breaks text into lines of at most width runes, splitting words that
// are longer than a line. A width of zero disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || runeLen(text) <= width {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	var line string
	for _, word := range words {
		for runeLen(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			r := []rune(word)
			lines = append(lines, string(r[:width]))
			word = string(r[width:])
		}
		switch {
		case line == "":
			line = word
		case runeLen(line)+1+runeLen(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
