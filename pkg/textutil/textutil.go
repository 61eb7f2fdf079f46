// Package textutil implements the plain-text layout used by help output:
// word wrapping and aligned two-column tables.
package textutil

import (
	"fmt"
	"strings"
)

// Wrap folds text into lines of at most width characters, breaking on
// whitespace. A single word longer than width gets its own line.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	var (
		lines         []string
		currentLine   []string
		currentLength int
	)
	for _, word := range words {
		if currentLength+len(word)+1 > width {
			if len(currentLine) > 0 {
				lines = append(lines, strings.Join(currentLine, " "))
				currentLine = []string{word}
				currentLength = len(word)
			} else {
				lines = append(lines, word)
			}
		} else {
			currentLine = append(currentLine, word)
			if currentLength == 0 {
				currentLength = len(word)
			} else {
				currentLength += len(word) + 1
			}
		}
	}
	if len(currentLine) > 0 {
		lines = append(lines, strings.Join(currentLine, " "))
	}
	return lines
}

// Row is one entry of a two-column table.
type Row struct {
	Name string
	Desc string
}

// WriteRows writes rows as two aligned columns within width: names padded to
// the longest name plus a four-space gutter, descriptions wrapped with
// continuation lines indented under the description column.
func WriteRows(b *strings.Builder, rows []Row, width int) {
	maxLen := 0
	for _, row := range rows {
		if len(row.Name) > maxLen {
			maxLen = len(row.Name)
		}
	}
	nameWidth := maxLen + 4
	wrapWidth := width - nameWidth

	for _, row := range rows {
		lines := Wrap(row.Desc, wrapWidth)
		if len(lines) == 0 {
			fmt.Fprintf(b, "  %s\n", row.Name)
			continue
		}
		padding := strings.Repeat(" ", maxLen-len(row.Name)+4)
		fmt.Fprintf(b, "  %s%s%s\n", row.Name, padding, lines[0])

		indentPadding := strings.Repeat(" ", nameWidth+2)
		for _, line := range lines[1:] {
			fmt.Fprintf(b, "%s%s\n", indentPadding, line)
		}
	}
}
