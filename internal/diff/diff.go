// Package diff renders line diffs between two response bodies.
package diff

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/tidwall/gjson"
)

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

// Lines returns a grouped line diff of before and after. Every emitted line is
// prefixed with "-", "+" or " " and ends with a newline. Identical inputs
// yield "".
func Lines(before, after string) string {
	if before == after {
		return ""
	}

	a, b := splitLines(before), splitLines(after)
	// Autojunk would treat frequent lines such as "}," as noise in large JSON bodies.
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var sb strings.Builder
	for _, group := range m.GetGroupedOpCodes(contextLines) {
		if unchanged(group) {
			continue
		}
		for _, op := range group {
			switch op.Tag {
			case 'e':
				writeLines(&sb, " ", a[op.I1:op.I2])
			case 'd':
				writeLines(&sb, "-", a[op.I1:op.I2])
			case 'i':
				writeLines(&sb, "+", b[op.J1:op.J2])
			case 'r':
				writeLines(&sb, "-", a[op.I1:op.I2])
				writeLines(&sb, "+", b[op.J1:op.J2])
			}
		}
	}
	return sb.String()
}

// Semantic normalizes each side that is valid JSON (sorted keys, two-space
// indent) before diffing, so key order and formatting do not show up as
// changes. Sides that are not JSON are compared as-is.
func Semantic(before, after string) string {
	return Lines(normalizeJSON(before), normalizeJSON(after))
}

func normalizeJSON(s string) string {
	if !gjson.Valid(s) {
		return s
	}

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return s
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// splitLines splits s after each newline, keeping the terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(sb *strings.Builder, sign string, lines []string) {
	for _, l := range lines {
		sb.WriteString(sign)
		sb.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			sb.WriteByte('\n')
		}
	}
}

func unchanged(group []difflib.OpCode) bool {
	for _, op := range group {
		if op.Tag != 'e' {
			return false
		}
	}
	return true
}
