package schedule

import "strings"

const (
	delimiter = ','
	quote     = '"'
)

// SplitLine splits one CSV line into fields. A double quote toggles the
// quoted state and is dropped from the output; inside a quoted span the
// delimiter is ordinary text. The last field is always appended, so a line
// with N delimiters yields N+1 fields.
//
// Escaped quotes ("") are not supported: each quote just flips the state.
// Unbalanced quoting never errors, it only moves field boundaries.
func SplitLine(line string) []string {
	line = strings.TrimSuffix(line, "\r")

	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == quote:
			quoted = !quoted
		case c == delimiter && !quoted:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, current.String())
}
