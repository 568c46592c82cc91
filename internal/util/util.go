// Package util provides common string helpers used across horizon.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// SplitCommandLine splits a control line into its command token and argument
// fields. Arguments may be double-quoted to carry spaces.
// Input format: :COMMAND: "arg one" arg2
func SplitCommandLine(line string) (command string, args []string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	fields := splitQuoted(line)
	if len(fields) == 0 {
		return "", nil
	}
	command = fields[0]
	for _, f := range fields[1:] {
		args = append(args, FixEscapeQuotes(TrimQuotes(f)))
	}
	return command, args
}

// splitQuoted splits on spaces, keeping double-quoted runs together.
func splitQuoted(s string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case r == ' ' && !inQuotes:
			if b.Len() > 0 {
				fields = append(fields, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		fields = append(fields, b.String())
	}
	return fields
}
