package compat

import (
	"fmt"
	"regexp"
	"strings"
)

// keyValuePattern detects structured verbs like "key=%v" or "key: %d"
var keyValuePattern = regexp.MustCompile(`(\w+)\s*[:=]\s*%[vsdqxXeEfFgGpbcU]`)

// parseFormat extracts structured fields from a printf-style format. The
// text around the matched verbs becomes the message. When the verbs do not
// line up with the arguments the whole line is formatted as the message.
func parseFormat(format string, args []any) (string, []any) {
	matches := keyValuePattern.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 || strings.Contains(format, "%%") || strings.Count(format, "%") != len(args) {
		return fmt.Sprintf(format, args...), nil
	}

	fields := make([]any, 0, len(matches)*2)
	var msgParts []string
	lastEnd := 0
	argIndex := 0

	for _, match := range matches {
		// Text before this match, possibly with its own verbs
		if match[0] > lastEnd {
			segment := format[lastEnd:match[0]]
			n := strings.Count(segment, "%")
			if text := strings.TrimSpace(fmt.Sprintf(segment, args[argIndex:argIndex+n]...)); text != "" {
				msgParts = append(msgParts, strings.TrimRight(text, ",;"))
			}
			argIndex += n
		}

		key := format[match[2]:match[3]]
		fields = append(fields, key, args[argIndex])
		argIndex++

		lastEnd = match[1]
	}

	if lastEnd < len(format) {
		remaining := strings.TrimSpace(fmt.Sprintf(format[lastEnd:], args[argIndex:]...))
		remaining = strings.TrimLeft(remaining, ",; ")
		if remaining != "" {
			msgParts = append(msgParts, remaining)
		}
	}

	return strings.Join(msgParts, " "), fields
}
