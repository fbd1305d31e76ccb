// FILE: lixenwraith/logmanager/sanitizer/sanitizer.go
// Package sanitizer rewrites untrusted text before it reaches a log sink, so a
// message can never break the one-record-per-line layout or smuggle terminal
// control sequences. Rules pair a filter mask with a transform and are applied
// in the order they were added, first match wins.
package sanitizer

import (
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Matches runes not classified as printable by strconv.IsPrint
	FilterControl                         // Matches control characters (unicode.IsControl)
	FilterWhitespace                      // Matches whitespace characters (unicode.IsSpace)
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the character's UTF-8 bytes as "<XXYY>"
	TransformJSONEscape                    // Escapes the character with JSON-style backslashes
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw  PolicyPreset = "raw"  // Passthrough
	PolicyTxt  PolicyPreset = "txt"  // Plain text log lines
	PolicyJSON PolicyPreset = "json" // Strings embedded in JSON
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:  {},
	PolicyTxt:  {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON: {{filter: FilterControl, transform: TransformJSONEscape}},
}

// filterOrder keeps filter evaluation deterministic
var filterOrder = []struct {
	flag  uint64
	check func(rune) bool
}{
	{FilterNonPrintable, func(r rune) bool { return !strconv.IsPrint(r) }},
	{FilterControl, unicode.IsControl},
	{FilterWhitespace, unicode.IsSpace},
}

// Sanitizer holds an ordered rule list. It is safe for concurrent use once
// configured.
type Sanitizer struct {
	rules []rule
}

// New creates a passthrough sanitizer
func New() *Sanitizer {
	return &Sanitizer{}
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies the rules to data
func (s *Sanitizer) Sanitize(data string) string {
	return string(s.Append(make([]byte, 0, len(data)), data))
}

// Append appends the sanitized form of data to dst
func (s *Sanitizer) Append(dst []byte, data string) []byte {
	if len(s.rules) == 0 {
		return append(dst, data...)
	}
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				dst = applyTransform(dst, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			dst = utf8.AppendRune(dst, r)
		}
	}
	return dst
}

func matchesFilter(r rune, mask uint64) bool {
	for _, f := range filterOrder {
		if mask&f.flag != 0 && f.check(r) {
			return true
		}
	}
	return false
}

func applyTransform(dst []byte, r rune, mask uint64) []byte {
	switch {
	case mask&TransformStrip != 0:
		return dst

	case mask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		dst = append(dst, '<')
		dst = hex.AppendEncode(dst, runeBytes[:n])
		return append(dst, '>')

	case mask&TransformJSONEscape != 0:
		return AppendJSONRune(dst, r)
	}
	return utf8.AppendRune(dst, r)
}

// AppendJSONRune appends r escaped for use inside a JSON string
func AppendJSONRune(dst []byte, r rune) []byte {
	switch r {
	case '\n':
		return append(dst, '\\', 'n')
	case '\r':
		return append(dst, '\\', 'r')
	case '\t':
		return append(dst, '\\', 't')
	case '\b':
		return append(dst, '\\', 'b')
	case '\f':
		return append(dst, '\\', 'f')
	case '"':
		return append(dst, '\\', '"')
	case '\\':
		return append(dst, '\\', '\\')
	}
	if r < 0x20 || r == 0x7f {
		dst = append(dst, '\\', 'u', '0', '0')
		return hex.AppendEncode(dst, []byte{byte(r)})
	}
	return utf8.AppendRune(dst, r)
}
