// Package formatter turns log entries into newline-terminated txt or json
// lines. A Formatter is immutable after construction and safe for concurrent
// use by many producers.
package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/logmanager/sanitizer"
)

// Output formats
const (
	FormatTxt  = "txt"
	FormatJSON = "json"
)

// ANSI sequences used for console level coloring
const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiDim     = "\x1b[2m"
)

// Entry is the formatter's view of a log record
type Entry struct {
	Time    time.Time
	Level   int64
	Source  string
	Message string
	Trace   string
	Fields  []any // alternating key, value
}

// spewConfig renders composite values on a single line
var spewConfig = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Formatter holds the output options of one sink
type Formatter struct {
	format          string
	timestampFormat string
	color           bool
	showSource      bool
	sanitizer       *sanitizer.Sanitizer
}

// New creates a txt formatter without color
func New() *Formatter {
	return &Formatter{
		format:          FormatTxt,
		timestampFormat: time.RFC3339Nano,
		showSource:      true,
		sanitizer:       sanitizer.New().Policy(sanitizer.PolicyTxt),
	}
}

// Type sets the output format ("txt" or "json")
func (f *Formatter) Type(format string) *Formatter {
	f.format = format
	if format == FormatJSON {
		f.sanitizer = sanitizer.New().Policy(sanitizer.PolicyJSON)
	} else {
		f.sanitizer = sanitizer.New().Policy(sanitizer.PolicyTxt)
	}
	return f
}

// TimestampFormat sets the timestamp layout
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// Color enables ANSI coloring of the level token (txt only)
func (f *Formatter) Color(enable bool) *Formatter {
	f.color = enable
	return f
}

// ShowSource sets whether the record source is printed
func (f *Formatter) ShowSource(show bool) *Formatter {
	f.showSource = show
	return f
}

// Format renders e as one line ending in '\n'
func (f *Formatter) Format(e Entry) []byte {
	buf := make([]byte, 0, 128+len(e.Message))
	if f.format == FormatJSON {
		return f.formatJSON(buf, e)
	}
	return f.formatTxt(buf, e)
}

// formatTxt renders: <time> <LEVEL> <source>: <message> key=value ...
func (f *Formatter) formatTxt(buf []byte, e Entry) []byte {
	buf = e.Time.UTC().AppendFormat(buf, f.timestampFormat)
	buf = append(buf, ' ')

	if f.color {
		buf = append(buf, levelColor(e.Level)...)
	}
	buf = appendPadded(buf, LevelToString(e.Level), 5)
	if f.color {
		buf = append(buf, ansiReset...)
	}

	if f.showSource && e.Source != "" {
		buf = append(buf, ' ')
		if f.color {
			buf = append(buf, ansiDim...)
		}
		buf = f.sanitizer.Append(buf, e.Source)
		buf = append(buf, ':')
		if f.color {
			buf = append(buf, ansiReset...)
		}
	}

	if e.Trace != "" {
		buf = append(buf, ' ')
		buf = f.sanitizer.Append(buf, e.Trace)
	}

	if e.Message != "" {
		buf = append(buf, ' ')
		buf = f.sanitizer.Append(buf, e.Message)
	}

	for i := 0; i < len(e.Fields); i += 2 {
		buf = append(buf, ' ')
		key, ok := e.Fields[i].(string)
		if !ok || i+1 >= len(e.Fields) {
			// Unpaired or non-string key, print the value alone
			buf = f.appendTxtValue(buf, e.Fields[i])
			i--
			continue
		}
		buf = f.sanitizer.Append(buf, key)
		buf = append(buf, '=')
		buf = f.appendTxtValue(buf, e.Fields[i+1])
	}

	return append(buf, '\n')
}

// formatJSON renders a single JSON object; fields become an object keeping their order
func (f *Formatter) formatJSON(buf []byte, e Entry) []byte {
	buf = append(buf, `{"time":"`...)
	buf = e.Time.UTC().AppendFormat(buf, f.timestampFormat)
	buf = append(buf, `","level":"`...)
	buf = append(buf, LevelToString(e.Level)...)
	buf = append(buf, '"')

	if f.showSource && e.Source != "" {
		buf = append(buf, `,"source":`...)
		buf = appendJSONString(buf, e.Source)
	}
	if e.Trace != "" {
		buf = append(buf, `,"trace":`...)
		buf = appendJSONString(buf, e.Trace)
	}
	buf = append(buf, `,"message":`...)
	buf = appendJSONString(buf, e.Message)

	if len(e.Fields) > 0 {
		buf = append(buf, `,"fields":{`...)
		n := 0
		for i := 0; i < len(e.Fields); i += 2 {
			if n > 0 {
				buf = append(buf, ',')
			}
			key, ok := e.Fields[i].(string)
			if !ok || i+1 >= len(e.Fields) {
				buf = appendJSONString(buf, "!BADKEY"+strconv.Itoa(n))
				buf = append(buf, ':')
				buf = appendJSONValue(buf, e.Fields[i])
				i--
			} else {
				buf = appendJSONString(buf, key)
				buf = append(buf, ':')
				buf = appendJSONValue(buf, e.Fields[i+1])
			}
			n++
		}
		buf = append(buf, '}')
	}

	return append(buf, '}', '\n')
}

// appendTxtValue renders v, quoting strings that contain spaces or quotes
func (f *Formatter) appendTxtValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return f.appendTxtString(buf, val)
	case []byte:
		return f.appendTxtString(buf, string(val))
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int32:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint32:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Time:
		return val.AppendFormat(buf, f.timestampFormat)
	case time.Duration:
		return append(buf, val.String()...)
	case error:
		return f.appendTxtString(buf, val.Error())
	case fmt.Stringer:
		return f.appendTxtString(buf, val.String())
	default:
		return f.appendTxtString(buf, spewConfig.Sprintf("%+v", val))
	}
}

func (f *Formatter) appendTxtString(buf []byte, s string) []byte {
	if !needsQuotes(s) {
		return f.sanitizer.Append(buf, s)
	}
	buf = append(buf, '"')
	for _, r := range f.sanitizer.Sanitize(s) {
		if r == '"' || r == '\\' {
			buf = append(buf, '\\')
		}
		buf = utf8.AppendRune(buf, r)
	}
	return append(buf, '"')
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || r == '\\' {
			return true
		}
	}
	return false
}

func appendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		buf = sanitizer.AppendJSONRune(buf, r)
	}
	return append(buf, '"')
}

func appendJSONValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return appendJSONString(buf, val)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "null"...)
	case time.Duration:
		return appendJSONString(buf, val.String())
	case error:
		return appendJSONString(buf, val.Error())
	case fmt.Stringer:
		return appendJSONString(buf, val.String())
	}
	marshaled, err := json.Marshal(v)
	if err != nil {
		return appendJSONString(buf, fmt.Sprintf("%+v", v))
	}
	return append(buf, marshaled...)
}

func appendPadded(buf []byte, s string, width int) []byte {
	for i := len(s); i < width; i++ {
		buf = append(buf, ' ')
	}
	return append(buf, s...)
}

func levelColor(level int64) string {
	switch {
	case level >= 8:
		return ansiRed
	case level >= 4:
		return ansiYellow
	case level >= 0:
		return ansiGreen
	case level >= -4:
		return ansiBlue
	default:
		return ansiMagenta
	}
}

// LevelToString converts integer level values to string
func LevelToString(level int64) string {
	switch level {
	case -8:
		return "TRACE"
	case -4:
		return "DEBUG"
	case 0:
		return "INFO"
	case 4:
		return "WARN"
	case 8:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}
