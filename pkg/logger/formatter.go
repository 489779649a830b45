package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// correlationFields lead every entry in this order so a request, user or swap can be
// followed through the log.
var correlationFields = []string{"request_id", "user_id", "swap_id", "rated_user_id", "admin_id"}

// reservedJSONKeys are written by the JSON formatter itself; colliding fields get a "fields." prefix.
var reservedJSONKeys = map[string]bool{
	"timestamp": true,
	"level":     true,
	"app":       true,
	"version":   true,
	"message":   true,
	"caller":    true,
	"function":  true,
}

type CustomJSONFormatter struct {
	TimestampFormat string
	AppName         string
	Version         string
}

type CustomTextFormatter struct {
	TimestampFormat string
	ForceColors     bool
	DisableColors   bool
	AppName         string
}

type field struct {
	key   string
	value interface{}
}

// splitFields returns the correlation fields present in data, in fixed order, and the
// remaining fields sorted by key.
func splitFields(data logrus.Fields) (lead, rest []field) {
	seen := make(map[string]bool, len(correlationFields))
	for _, key := range correlationFields {
		if v, ok := data[key]; ok {
			lead = append(lead, field{key, v})
			seen[key] = true
		}
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		rest = append(rest, field{k, data[k]})
	}
	return lead, rest
}

func entryBuffer(entry *logrus.Entry) *bytes.Buffer {
	if entry.Buffer != nil {
		return entry.Buffer
	}
	return &bytes.Buffer{}
}

func (f *CustomJSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}

	fields := []field{
		{"timestamp", entry.Time.Format(timestampFormat)},
		{"level", entry.Level.String()},
	}
	if f.AppName != "" {
		fields = append(fields, field{"app", f.AppName})
	}
	if f.Version != "" {
		fields = append(fields, field{"version", f.Version})
	}
	fields = append(fields, field{"message", entry.Message})
	if entry.HasCaller() {
		fields = append(fields,
			field{"caller", fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)},
			field{"function", entry.Caller.Function},
		)
	}

	lead, rest := splitFields(entry.Data)
	for _, fl := range append(lead, rest...) {
		if reservedJSONKeys[fl.key] {
			fl.key = "fields." + fl.key
		}
		fields = append(fields, fl)
	}

	b := entryBuffer(entry)
	b.WriteByte('{')
	for i, fl := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(fl.key)
		value := fl.value
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal log field %s: %w", fl.key, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(encoded)
	}
	b.WriteString("}\n")

	return b.Bytes(), nil
}

func levelColor(level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return "\033[31m"
	case logrus.WarnLevel:
		return "\033[33m"
	case logrus.InfoLevel:
		return "\033[36m"
	case logrus.DebugLevel:
		return "\033[37m"
	default:
		return ""
	}
}

// textValue quotes values that would not survive a key=value split.
func textValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}

// Format writes "<time> [LEVEL] [app] [caller] <correlation ids> <message> <fields>".
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entryBuffer(entry)

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = "2006-01-02 15:04:05"
	}

	color, reset := "", ""
	if f.ForceColors && !f.DisableColors {
		if color = levelColor(entry.Level); color != "" {
			reset = "\033[0m"
		}
	}
	fmt.Fprintf(b, "%s [%s%s%s] ", entry.Time.Format(timestampFormat), color, strings.ToUpper(entry.Level.String()), reset)

	if f.AppName != "" {
		fmt.Fprintf(b, "[%s] ", f.AppName)
	}
	if entry.HasCaller() {
		fmt.Fprintf(b, "[%s:%d] ", entry.Caller.File, entry.Caller.Line)
	}

	lead, rest := splitFields(entry.Data)
	for _, fl := range lead {
		fmt.Fprintf(b, "%s=%s ", fl.key, textValue(fl.value))
	}

	b.WriteString(entry.Message)

	for _, fl := range rest {
		fmt.Fprintf(b, " %s=%s", fl.key, textValue(fl.value))
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}
