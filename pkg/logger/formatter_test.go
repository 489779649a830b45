package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(data logrus.Fields, msg string) *logrus.Entry {
	entry := logrus.NewEntry(logrus.New())
	entry.Time = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	entry.Level = logrus.InfoLevel
	entry.Message = msg
	entry.Data = data
	return entry
}

func TestTextFormatterLeadsWithCorrelationFields(t *testing.T) {
	f := &CustomTextFormatter{AppName: "SkillSwap", DisableColors: true}
	entry := newEntry(logrus.Fields{
		"type":       "swap_event",
		"swap_id":    "s1",
		"event":      "swap_accepted",
		"request_id": "req-9",
		"user_id":    "u1",
	}, "Swap event occurred")

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t,
		"2026-03-01 09:30:00 [INFO] [SkillSwap] request_id=req-9 user_id=u1 swap_id=s1 Swap event occurred event=swap_accepted type=swap_event\n",
		string(out))
}

func TestTextFormatterQuotesAwkwardValues(t *testing.T) {
	f := &CustomTextFormatter{DisableColors: true}
	entry := newEntry(logrus.Fields{"error": "connection reset by peer", "comment": ""}, "Failed")

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), `Failed comment="" error="connection reset by peer"`+"\n"), string(out))
}

func TestTextFormatterColors(t *testing.T) {
	f := &CustomTextFormatter{ForceColors: true}
	entry := newEntry(nil, "boom")
	entry.Level = logrus.ErrorLevel

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[\033[31mERROR\033[0m]")
}

func TestJSONFormatterOrderAndValues(t *testing.T) {
	f := &CustomJSONFormatter{AppName: "SkillSwap", Version: "1.0.0"}
	entry := newEntry(logrus.Fields{
		"rating":        4.5,
		"rated_user_id": "u2",
		"swap_id":       "s1",
		"error":         errors.New("write conflict"),
		"message":       "shadowed",
	}, "Rating event occurred")

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t,
		`{"timestamp":"2026-03-01T09:30:00Z","level":"info","app":"SkillSwap","version":"1.0.0","message":"Rating event occurred",`+
			`"swap_id":"s1","rated_user_id":"u2","error":"write conflict","fields.message":"shadowed","rating":4.5}`+"\n",
		string(out))
}

func TestJSONFormatterReusesEntryBuffer(t *testing.T) {
	f := &CustomJSONFormatter{}
	entry := newEntry(logrus.Fields{"admin_id": "a1"}, "Admin action performed")
	entry.Buffer = &bytes.Buffer{}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, entry.Buffer.Bytes(), out)
	assert.Contains(t, string(out), `"admin_id":"a1"`)
}

func TestJSONFormatterRejectsUnencodableField(t *testing.T) {
	f := &CustomJSONFormatter{}
	_, err := f.Format(newEntry(logrus.Fields{"callback": func() {}}, "x"))
	assert.Error(t, err)
}
