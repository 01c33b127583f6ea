package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":         logrus.InfoLevel,
		"DEBUG":    logrus.DebugLevel,
		" warn ":   logrus.WarnLevel,
		"err":      logrus.ErrorLevel,
		"trace":    logrus.TraceLevel,
		"nonsense": logrus.InfoLevel,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseLevel(raw), raw)
	}
}

func TestNewJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	l := New(buf, Config{Level: "info", Format: "json"})
	l.WithField("tool", "get_restaurants").Info("tool call")
	l.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tool call", line["msg"])
	assert.Equal(t, "get_restaurants", line["tool"])
}
