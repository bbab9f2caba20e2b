package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("Debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, INFO, ParseLevel("что-то"))
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger("le", Options{Level: DEBUG, Format: "json", Output: &buf})
	require.NoError(t, err)

	l.WithFields(Fields{"entnum": 7}).Warn("рассинхрон %d", 3)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "le", rec["component"])
	assert.Equal(t, "warning", rec["level"])
	assert.Equal(t, "рассинхрон 3", rec["msg"])
	assert.EqualValues(t, 7, rec["entnum"])
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger("le", Options{Level: WARN, Output: &buf})
	require.NoError(t, err)

	l.Info("скрыто")
	assert.Empty(t, buf.String())

	l.SetLevel(DEBUG)
	l.Debug("видно")
	assert.True(t, strings.Contains(buf.String(), "видно"))
}

func TestLoggerFile(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	l, err := NewLogger("file", Options{Level: INFO, Dir: dir, Output: &buf})
	require.NoError(t, err)
	l.Info("запись")
	require.NoError(t, l.Close())
	assert.Contains(t, buf.String(), "запись")
}

func TestManager(t *testing.T) {
	lm := GetLoggerManager()
	a := lm.MustGetLogger("test-component")
	b := lm.MustGetLogger("test-component")
	assert.Same(t, a, b)
	assert.NoError(t, lm.SetLogLevel("test-component", ERROR))
	assert.Error(t, lm.SetLogLevel("нет-такого", ERROR))
}
