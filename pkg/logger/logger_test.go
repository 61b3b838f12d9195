package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, logrus.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
	assert.Equal(t, logrus.InfoLevel, parseLevel("verbose"))
}

func TestComponentWritesJSON(t *testing.T) {
	Init("debug")
	var buf bytes.Buffer
	SetOutput(&buf)

	Component("gitee").WithField("username", "someone").Warn("scrape failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "gitee", entry["component"])
	assert.Equal(t, "someone", entry["username"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "scrape failed", entry["msg"])
}
