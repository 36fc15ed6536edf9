package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := New(&Config{Level: "info", Format: "json", Output: path})

	l.Info("payment settled")
	l.Debug("suppressed")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"payment settled"`)
	assert.NotContains(t, out, "suppressed")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	l := New(&Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "x.log")}, core)

	l.Info("hello")

	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "hello", recorded.All()[0].Message)
}

func TestNew_AttachesServiceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	l := New(&Config{Level: "info", Output: filepath.Join(t.TempDir(), "x.log"), Service: "jobboard-backend", Env: "staging"}, core)

	l.Info("started")

	require.Len(t, recorded.All(), 1)
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "jobboard-backend", fields["service"])
	assert.Equal(t, "staging", fields["env"])
}

func TestCallbackParams_MasksSignatures(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	params := map[string]string{
		"vnp_TxnRef":     "JOB20250101120000123",
		"vnp_Amount":     "5000000",
		"vnp_SecureHash": "deadbeef",
		"signature":      "cafebabe",
	}

	zap.New(core).Warn("rejected", CallbackParams(params))

	logged, ok := recorded.All()[0].ContextMap()["params"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "JOB20250101120000123", logged["vnp_TxnRef"])
	assert.Equal(t, "***", logged["vnp_SecureHash"])
	assert.Equal(t, "***", logged["signature"])
	assert.Equal(t, "deadbeef", params["vnp_SecureHash"], "input must not be modified")
}
