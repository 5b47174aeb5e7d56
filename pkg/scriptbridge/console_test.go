package scriptbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inoda-engine/browser/pkg/htmlparse"
)

func TestConsoleLogForwardsToInjectedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	doc, err := htmlparse.ParseString(`<div></div>`, nil)
	require.NoError(t, err)
	doc.Scripts = append(doc.Scripts, `console.log("hello from script"); console.error("boom");`)

	b := New(doc, log)
	b.Execute()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "hello from script")
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Contains(t, entries[1].Message, "boom")
}
