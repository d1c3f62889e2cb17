package audit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFormat(t *testing.T) {
	msg := ElementCreated.Format("crm", "GlossaryTerm", "guid-1")
	assert.Equal(t, "The crm connector created a GlossaryTerm element with unique identifier guid-1", msg)

	// missing arguments leave the marker
	assert.Contains(t, ElementDeleted.Format("crm"), "{2}")
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New("glossary-client", zap.New(core))
	assert.Equal(t, "glossary-client", l.Component())

	l.Log(ElementCreated, "crm", "Glossary", "g1")
	l.LogError(ClientCallFailed, errors.New("boom"), "crm", "repository", "create")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "METACTX-CONTEXT-0001", entries[0].ContextMap()["message_id"])
	assert.Equal(t, "glossary-client", entries[0].ContextMap()["component"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.NotEmpty(t, entries[1].ContextMap()["user_action"])
}
