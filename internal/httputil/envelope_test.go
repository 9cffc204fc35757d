package httputil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	formatter := NewFormatter()
	require.NotNil(t, formatter)

	// Request id must be a valid UUID
	_, err := uuid.Parse(formatter.RequestID())
	assert.NoError(t, err)
}

func TestFormatter_RequestID_StableWithinFormatter(t *testing.T) {
	formatter := NewFormatter()

	first := formatter.Success("ok", nil, nil)
	second := formatter.Error("EXECUTION_FAILED", "boom", nil, nil)

	assert.Equal(t, formatter.RequestID(), first.RequestID)
	assert.Equal(t, formatter.RequestID(), second.RequestID)
}

func TestFormatter_RequestID_UnrelatedAcrossFormatters(t *testing.T) {
	a := NewFormatter()
	b := NewFormatter()

	assert.NotEqual(t, a.RequestID(), b.RequestID())
}

func TestFormatter_Success(t *testing.T) {
	formatter := NewFormatter()
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	formatter.now = func() time.Time { return fixed }

	envelope := formatter.Success("action executed", map[string]string{"pong": "ok"}, map[string]any{"action": "system.ping"})

	assert.Equal(t, StatusSuccess, envelope.Status)
	assert.Equal(t, "action executed", envelope.Message)
	assert.Equal(t, map[string]string{"pong": "ok"}, envelope.Data)
	assert.Empty(t, envelope.ErrorCode)
	assert.Equal(t, "2025-06-15T12:00:00Z", envelope.Timestamp)
	assert.Equal(t, map[string]any{"action": "system.ping"}, envelope.Meta)
}

func TestFormatter_Error(t *testing.T) {
	formatter := NewFormatter()

	details := map[string][]string{"name": {"must not be blank"}}
	envelope := formatter.Error("VALIDATION_FAILED", "request validation failed", details, nil)

	assert.Equal(t, StatusError, envelope.Status)
	assert.Equal(t, "request validation failed", envelope.Message)
	assert.Equal(t, "VALIDATION_FAILED", envelope.ErrorCode)
	assert.Equal(t, details, envelope.Details)
	assert.Nil(t, envelope.Data)
	assert.NotEmpty(t, envelope.Timestamp)
}
