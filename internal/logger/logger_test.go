package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := fromCore(core, "invitation-service")

	ctx := IntoContext(context.Background(), "req-1")
	l.WithContext(ctx).WithUser(42).Info("Invitation created", "project_id", int64(7))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Invitation created", entries[0].Message)
	assert.Equal(t, "invitation-service", fields["service"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(42), fields["user_id"])
	assert.Equal(t, int64(7), fields["project_id"])
}

func TestWithContextWithoutRequestID(t *testing.T) {
	l := NewNop()
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestAuditMarksEntry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := fromCore(core, "membership-service")

	l.Audit("Project created", "project_id", int64(1))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, true, logs.All()[0].ContextMap()["audit"])
}
