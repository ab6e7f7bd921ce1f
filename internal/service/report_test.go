package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/waha-sync/internal/service"
)

func TestUnitError_Error(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *service.UnitError
		expected string
	}{
		{
			name:     "pass",
			err:      &service.UnitError{Scope: service.ScopePass, Err: cause},
			expected: "pass: boom",
		},
		{
			name:     "session",
			err:      &service.UnitError{Scope: service.ScopeSession, Session: "clinic1", Err: cause},
			expected: "session clinic1: boom",
		},
		{
			name:     "chat",
			err:      &service.UnitError{Scope: service.ScopeChat, Session: "clinic1", ChatID: "5541999990000@c.us", Err: cause},
			expected: "chat clinic1/5541999990000@c.us: boom",
		},
		{
			name:     "message",
			err:      &service.UnitError{Scope: service.ScopeMessage, Session: "clinic1", ChatID: "5541999990000@c.us", MessageID: "AAA", Err: cause},
			expected: "message clinic1/5541999990000@c.us/AAA: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestPassReport_PassErr(t *testing.T) {
	report := failedReport(service.TriggerManual, context.DeadlineExceeded)

	require.Error(t, report.PassErr())
	assert.ErrorIs(t, report.PassErr(), context.DeadlineExceeded)
	assert.Len(t, report.Errors(), 1)
	assert.GreaterOrEqual(t, report.Duration().Nanoseconds(), int64(0))
}

func TestPassReport_Empty(t *testing.T) {
	report := &service.PassReport{Trigger: service.TriggerManual}

	assert.NoError(t, report.Err())
	assert.NoError(t, report.PassErr())
	assert.Empty(t, report.Errors())
	assert.Zero(t, report.Duration())
}
