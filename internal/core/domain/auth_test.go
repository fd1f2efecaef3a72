package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthState_String(t *testing.T) {
	tests := []struct {
		state    AuthState
		expected string
	}{
		{AuthIdle, "idle"},
		{AuthAwaitingRedirect, "awaiting_redirect"},
		{AuthExchangingCode, "exchanging_code"},
		{AuthAuthenticated, "authenticated"},
		{AuthExchangeFailed, "exchange_failed"},
		{AuthState(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestAuthStatus_ZeroValueIsIdle(t *testing.T) {
	var status AuthStatus
	assert.Equal(t, AuthIdle, status.State)
	assert.Nil(t, status.Failure)
}

func TestMaskCredential(t *testing.T) {
	assert.Equal(t, "****", MaskCredential(""))
	assert.Equal(t, "****", MaskCredential("short"))
	assert.Equal(t, "gho_...wxyz", MaskCredential("gho_abcdefghijklmnopqrstuvwxyz"))
}
