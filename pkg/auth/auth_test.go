package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	a := NewAuthenticator("secret", "ticketing", time.Hour)

	token, err := a.Issue("alice", time.Now())
	require.NoError(t, err)

	identity, err := a.Identity(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity)
}

func TestRejectsBadTokens(t *testing.T) {
	a := NewAuthenticator("secret", "ticketing", time.Hour)

	expired, err := a.Issue("alice", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	foreign, err := NewAuthenticator("other-secret", "ticketing", time.Hour).Issue("alice", time.Now())
	require.NoError(t, err)

	otherIssuer, err := NewAuthenticator("secret", "someone-else", time.Hour).Issue("alice", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "wrong issuer", token: otherIssuer},
		{name: "garbage", token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Identity(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssueRequiresIdentity(t *testing.T) {
	_, err := NewAuthenticator("secret", "ticketing", time.Hour).Issue("", time.Now())
	assert.Error(t, err)
}
