package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

func TestJWTMaker_GenerateAndParseActor(t *testing.T) {
	maker := NewJWTMaker("test_secret_key_1234567890", 15*time.Minute)

	tests := []struct {
		name     string
		actorID  string
		role     string
		wantCaps []models.Capability
	}{
		{
			name:     "treasurer",
			actorID:  "u-treasurer",
			role:     "treasurer",
			wantCaps: []models.Capability{models.CapFinanceManage, models.CapLedgerManage, models.CapReportsView},
		},
		{
			name:     "committee sees reports only",
			actorID:  "u-committee",
			role:     "committee",
			wantCaps: []models.Capability{models.CapReportsView},
		},
		{
			name:    "member has no capabilities",
			actorID: "m-42",
			role:    "member",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.actorID, tt.role)
			require.NoError(t, err)

			actor, err := maker.ParseActor(token)
			require.NoError(t, err)
			assert.Equal(t, tt.actorID, actor.ID)
			assert.Equal(t, tt.role, actor.Role)
			assert.ElementsMatch(t, tt.wantCaps, actor.Capabilities)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken("m-1", "member")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createToken(t, secretKey, -time.Hour, "m-1")},
		{name: "wrong secret key", token: createToken(t, "wrong_secret_key", time.Minute, "m-1")},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "missing subject", token: createToken(t, secretKey, time.Minute, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func createToken(t *testing.T, secretKey string, ttl time.Duration, subject string) string {
	maker := NewJWTMaker(secretKey, ttl)
	token, err := maker.GenerateToken(subject, "member")
	require.NoError(t, err)
	return token
}
