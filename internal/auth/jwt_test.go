package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret-32-characters"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		ttl    time.Duration
	}{
		{"short secret", "short", time.Hour},
		{"31 characters", strings.Repeat("s", 31), time.Hour},
		{"zero ttl", testSecret, 0},
		{"negative ttl", testSecret, -time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.secret, tt.ttl)
			assert.Error(t, err)
		})
	}
}

func TestNewTokenService_TTL(t *testing.T) {
	ts, err := NewTokenService(testSecret, 720*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, ts.TTL())
}

// =========================================================================
// GENERATE / VALIDATE
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("persona-1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
}

func TestGenerate_EmptyPersona(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Generate("")
	assert.Error(t, err)
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("5b0c8e0e-3f5c-4a4e-9d0b-0d3c5f1e2a77")
	require.NoError(t, err)

	got, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "5b0c8e0e-3f5c-4a4e-9d0b-0d3c5f1e2a77", got)
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("persona-1", -time.Second)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidate_ClockPastTTL(t *testing.T) {
	ts := newTestTokenService(t)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return start }

	token, err := ts.Generate("persona-1")
	require.NoError(t, err)

	ts.now = func() time.Time { return start.Add(59 * time.Minute) }
	_, err = ts.Validate(token)
	require.NoError(t, err)

	ts.now = func() time.Time { return start.Add(61 * time.Minute) }
	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidate_TamperedPayload(t *testing.T) {
	ts := newTestTokenService(t)

	a, _ := ts.Generate("persona-a")
	b, _ := ts.Generate("persona-b")
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")

	// b's payload under a's signature
	forged := pa[0] + "." + pb[1] + "." + pa[2]
	_, err := ts.Validate(forged)
	assert.Error(t, err)
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!", time.Hour)
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	token, _ := ts1.Generate("persona-1")
	_, err := ts2.Validate(token)
	assert.Error(t, err)
}

func TestValidate_WrongIssuer(t *testing.T) {
	ts := newTestTokenService(t)

	c := jwt.RegisteredClaims{
		Subject:   "persona-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.Error(t, err)
}

func TestValidate_NoExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	c := jwt.RegisteredClaims{Subject: "persona-1", Issuer: Issuer}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, in := range []string{"", "not.a.jwt.token", "abc"} {
		_, err := ts.Validate(in)
		assert.Error(t, err, "input %q", in)
	}
}
