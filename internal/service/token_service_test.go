package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-server/internal/model"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func testUser() model.User {
	return model.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: model.RoleUser}
}

func TestTokenService_IssueAndExtract(t *testing.T) {
	svc := NewTokenService(testKey, 30*time.Minute, time.Hour)
	user := testUser()

	token, err := svc.Issue(user, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, subject)

	assert.False(t, svc.IsExpired(token))
	assert.True(t, svc.IsValidFor(token, user))
}

func TestTokenService_IssuePair(t *testing.T) {
	svc := NewTokenService(testKey, 30*time.Minute, time.Hour)
	user := testUser()

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	for _, token := range []string{pair.AccessToken, pair.RefreshToken} {
		subject, err := svc.ExtractSubject(token)
		require.NoError(t, err)
		assert.Equal(t, user.Email, subject)
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := NewTokenService(testKey, 30*time.Minute, time.Hour)
	user := testUser()

	token, err := svc.Issue(user, -time.Minute)
	require.NoError(t, err)

	assert.True(t, svc.IsExpired(token))
	assert.False(t, svc.IsValidFor(token, user))

	_, err = svc.ExtractSubject(token)
	assert.ErrorIs(t, err, model.ErrExpiredToken)
}

func TestTokenService_TamperedToken(t *testing.T) {
	svc := NewTokenService(testKey, 30*time.Minute, time.Hour)

	token, err := svc.Issue(testUser(), 30*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip a character in the payload so the signature no longer matches.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = svc.ExtractSubject(tampered)
	assert.ErrorIs(t, err, model.ErrMalformedToken)
	assert.True(t, svc.IsExpired(tampered))
	assert.False(t, svc.IsValidFor(tampered, testUser()))
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := NewTokenService(testKey, 30*time.Minute, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.ExtractSubject(token)
		assert.ErrorIs(t, err, model.ErrMalformedToken, "token %q", token)
	}
}

func TestTokenService_WrongKeyRejected(t *testing.T) {
	minter := NewTokenService(testKey, 30*time.Minute, time.Hour)
	verifier := NewTokenService([]byte("another-secret-key-of-enough-len"), 30*time.Minute, time.Hour)

	token, err := minter.Issue(testUser(), 30*time.Minute)
	require.NoError(t, err)

	_, err = verifier.ExtractSubject(token)
	assert.ErrorIs(t, err, model.ErrMalformedToken)
}

func TestTokenService_IsValidFor_SubjectMismatch(t *testing.T) {
	svc := NewTokenService(testKey, 30*time.Minute, time.Hour)

	token, err := svc.Issue(testUser(), 30*time.Minute)
	require.NoError(t, err)

	other := model.User{ID: 2, Email: "bob@example.com", Role: model.RoleUser}
	assert.False(t, svc.IsValidFor(token, other))
}
