package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenIssuer([]byte("test-secret"), time.Hour)

	signed, err := tokens.Issue("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userULID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", userULID)
}

func TestTokenVerifyFailures(t *testing.T) {
	tokens := NewTokenIssuer([]byte("test-secret"), time.Hour)
	var authErr *AuthenticationError

	_, err := tokens.Verify("not-a-token")
	assert.ErrorAs(t, err, &authErr)

	signed, err := tokens.Issue("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	_, err = tokens.Verify(signed + "tampered")
	assert.ErrorAs(t, err, &authErr)

	otherIssuer := NewTokenIssuer([]byte("another-secret"), time.Hour)
	_, err = otherIssuer.Verify(signed)
	assert.ErrorAs(t, err, &authErr)
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokenIssuer([]byte("test-secret"), -time.Minute)

	signed, err := tokens.Issue("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)

	var authErr *AuthenticationError
	_, err = tokens.Verify(signed)
	assert.ErrorAs(t, err, &authErr)
}
