package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeResolution(t *testing.T) {
	t.Run("wrapped domain error keeps its code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("redeem: %w", New(CodeInvalidGrant, "code already used"))
		assert.True(t, HasCode(err, CodeInvalidGrant))
		assert.Equal(t, CodeInvalidGrant, CodeOf(err))
	})

	t.Run("plain errors resolve to server_error", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(errors.New("boom"), CodeInvalidGrant))
	})

	t.Run("Wrap exposes the cause to errors.Is", func(t *testing.T) {
		cause := errors.New("db down")
		err := Wrap(cause, CodeInternal, "failed to persist token set")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to persist token set: db down", err.Error())
	})

	t.Run("errors compare by code and message", func(t *testing.T) {
		require.ErrorIs(t, New(CodeInvalidClient, "client authentication failed"),
			New(CodeInvalidClient, "client authentication failed"))
		assert.NotErrorIs(t, New(CodeInvalidClient, "a"), New(CodeInvalidGrant, "a"))
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidRequest:       http.StatusBadRequest,
		CodeUnsupportedGrantType: http.StatusBadRequest,
		CodeInvalidGrant:         http.StatusBadRequest,
		CodeInvalidClient:        http.StatusUnauthorized,
		CodeInvalidToken:         http.StatusUnauthorized,
		CodeInvalidCredentials:   http.StatusUnauthorized,
		CodeNotFound:             http.StatusNotFound,
		CodeInternal:             http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(code), string(code))
	}
}
